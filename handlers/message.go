package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/ratelimit"
	"github.com/akinalp/sohbet/services"
)

// MessageHandler, mesaj endpoint'lerini yöneten struct.
//
// Mesaj gönderiminin iki yolu vardır: bu handler (HTTP POST) ve ws
// message_create operasyonu. İkisi de aynı MessageService.Submit'ten
// geçer — doğrulama, kalıcılık ve fan-out davranışı yol fark etmez.
type MessageHandler struct {
	messageService services.MessageService
	messageLimiter *ratelimit.MessageRateLimiter
}

// NewMessageHandler, constructor.
// messageLimiter: spam koruması. nil ise rate limiting devre dışı kalır.
func NewMessageHandler(messageService services.MessageService, messageLimiter *ratelimit.MessageRateLimiter) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		messageLimiter: messageLimiter,
	}
}

// Create godoc
// POST /api/conversations/{conversationID}/messages
// Body: { "content": "..." }
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Rate limit: kullanıcı bazlı spam koruması
	if h.messageLimiter != nil {
		if allowed, cooldown := h.messageLimiter.Allow(user.ID); !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(cooldown))
			pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
				fmt.Sprintf("sending messages too fast, wait %d seconds", cooldown))
			return
		}
	}

	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messageService.Submit(r.Context(), r.PathValue("conversationID"), user.ID, req.Content)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, message)
}

// List godoc
// GET /api/conversations/{conversationID}/messages?before=<messageID>&limit=50
//
// Cursor bazlı sayfalama: "before" verilirse o mesajdan eski sayfa döner.
// Yanıt eski → yeni sıralıdır; has_more true ise daha eski sayfa vardır.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = parsed
	}

	page, err := h.messageService.List(r.Context(),
		r.PathValue("conversationID"), user.ID, r.URL.Query().Get("before"), limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}
