package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// ConversationHandler, sohbet endpoint'lerini yöneten struct.
type ConversationHandler struct {
	conversationService services.ConversationService
}

// NewConversationHandler, constructor.
func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// Create godoc
// POST /api/topics/{topicID}/conversations
// Sohbeti açan kullanıcı otomatik olarak katılımcı olur.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conversation, err := h.conversationService.Create(r.Context(), r.PathValue("topicID"), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, conversation)
}

// ListByTopic godoc
// GET /api/topics/{topicID}/conversations
func (h *ConversationHandler) ListByTopic(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.conversationService.ListByTopic(r.Context(), r.PathValue("topicID"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conversations)
}

// Get godoc
// GET /api/conversations/{conversationID}
// Sohbet detayı + katılımcı listesi.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.conversationService.GetDetail(r.Context(), r.PathValue("conversationID"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, detail)
}

// AddParticipant godoc
// POST /api/conversations/{conversationID}/participants
// Body: { "user_id": "..." }
func (h *ConversationHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.AddParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.conversationService.AddParticipant(r.Context(), r.PathValue("conversationID"), user.ID, req.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]string{"message": "participant added"})
}

// RemoveParticipant godoc
// DELETE /api/conversations/{conversationID}/participants/{userID}
func (h *ConversationHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.conversationService.RemoveParticipant(r.Context(),
		r.PathValue("conversationID"), user.ID, r.PathValue("userID"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "participant removed"})
}
