package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// TopicHandler, konu (topic) endpoint'lerini yöneten struct.
type TopicHandler struct {
	topicService services.TopicService
}

// NewTopicHandler, constructor.
func NewTopicHandler(topicService services.TopicService) *TopicHandler {
	return &TopicHandler{topicService: topicService}
}

// Create godoc
// POST /api/topics
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	topic, err := h.topicService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, topic)
}

// List godoc
// GET /api/topics
// Keşif için tüm konular — abonelikten bağımsız.
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topicService.List(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, topics)
}

// ListSubscribed godoc
// GET /api/topics/subscribed
// Kullanıcının abone olduğu konular, sohbet listeleriyle birlikte.
func (h *TopicHandler) ListSubscribed(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	topics, err := h.topicService.ListSubscribed(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, topics)
}

// Get godoc
// GET /api/topics/{topicID}
func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	// r.PathValue: Go 1.22 ServeMux path parameter'ı — {topicID} kısmını okur.
	topicID := r.PathValue("topicID")

	topic, err := h.topicService.Get(r.Context(), topicID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, topic)
}

// Subscribe godoc
// POST /api/topics/{topicID}/subscribe
// Yeni abonelik mevcut ws bağlantılarına yansımaz — client reconnect
// ettiğinde konu, aktivite ping listesine dahil olur.
func (h *TopicHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.topicService.Subscribe(r.Context(), r.PathValue("topicID"), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "subscribed"})
}

// Unsubscribe godoc
// DELETE /api/topics/{topicID}/subscribe
func (h *TopicHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.topicService.Unsubscribe(r.Context(), r.PathValue("topicID"), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}
