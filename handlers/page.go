package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// PageHandler, konu altındaki kalıcı döküman endpoint'lerini yönetir.
type PageHandler struct {
	pageService services.PageService
}

// NewPageHandler, constructor.
func NewPageHandler(pageService services.PageService) *PageHandler {
	return &PageHandler{pageService: pageService}
}

// Create godoc
// POST /api/topics/{topicID}/pages
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := h.pageService.Create(r.Context(), r.PathValue("topicID"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, page)
}

// ListByTopic godoc
// GET /api/topics/{topicID}/pages
func (h *PageHandler) ListByTopic(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pageService.ListByTopic(r.Context(), r.PathValue("topicID"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, pages)
}

// Get godoc
// GET /api/pages/{pageID}
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := h.pageService.Get(r.Context(), r.PathValue("pageID"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}
