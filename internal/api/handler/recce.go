package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/api/response"
	"github.com/danisampedro/locationapp/internal/recce"
)

// RecceHandler handles recce document endpoints.
type RecceHandler struct {
	service *recce.Service
	logger  zerolog.Logger
}

// NewRecceHandler creates a new RecceHandler.
func NewRecceHandler(service *recce.Service, logger zerolog.Logger) *RecceHandler {
	return &RecceHandler{service: service, logger: logger}
}

// ListRecces handles GET /v1/projects/{projectId}/recces.
func (h *RecceHandler) ListRecces(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := pageParams(w, r)
	if !ok {
		return
	}

	page, err := h.service.List(r.Context(), chi.URLParam(r, "projectId"), limit, cursor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

// CreateRecce handles POST /v1/projects/{projectId}/recces.
func (h *RecceHandler) CreateRecce(w http.ResponseWriter, r *http.Request) {
	var input models.RecceCreateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	rc, err := h.service.Create(r.Context(), chi.URLParam(r, "projectId"), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "/v1/recces/"+rc.ID, rc)
}

// GetRecce handles GET /v1/recces/{recceId}.
func (h *RecceHandler) GetRecce(w http.ResponseWriter, r *http.Request) {
	rc, err := h.service.Get(r.Context(), chi.URLParam(r, "recceId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, rc)
}

// UpdateRecce handles PUT /v1/recces/{recceId}.
func (h *RecceHandler) UpdateRecce(w http.ResponseWriter, r *http.Request) {
	var input models.RecceUpdateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	rc, err := h.service.Update(r.Context(), chi.URLParam(r, "recceId"), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, rc)
}

// DeleteRecce handles DELETE /v1/recces/{recceId}.
func (h *RecceHandler) DeleteRecce(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "recceId")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}

// ReorderItems handles POST /v1/recces/{recceId}/items:reorder.
func (h *RecceHandler) ReorderItems(w http.ResponseWriter, r *http.Request) {
	var input models.ReorderRequest
	if !decodeBody(w, r, &input) {
		return
	}

	rc, err := h.service.Reorder(r.Context(), chi.URLParam(r, "recceId"), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, rc)
}

// GetItinerary handles GET /v1/recces/{recceId}/itinerary.
func (h *RecceHandler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	it, err := h.service.Itinerary(r.Context(), chi.URLParam(r, "recceId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, it)
}

// SuggestTravelTimes handles POST /v1/recces/{recceId}/travel-times:suggest.
func (h *RecceHandler) SuggestTravelTimes(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.SuggestTravelTimes(r.Context(), chi.URLParam(r, "recceId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, s)
}
