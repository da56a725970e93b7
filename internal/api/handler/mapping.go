package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/api/response"
	"github.com/danisampedro/locationapp/internal/mapping"
)

// MapHandler handles location map endpoints.
type MapHandler struct {
	service *mapping.Service
	logger  zerolog.Logger
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(service *mapping.Service, logger zerolog.Logger) *MapHandler {
	return &MapHandler{service: service, logger: logger}
}

// ListMaps handles GET /v1/projects/{projectId}/maps.
func (h *MapHandler) ListMaps(w http.ResponseWriter, r *http.Request) {
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

// CreateMap handles POST /v1/projects/{projectId}/maps.
func (h *MapHandler) CreateMap(w http.ResponseWriter, r *http.Request) {
	var input models.MapCreateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	m, err := h.service.Create(r.Context(), chi.URLParam(r, "projectId"), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "/v1/maps/"+m.ID, m)
}

// GetMap handles GET /v1/maps/{mapId}.
func (h *MapHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "mapId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, m)
}

// UpdateMap handles PUT /v1/maps/{mapId}.
func (h *MapHandler) UpdateMap(w http.ResponseWriter, r *http.Request) {
	var input models.MapUpdateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	m, err := h.service.Update(r.Context(), chi.URLParam(r, "mapId"), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, m)
}

// DeleteMap handles DELETE /v1/maps/{mapId}.
func (h *MapHandler) DeleteMap(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "mapId")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}

// Calibrate handles POST /v1/maps/{mapId}/calibration.
func (h *MapHandler) Calibrate(w http.ResponseWriter, r *http.Request) {
	var input models.CalibrationRequest
	if !decodeBody(w, r, &input) {
		return
	}

	m, err := h.service.Calibrate(r.Context(), chi.URLParam(r, "mapId"), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, m)
}

// GetMetrics handles GET /v1/maps/{mapId}/metrics.
func (h *MapHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Metrics(r.Context(), chi.URLParam(r, "mapId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, metrics)
}
