package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/api/response"
	"github.com/danisampedro/locationapp/internal/project"
)

// ProjectHandler handles project and location endpoints.
type ProjectHandler struct {
	service *project.Service
	logger  zerolog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(service *project.Service, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

// ListProjects handles GET /v1/projects.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := pageParams(w, r)
	if !ok {
		return
	}

	page, err := h.service.List(r.Context(), limit, cursor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

// CreateProject handles POST /v1/projects.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var input models.ProjectCreateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	p, err := h.service.Create(r.Context(), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "/v1/projects/"+p.ID, p)
}

// GetProject handles GET /v1/projects/{projectId}.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, p)
}

// AddLocation handles POST /v1/projects/{projectId}/locations.
func (h *ProjectHandler) AddLocation(w http.ResponseWriter, r *http.Request) {
	var input models.LocationCreateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	projectID := chi.URLParam(r, "projectId")
	l, err := h.service.AddLocation(r.Context(), projectID, &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "/v1/projects/"+projectID, l)
}
