package teacher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/classroomhq/school-api/internal/database"
	"github.com/classroomhq/school-api/internal/httputil"
	"github.com/classroomhq/school-api/internal/logging"
	"github.com/classroomhq/school-api/internal/query"
)

const cacheResource = "teachers"

var (
	sortFields = map[string]string{
		"name":       "name",
		"email":      "email",
		"created_at": "created_at",
	}
	relations = map[string]string{
		"courses": "Courses",
	}
)

// Store is the data access the teacher handlers need. Repository is the
// production implementation.
type Store interface {
	List(ctx context.Context, params query.ListParams) ([]*database.Teacher, error)
	GetByID(ctx context.Context, id uuid.UUID, populate []string) (*database.Teacher, error)
	Create(ctx context.Context, name, email string) (*database.Teacher, error)
	Update(ctx context.Context, id uuid.UUID, name, email string) (*database.Teacher, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListCache is the read-through cache the list endpoint uses. cache.Cache is
// the production implementation; a nil ListCache disables caching.
type ListCache interface {
	GetList(ctx context.Context, resource, variant string, dest any) (bool, error)
	SetList(ctx context.Context, resource, variant string, value any) error
	Invalidate(ctx context.Context, resource string) error
}

// Handler contains HTTP handlers for teacher endpoints
type Handler struct {
	store     Store
	listCache ListCache
}

func NewHandler(store Store, listCache ListCache) *Handler {
	return &Handler{store: store, listCache: listCache}
}

// TeacherRequest represents the create/update request body
type TeacherRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List handles listing teachers
// @Summary      List teachers
// @Tags         teachers
// @Produce      json
// @Security     BearerAuth
// @Param        page     query int    false "Page number"
// @Param        limit    query int    false "Page size (max 100)"
// @Param        sort     query string false "Sort, e.g. name:asc"
// @Param        populate query string false "Relations to include (courses)"
// @Success      200 {array} database.Teacher
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /teachers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	params := query.ParseListParams(r.URL.Query(), sortFields, relations)
	variant := params.Variant()

	if h.listCache != nil {
		var cached []*database.Teacher
		hit, err := h.listCache.GetList(r.Context(), cacheResource, variant, &cached)
		if err != nil {
			logger.Warn("teacher list cache read failed", "error", err.Error())
		} else if hit {
			httputil.RespondJSON(w, cached, http.StatusOK)
			return
		}
	}

	teachers, err := h.store.List(r.Context(), params)
	if err != nil {
		logger.Error("failed to list teachers", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to list teachers", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if h.listCache != nil {
		if err := h.listCache.SetList(r.Context(), cacheResource, variant, teachers); err != nil {
			logger.Warn("teacher list cache write failed", "error", err.Error())
		}
	}

	httputil.RespondJSON(w, teachers, http.StatusOK)
}

// Get handles fetching a single teacher
// @Summary      Get teacher
// @Tags         teachers
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string true  "Teacher ID"
// @Param        populate query string false "Relations to include (courses)"
// @Success      200 {object} database.Teacher
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /teachers/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	params := query.ParseListParams(r.URL.Query(), sortFields, relations)

	dbTeacher, err := h.store.GetByID(r.Context(), id, params.Populate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Teacher not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get teacher", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to get teacher", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, dbTeacher, http.StatusOK)
}

// Create handles creating a teacher
// @Summary      Create teacher
// @Tags         teachers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TeacherRequest true "Teacher"
// @Success      201 {object} database.Teacher
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /teachers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	dbTeacher, err := h.store.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			httputil.RespondErrorWithCode(w, "Email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create teacher", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to create teacher", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.invalidateListCache(r.Context())
	logger.Info("teacher created", "teacher_id", dbTeacher.ID)

	httputil.RespondJSON(w, dbTeacher, http.StatusCreated)
}

// Update handles replacing a teacher
// @Summary      Update teacher
// @Tags         teachers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string         true "Teacher ID"
// @Param        request body TeacherRequest true "Teacher"
// @Success      200 {object} database.Teacher
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /teachers/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	dbTeacher, err := h.store.Update(r.Context(), id, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Teacher not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrDuplicateEmail) {
			httputil.RespondErrorWithCode(w, "Email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		logger.Error("failed to update teacher", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to update teacher", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.invalidateListCache(r.Context())

	httputil.RespondJSON(w, dbTeacher, http.StatusOK)
}

// Delete handles removing a teacher
// @Summary      Delete teacher
// @Tags         teachers
// @Security     BearerAuth
// @Param        id path string true "Teacher ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /teachers/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Teacher not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete teacher", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to delete teacher", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.invalidateListCache(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidateListCache(ctx context.Context) {
	if h.listCache == nil {
		return
	}
	if err := h.listCache.Invalidate(ctx, cacheResource); err != nil {
		logging.GetLoggerFromContext(ctx).Warn("teacher list cache invalidation failed", "error", err.Error())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid teacher id", httputil.CodeInvalidID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (TeacherRequest, bool) {
	var req TeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return req, false
	}
	if req.Name == "" {
		httputil.RespondErrorWithCode(w, "Name is required", httputil.CodeNameRequired, http.StatusBadRequest)
		return req, false
	}
	if req.Email == "" {
		httputil.RespondErrorWithCode(w, "Email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

