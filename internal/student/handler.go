package student

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

const cacheResource = "students"

// sortFields maps query sort names to columns; relations maps populate names
// to ORM relations.
var (
	sortFields = map[string]string{
		"name":       "name",
		"email":      "email",
		"created_at": "created_at",
	}
	relations = map[string]string{
		"course": "Course",
	}
)

// Store is the data access the student handlers need. Repository is the
// production implementation.
type Store interface {
	List(ctx context.Context, params query.ListParams) ([]*database.Student, error)
	GetByID(ctx context.Context, id uuid.UUID, populate []string) (*database.Student, error)
	Create(ctx context.Context, name, email string, courseID *uuid.UUID) (*database.Student, error)
	Update(ctx context.Context, id uuid.UUID, name, email string, courseID *uuid.UUID) (*database.Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListCache is the read-through cache the list endpoint uses. cache.Cache is
// the production implementation; a nil ListCache disables caching.
type ListCache interface {
	GetList(ctx context.Context, resource, variant string, dest any) (bool, error)
	SetList(ctx context.Context, resource, variant string, value any) error
	Invalidate(ctx context.Context, resource string) error
}

// Handler contains HTTP handlers for student endpoints
type Handler struct {
	store     Store
	listCache ListCache
}

func NewHandler(store Store, listCache ListCache) *Handler {
	return &Handler{store: store, listCache: listCache}
}

// StudentRequest represents the create/update request body
type StudentRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	CourseID *uuid.UUID `json:"course_id"`
}

// List handles listing students
// @Summary      List students
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        page     query int    false "Page number"
// @Param        limit    query int    false "Page size (max 100)"
// @Param        sort     query string false "Sort, e.g. name:asc"
// @Param        populate query string false "Relations to include (course)"
// @Success      200 {array} database.Student
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /students [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	params := query.ParseListParams(r.URL.Query(), sortFields, relations)
	variant := params.Variant()

	if h.listCache != nil {
		var cached []*database.Student
		hit, err := h.listCache.GetList(r.Context(), cacheResource, variant, &cached)
		if err != nil {
			logger.Warn("student list cache read failed", "error", err.Error())
		} else if hit {
			httputil.RespondJSON(w, cached, http.StatusOK)
			return
		}
	}

	students, err := h.store.List(r.Context(), params)
	if err != nil {
		logger.Error("failed to list students", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to list students", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if h.listCache != nil {
		if err := h.listCache.SetList(r.Context(), cacheResource, variant, students); err != nil {
			logger.Warn("student list cache write failed", "error", err.Error())
		}
	}

	httputil.RespondJSON(w, students, http.StatusOK)
}

// Get handles fetching a single student
// @Summary      Get student
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string true  "Student ID"
// @Param        populate query string false "Relations to include (course)"
// @Success      200 {object} database.Student
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /students/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	params := query.ParseListParams(r.URL.Query(), sortFields, relations)

	dbStudent, err := h.store.GetByID(r.Context(), id, params.Populate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Student not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get student", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to get student", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, dbStudent, http.StatusOK)
}

// Create handles creating a student
// @Summary      Create student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body StudentRequest true "Student"
// @Success      201 {object} database.Student
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /students [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	dbStudent, err := h.store.Create(r.Context(), req.Name, req.Email, req.CourseID)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			httputil.RespondErrorWithCode(w, "Email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create student", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to create student", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.invalidateListCache(r.Context())
	logger.Info("student created", "student_id", dbStudent.ID)

	httputil.RespondJSON(w, dbStudent, http.StatusCreated)
}

// Update handles replacing a student
// @Summary      Update student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string         true "Student ID"
// @Param        request body StudentRequest true "Student"
// @Success      200 {object} database.Student
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /students/{id} [put]
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

	dbStudent, err := h.store.Update(r.Context(), id, req.Name, req.Email, req.CourseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Student not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrDuplicateEmail) {
			httputil.RespondErrorWithCode(w, "Email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		logger.Error("failed to update student", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to update student", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.invalidateListCache(r.Context())

	httputil.RespondJSON(w, dbStudent, http.StatusOK)
}

// Delete handles removing a student
// @Summary      Delete student
// @Tags         students
// @Security     BearerAuth
// @Param        id path string true "Student ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /students/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Student not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete student", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to delete student", httputil.CodeInternalError, http.StatusInternalServerError)
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
		logging.GetLoggerFromContext(ctx).Warn("student list cache invalidation failed", "error", err.Error())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid student id", httputil.CodeInvalidID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (StudentRequest, bool) {
	var req StudentRequest
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
