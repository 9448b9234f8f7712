package course

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

const cacheResource = "courses"

var (
	sortFields = map[string]string{
		"title":      "title",
		"created_at": "created_at",
	}
	relations = map[string]string{
		"teacher":  "Teacher",
		"students": "Students",
	}
)

// Store is the data access the course handlers need. Repository is the
// production implementation.
type Store interface {
	List(ctx context.Context, params query.ListParams) ([]*database.Course, error)
	GetByID(ctx context.Context, id uuid.UUID, populate []string) (*database.Course, error)
	Create(ctx context.Context, title, description string, teacherID *uuid.UUID) (*database.Course, error)
	Update(ctx context.Context, id uuid.UUID, title, description string, teacherID *uuid.UUID) (*database.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListCache is the read-through cache the list endpoint uses. cache.Cache is
// the production implementation; a nil ListCache disables caching.
type ListCache interface {
	GetList(ctx context.Context, resource, variant string, dest any) (bool, error)
	SetList(ctx context.Context, resource, variant string, value any) error
	Invalidate(ctx context.Context, resource string) error
}

// Handler contains HTTP handlers for course endpoints
type Handler struct {
	store     Store
	listCache ListCache
}

func NewHandler(store Store, listCache ListCache) *Handler {
	return &Handler{store: store, listCache: listCache}
}

// CourseRequest represents the create/update request body
type CourseRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TeacherID   *uuid.UUID `json:"teacher_id"`
}

// List handles listing courses
// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        page     query int    false "Page number"
// @Param        limit    query int    false "Page size (max 100)"
// @Param        sort     query string false "Sort, e.g. title:desc"
// @Param        populate query string false "Relations to include (teacher,students)"
// @Success      200 {array} database.Course
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /courses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	params := query.ParseListParams(r.URL.Query(), sortFields, relations)
	variant := params.Variant()

	if h.listCache != nil {
		var cached []*database.Course
		hit, err := h.listCache.GetList(r.Context(), cacheResource, variant, &cached)
		if err != nil {
			logger.Warn("course list cache read failed", "error", err.Error())
		} else if hit {
			httputil.RespondJSON(w, cached, http.StatusOK)
			return
		}
	}

	courses, err := h.store.List(r.Context(), params)
	if err != nil {
		logger.Error("failed to list courses", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to list courses", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if h.listCache != nil {
		if err := h.listCache.SetList(r.Context(), cacheResource, variant, courses); err != nil {
			logger.Warn("course list cache write failed", "error", err.Error())
		}
	}

	httputil.RespondJSON(w, courses, http.StatusOK)
}

// Get handles fetching a single course
// @Summary      Get course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string true  "Course ID"
// @Param        populate query string false "Relations to include (teacher,students)"
// @Success      200 {object} database.Course
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /courses/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	params := query.ParseListParams(r.URL.Query(), sortFields, relations)

	dbCourse, err := h.store.GetByID(r.Context(), id, params.Populate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Course not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get course", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to get course", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, dbCourse, http.StatusOK)
}

// Create handles creating a course
// @Summary      Create course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CourseRequest true "Course"
// @Success      201 {object} database.Course
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /courses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	dbCourse, err := h.store.Create(r.Context(), req.Title, req.Description, req.TeacherID)
	if err != nil {
		if errors.Is(err, ErrInvalidTeacher) {
			httputil.RespondErrorWithCode(w, "Teacher does not exist", httputil.CodeInvalidID, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create course", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to create course", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.invalidateListCache(r.Context())
	logger.Info("course created", "course_id", dbCourse.ID)

	httputil.RespondJSON(w, dbCourse, http.StatusCreated)
}

// Update handles replacing a course
// @Summary      Update course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string        true "Course ID"
// @Param        request body CourseRequest true "Course"
// @Success      200 {object} database.Course
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /courses/{id} [put]
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

	dbCourse, err := h.store.Update(r.Context(), id, req.Title, req.Description, req.TeacherID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Course not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrInvalidTeacher) {
			httputil.RespondErrorWithCode(w, "Teacher does not exist", httputil.CodeInvalidID, http.StatusBadRequest)
			return
		}
		logger.Error("failed to update course", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to update course", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.invalidateListCache(r.Context())

	httputil.RespondJSON(w, dbCourse, http.StatusOK)
}

// Delete handles removing a course
// @Summary      Delete course
// @Tags         courses
// @Security     BearerAuth
// @Param        id path string true "Course ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /courses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Course not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete course", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to delete course", httputil.CodeInternalError, http.StatusInternalServerError)
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
		logging.GetLoggerFromContext(ctx).Warn("course list cache invalidation failed", "error", err.Error())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid course id", httputil.CodeInvalidID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (CourseRequest, bool) {
	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return req, false
	}
	if req.Title == "" {
		httputil.RespondErrorWithCode(w, "Title is required", httputil.CodeTitleRequired, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

