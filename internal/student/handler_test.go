package student

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/classroomhq/school-api/internal/database"
	"github.com/classroomhq/school-api/internal/query"
)

// stubStore records the parameters handlers pass down and returns canned data
type stubStore struct {
	listParams  query.ListParams
	listCalls   int
	getID       uuid.UUID
	getPopulate []string

	students []*database.Student
	student  *database.Student
	err      error
}

func (s *stubStore) List(_ context.Context, params query.ListParams) ([]*database.Student, error) {
	s.listParams = params
	s.listCalls++
	return s.students, s.err
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID, populate []string) (*database.Student, error) {
	s.getID = id
	s.getPopulate = populate
	if s.err != nil {
		return nil, s.err
	}
	return s.student, nil
}

func (s *stubStore) Create(_ context.Context, name, email string, courseID *uuid.UUID) (*database.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &database.Student{ID: uuid.New(), Name: name, Email: email, CourseID: courseID}, nil
}

func (s *stubStore) Update(_ context.Context, id uuid.UUID, name, email string, courseID *uuid.UUID) (*database.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &database.Student{ID: id, Name: name, Email: email, CourseID: courseID}, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	return s.err
}

func newTestRouter(store Store) *chi.Mux {
	h := NewHandler(store, nil)
	r := chi.NewRouter()
	r.Route("/students", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func doRequest(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestList_PassesParsedParams(t *testing.T) {
	store := &stubStore{students: []*database.Student{}}
	router := newTestRouter(store)

	rec := doRequest(router, http.MethodGet, "/students?page=2&limit=500&sort=name:desc&populate=course,bogus", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, 2, store.listParams.Page)
	require.Equal(t, 100, store.listParams.Limit) // clamped
	require.Equal(t, "name DESC", store.listParams.OrderExpr())
	require.Equal(t, []string{"Course"}, store.listParams.Populate)
}

func TestList_EmptyResultIsArray(t *testing.T) {
	store := &stubStore{students: []*database.Student{}}
	router := newTestRouter(store)

	rec := doRequest(router, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGet_InvalidID(t *testing.T) {
	router := newTestRouter(&stubStore{})

	rec := doRequest(router, http.MethodGet, "/students/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGet_NotFound(t *testing.T) {
	router := newTestRouter(&stubStore{err: ErrNotFound})

	rec := doRequest(router, http.MethodGet, "/students/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "Student not found", body["message"])
}

func TestGet_PopulateForwarded(t *testing.T) {
	store := &stubStore{student: &database.Student{ID: uuid.New(), Name: "Alice", Email: "alice@school.test"}}
	router := newTestRouter(store)

	id := uuid.New()
	rec := doRequest(router, http.MethodGet, "/students/"+id.String()+"?populate=course", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, id, store.getID)
	require.Equal(t, []string{"Course"}, store.getPopulate)
}

func TestCreate_Validation(t *testing.T) {
	router := newTestRouter(&stubStore{})

	rec := doRequest(router, http.MethodPost, "/students", `{"email":"a@school.test"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPost, "/students", `{"name":"Alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPost, "/students", "{broken")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_Success(t *testing.T) {
	router := newTestRouter(&stubStore{})

	rec := doRequest(router, http.MethodPost, "/students", `{"name":"Alice","email":"alice@school.test"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created database.Student
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Equal(t, "Alice", created.Name)
	require.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	router := newTestRouter(&stubStore{err: ErrDuplicateEmail})

	rec := doRequest(router, http.MethodPost, "/students", `{"name":"Alice","email":"alice@school.test"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "Email already exists", body["message"])
}

func TestUpdate_NotFound(t *testing.T) {
	router := newTestRouter(&stubStore{err: ErrNotFound})

	rec := doRequest(router, http.MethodPut, "/students/"+uuid.NewString(), `{"name":"Alice","email":"alice@school.test"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_Responses(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		router := newTestRouter(&stubStore{})
		rec := doRequest(router, http.MethodDelete, "/students/"+uuid.NewString(), "")
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		router := newTestRouter(&stubStore{err: ErrNotFound})
		rec := doRequest(router, http.MethodDelete, "/students/"+uuid.NewString(), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
