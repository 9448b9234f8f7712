package course

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/classroomhq/school-api/internal/database"
	"github.com/classroomhq/school-api/internal/httputil"
	"github.com/classroomhq/school-api/internal/query"
)

type stubStore struct {
	err error
}

func (s *stubStore) List(_ context.Context, _ query.ListParams) ([]*database.Course, error) {
	return nil, s.err
}

func (s *stubStore) GetByID(_ context.Context, _ uuid.UUID, _ []string) (*database.Course, error) {
	return nil, s.err
}

func (s *stubStore) Create(_ context.Context, title, description string, teacherID *uuid.UUID) (*database.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &database.Course{ID: uuid.New(), Title: title, Description: description, TeacherID: teacherID}, nil
}

func (s *stubStore) Update(_ context.Context, id uuid.UUID, title, description string, teacherID *uuid.UUID) (*database.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &database.Course{ID: id, Title: title, Description: description, TeacherID: teacherID}, nil
}

func (s *stubStore) Delete(_ context.Context, _ uuid.UUID) error {
	return s.err
}

func postCreate(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreateCourse_TitleRequired(t *testing.T) {
	h := NewHandler(&stubStore{}, nil)

	rec := postCreate(h, `{"description":"Linear algebra for first-years"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "Title is required", body.Message)
	require.Equal(t, httputil.CodeTitleRequired, body.Code)
}

func TestCreateCourse_Success(t *testing.T) {
	h := NewHandler(&stubStore{}, nil)

	rec := postCreate(h, `{"title":"Algebra I","description":"Linear algebra for first-years"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created database.Course
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Equal(t, "Algebra I", created.Title)
}

func TestCreateCourse_InvalidTeacherReference(t *testing.T) {
	h := NewHandler(&stubStore{err: ErrInvalidTeacher}, nil)

	rec := postCreate(h, `{"title":"Algebra I"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "Teacher does not exist", body.Message)
}
