package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/classroomhq/school-api/internal/database"
	"github.com/classroomhq/school-api/internal/query"
)

var (
	ErrNotFound = errors.New("course not found")
	// ErrInvalidTeacher covers a teacher_id that references no teacher row.
	ErrInvalidTeacher = errors.New("teacher does not exist")
)

// Repository handles course data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List retrieves courses with pagination, ordering, and optional relations
func (r *Repository) List(ctx context.Context, params query.ListParams) ([]*database.Course, error) {
	courses := make([]*database.Course, 0)

	q := r.db.NewSelect().
		Model(&courses).
		Limit(params.Limit).
		Offset(params.Offset())

	for _, relation := range params.Populate {
		q = q.Relation(relation)
	}

	if expr := params.OrderExpr(); expr != "" {
		q = q.Order(expr)
	} else {
		q = q.Order("created_at ASC")
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, nil
}

// GetByID retrieves a course by ID with optional relations
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, populate []string) (*database.Course, error) {
	dbCourse := new(database.Course)

	q := r.db.NewSelect().
		Model(dbCourse).
		Where("c.id = ?", id)

	for _, relation := range populate {
		q = q.Relation(relation)
	}

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return dbCourse, nil
}

// Create inserts a new course
func (r *Repository) Create(ctx context.Context, title, description string, teacherID *uuid.UUID) (*database.Course, error) {
	dbCourse := &database.Course{
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
	}

	_, err := r.db.NewInsert().
		Model(dbCourse).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "violates foreign key constraint") {
			return nil, ErrInvalidTeacher
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return dbCourse, nil
}

// Update replaces a course's mutable fields
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description string, teacherID *uuid.UUID) (*database.Course, error) {
	dbCourse := &database.Course{
		ID:          id,
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
		UpdatedAt:   time.Now(),
	}

	result, err := r.db.NewUpdate().
		Model(dbCourse).
		Column("title", "description", "teacher_id", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "violates foreign key constraint") {
			return nil, ErrInvalidTeacher
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return dbCourse, nil
}

// Delete removes a course by ID
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Course)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
