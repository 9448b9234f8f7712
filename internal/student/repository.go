package student

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
	ErrNotFound       = errors.New("student not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles student data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List retrieves students with pagination, ordering, and optional relations
func (r *Repository) List(ctx context.Context, params query.ListParams) ([]*database.Student, error) {
	students := make([]*database.Student, 0)

	q := r.db.NewSelect().
		Model(&students).
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
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	return students, nil
}

// GetByID retrieves a student by ID with optional relations
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, populate []string) (*database.Student, error) {
	dbStudent := new(database.Student)

	q := r.db.NewSelect().
		Model(dbStudent).
		Where("s.id = ?", id)

	for _, relation := range populate {
		q = q.Relation(relation)
	}

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get student by id: %w", err)
	}

	return dbStudent, nil
}

// Create inserts a new student
func (r *Repository) Create(ctx context.Context, name, email string, courseID *uuid.UUID) (*database.Student, error) {
	dbStudent := &database.Student{
		Name:     name,
		Email:    email,
		CourseID: courseID,
	}

	_, err := r.db.NewInsert().
		Model(dbStudent).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return dbStudent, nil
}

// Update replaces a student's mutable fields
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, email string, courseID *uuid.UUID) (*database.Student, error) {
	dbStudent := &database.Student{
		ID:        id,
		Name:      name,
		Email:     email,
		CourseID:  courseID,
		UpdatedAt: time.Now(),
	}

	result, err := r.db.NewUpdate().
		Model(dbStudent).
		Column("name", "email", "course_id", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return dbStudent, nil
}

// Delete removes a student by ID
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Student)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
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
