package teacher

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
	ErrNotFound       = errors.New("teacher not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles teacher data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List retrieves teachers with pagination, ordering, and optional relations
func (r *Repository) List(ctx context.Context, params query.ListParams) ([]*database.Teacher, error) {
	teachers := make([]*database.Teacher, 0)

	q := r.db.NewSelect().
		Model(&teachers).
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
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}

	return teachers, nil
}

// GetByID retrieves a teacher by ID with optional relations
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, populate []string) (*database.Teacher, error) {
	dbTeacher := new(database.Teacher)

	q := r.db.NewSelect().
		Model(dbTeacher).
		Where("t.id = ?", id)

	for _, relation := range populate {
		q = q.Relation(relation)
	}

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get teacher by id: %w", err)
	}

	return dbTeacher, nil
}

// Create inserts a new teacher
func (r *Repository) Create(ctx context.Context, name, email string) (*database.Teacher, error) {
	dbTeacher := &database.Teacher{
		Name:  name,
		Email: email,
	}

	_, err := r.db.NewInsert().
		Model(dbTeacher).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	return dbTeacher, nil
}

// Update replaces a teacher's mutable fields
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, email string) (*database.Teacher, error) {
	dbTeacher := &database.Teacher{
		ID:        id,
		Name:      name,
		Email:     email,
		UpdatedAt: time.Now(),
	}

	result, err := r.db.NewUpdate().
		Model(dbTeacher).
		Column("name", "email", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update teacher: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return dbTeacher, nil
}

// Delete removes a teacher by ID
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Teacher)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete teacher: %w", err)
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
