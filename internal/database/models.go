package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun model for the users table. Uniqueness of email is enforced
// by the database constraint; repositories translate the violation into a
// domain error.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" json:"-"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:now()" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:now()" json:"updated_at"`
}

// Teacher is the bun model for the teachers table.
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:t" json:"-"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:now()" json:"updated_at"`

	Courses []*Course `bun:"rel:has-many,join:id=teacher_id" json:"courses,omitempty"`
}

// Course is the bun model for the courses table.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c" json:"-"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description"`
	TeacherID   *uuid.UUID `bun:"teacher_id,type:uuid,nullzero" json:"teacher_id,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:now()" json:"updated_at"`

	Teacher  *Teacher   `bun:"rel:belongs-to,join:teacher_id=id" json:"teacher,omitempty"`
	Students []*Student `bun:"rel:has-many,join:id=course_id" json:"students,omitempty"`
}

// Student is the bun model for the students table.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s" json:"-"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string     `bun:"name,notnull" json:"name"`
	Email     string     `bun:"email,notnull,unique" json:"email"`
	CourseID  *uuid.UUID `bun:"course_id,type:uuid,nullzero" json:"course_id,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:now()" json:"updated_at"`

	Course *Course `bun:"rel:belongs-to,join:course_id=id" json:"course,omitempty"`
}
