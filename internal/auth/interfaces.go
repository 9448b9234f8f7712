package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/classroomhq/school-api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// PasetoService (PASETO v4.local) is the production implementation.
type TokenService interface {
	CreateToken(userID uuid.UUID, email string) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// CredentialStore is the data access the auth flow needs from the user store.
// user.Repository is the production implementation.
type CredentialStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
}
