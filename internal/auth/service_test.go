package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/classroomhq/school-api/internal/logging"
	"github.com/classroomhq/school-api/internal/user"
)

// fakeStore is an in-memory CredentialStore
type fakeStore struct {
	byEmail map[string]*user.User
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*user.User)}
}

func (s *fakeStore) Create(_ context.Context, name, email, passwordHash string) (*user.User, error) {
	if _, exists := s.byEmail[email]; exists {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.byEmail[email] = u
	return u, nil
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) List(_ context.Context) ([]*user.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	users := make([]*user.User, 0, len(s.byEmail))
	for _, u := range s.byEmail {
		users = append(users, u)
	}
	return users, nil
}

func testLogger() *logging.Logger {
	return logging.NewLogger(true)
}

func newTestService(t *testing.T) (*Service, *fakeStore, *PasetoService) {
	t.Helper()
	store := newFakeStore()
	tokens := newTestTokenService(t, time.Hour)
	svc := NewService(store, tokens, testLogger())
	return svc, store, tokens
}

func TestRegister_Success(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "Alice", u.Name)
	require.Equal(t, "alice@example.com", u.Email)

	// Stored hash is never the plaintext, and verifies against it.
	stored := store.byEmail["alice@example.com"]
	require.NotEqual(t, "password123", stored.PasswordHash)
	require.True(t, CheckPassword("password123", stored.PasswordHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "alice@example.com", "password456")
	require.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"missing name", "", "a@b.com", "password123", ErrNameRequired},
		{"missing email", "Alice", "", "password123", ErrEmailRequired},
		{"bad email", "Alice", "not-an-email", "password123", ErrInvalidEmailFormat},
		{"missing password", "Alice", "a@b.com", "", ErrPasswordRequired},
		{"short password", "Alice", "a@b.com", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "password123")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Success_TokenVerifies(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, registered.ID, result.User.ID)

	claims, err := tokens.VerifyToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, registered.ID.String(), claims.UserID)
	require.Equal(t, "alice@example.com", claims.Email)
}

func TestListUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Bob", "bob@example.com", "password123")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
