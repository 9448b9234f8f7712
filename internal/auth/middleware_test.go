package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRequireAuth_NoHeader(t *testing.T) {
	m := NewMiddleware(newTestTokenService(t, time.Hour))
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/users", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "No token provided", decodeErrorBody(t, rec)["message"])
}

func TestRequireAuth_HeaderWithoutToken(t *testing.T) {
	m := NewMiddleware(newTestTokenService(t, time.Hour))
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	for _, header := range []string{"Bearer", "Bearer ", "  Bearer  "} {
		req := httptest.NewRequest(http.MethodGet, "/auth/users", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		require.Equal(t, "Token missing", decodeErrorBody(t, rec)["message"], "header %q", header)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	m := NewMiddleware(svc)
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	expired := newTestTokenService(t, -time.Minute)
	expiredToken, err := expired.CreateToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	valid, err := svc.CreateToken(uuid.New(), "user@example.com")
	require.NoError(t, err)
	payload := []byte(valid)
	pos := len(payload) - 10
	if payload[pos] == 'A' {
		payload[pos] = 'B'
	} else {
		payload[pos] = 'A'
	}
	tampered := string(payload)

	// Expiry, tampering, and garbage all collapse to the same message.
	for name, token := range map[string]string{
		"garbage":  "garbage-token",
		"tampered": tampered,
		"expired":  expiredToken,
	} {
		req := httptest.NewRequest(http.MethodGet, "/auth/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, name)
		require.Equal(t, "Invalid token", decodeErrorBody(t, rec)["message"], name)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	m := NewMiddleware(svc)

	uid := uuid.New()
	token, err := svc.CreateToken(uid, "user@example.com")
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotEmail string
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		gotID, ok = GetUserIDFromContext(r.Context())
		require.True(t, ok)
		gotEmail, ok = GetUserEmailFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uid, gotID)
	require.Equal(t, "user@example.com", gotEmail)
}
