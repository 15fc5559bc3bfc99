package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/models"
)

type stubValidator struct {
	id   uuid.UUID
	role string
	err  error
}

func (s stubValidator) ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error) {
	return s.id, s.role, s.err
}

type stubLoader struct {
	user *models.User
}

func (s stubLoader) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil {
		return nil, errors.New("no such user")
	}
	return s.user, nil
}

func TestAuthLoadsUserIntoContext(t *testing.T) {
	u := &models.User{ID: uuid.New(), Role: models.RoleSeeker}
	var seen *models.User
	h := Auth(stubValidator{id: u.ID, role: u.Role}, stubLoader{user: u})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = UserFromCtx(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != u.ID {
		t.Fatal("user not loaded into context")
	}
}

func TestAuthMissingHeader(t *testing.T) {
	h := Auth(stubValidator{}, stubLoader{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	h := Auth(stubValidator{err: errors.New("expired")}, stubLoader{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	seeker := &models.User{ID: uuid.New(), Role: models.RoleSeeker}

	h := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), admin)))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), seeker)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("seeker status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}
}
