package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/swipetonpro/backend/internal/models"
)

type mockUserStore struct {
	users map[string]*models.User // by email
	byID  map[uuid.UUID]*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[string]*models.User{}, byID: map[uuid.UUID]*models.User{}}
}

func (m *mockUserStore) Create(ctx context.Context, email, passwordHash, displayName, role, trade, verificationStatus string) (*models.User, error) {
	u := &models.User{
		ID:                 uuid.New(),
		Email:              email,
		PasswordHash:       passwordHash,
		DisplayName:        displayName,
		Role:               role,
		Trade:              trade,
		VerificationStatus: verificationStatus,
		CreatedAt:          time.Now(),
	}
	m.users[email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.users[email], nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.byID[id], nil
}

func (m *mockUserStore) GetFeatured(ctx context.Context) (*models.User, error) {
	return nil, nil
}

func TestRegisterProfessionalStartsPending(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "secret", time.Hour)

	u, err := svc.Register(context.Background(), "marc@example.com", "hunter2!", "Marc", models.RoleProfessional, "plombier")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.VerificationStatus != models.VerificationPending {
		t.Fatalf("verification = %q, want pending", u.VerificationStatus)
	}
	if !u.IsGhost() {
		t.Fatal("fresh professional should be in ghost mode")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2!")); err != nil {
		t.Fatal("password hash does not verify")
	}
}

func TestRegisterSeekerHasNoVerification(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "secret", time.Hour)

	u, err := svc.Register(context.Background(), "lea@example.com", "pw123456", "Lea", models.RoleSeeker, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.VerificationStatus != "" {
		t.Fatalf("verification = %q, want empty", u.VerificationStatus)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := NewService(newMockUserStore(), "secret", time.Hour)
	if _, err := svc.Register(context.Background(), "a@b.c", "pw", "A", models.RoleAdmin, ""); err != ErrInvalidRole {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
}

func TestLoginAndValidateToken(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "secret", time.Hour)

	u, err := svc.Register(context.Background(), "marc@example.com", "hunter2!", "Marc", models.RoleProfessional, "plombier")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(context.Background(), "marc@example.com", "hunter2!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	id, role, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id != u.ID {
		t.Fatalf("subject = %s, want %s", id, u.ID)
	}
	if role != models.RoleProfessional {
		t.Fatalf("role = %q, want professional", role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "secret", time.Hour)

	if _, err := svc.Register(context.Background(), "marc@example.com", "hunter2!", "Marc", models.RoleSeeker, ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(context.Background(), "marc@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "hunter2!"); err != ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	store := newMockUserStore()
	svc := NewService(store, "secret", time.Hour)
	other := NewService(store, "other-secret", time.Hour)

	if _, err := svc.Register(context.Background(), "m@e.c", "pw123456", "M", models.RoleSeeker, ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.Login(context.Background(), "m@e.c", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := other.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("token signed with a different secret should not validate")
	}
}
