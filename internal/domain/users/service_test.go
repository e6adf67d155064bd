package users

import (
	"context"
	"errors"
	"testing"

	"pet-census/internal/ports/auth"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if u.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[u.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, errRepoNotFound
}

func (r *testRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

type testIssuer struct {
	lastClaims auth.Claims
}

func (i *testIssuer) Issue(ctx context.Context, c auth.Claims) (string, error) {
	i.lastClaims = c
	return "token-" + c.UserID, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_HashesPassword(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Ana@Example.com",
		Password: "super-secreta",
		FullName: "Ana Pérez",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("expected email normalized, got %s", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "super-secreta" {
		t.Fatalf("expected bcrypt hash, got %q", u.PasswordHash)
	}
	if u.Role != RoleUser {
		t.Fatalf("expected default role user, got %s", u.Role)
	}
}

func TestService_Register_RejectsShortPassword(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "corta",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	in := RegisterInput{Email: "ana@example.com", Password: "super-secreta"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Login_IssuesTokenWithRoleClaims(t *testing.T) {
	repo := newTestRepo()
	issuer := &testIssuer{}
	svc := NewService(repo, issuer)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "super-secreta",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := svc.SetRole(context.Background(), u.ID, RoleAdmin, []string{"city-1"}); err != nil {
		t.Fatalf("SetRole error: %v", err)
	}

	got, token, err := svc.Login(context.Background(), "ana@example.com", "super-secreta")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if got.ID != u.ID {
		t.Fatalf("expected same user")
	}
	if issuer.lastClaims.Role != "admin" || len(issuer.lastClaims.CityIDs) != 1 {
		t.Fatalf("expected role/city claims in token, got %#v", issuer.lastClaims)
	}
}

func TestService_Login_WrongPassword_SameError(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "super-secreta",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, _, errBadPass := svc.Login(context.Background(), "ana@example.com", "otra-clave")
	_, _, errNoUser := svc.Login(context.Background(), "nadie@example.com", "super-secreta")

	if errBadPass != ErrInvalidCredentials || errNoUser != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errBadPass, errNoUser)
	}
}

func TestService_SetRole_RejectsUnknownRole(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	_, err := svc.SetRole(context.Background(), "user-1", Role("superuser"), nil)
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
