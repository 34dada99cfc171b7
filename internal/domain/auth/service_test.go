package auth

import (
	"context"
	"testing"

	"puntoventa/internal/core/apperror"
	appctx "puntoventa/internal/core/context"
	"puntoventa/internal/core/id"
)

type memUserRepo struct {
	byEmail map[string]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*User)}
}

func (r *memUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return apperror.NewDuplicate("user", "email", u.Email)
	}
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, u *User) error {
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID)
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) List(context.Context) ([]*User, error) { return nil, nil }

func newAuthService() (*Service, *memUserRepo) {
	repo := newMemUserRepo()
	return NewService(repo, NewJWTService(DefaultJWTConfig("test-secret"))), repo
}

func registerTestUser(t *testing.T, svc *Service) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Ana@Example.com",
		Name:     "Ana Perez",
		Role:     appctx.RoleAdmin,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newAuthService()
	u := registerTestUser(t, svc)
	if u.Email != "ana@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "ana@example.com")
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct-horse" {
		t.Error("password must be stored hashed")
	}
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthService()
	registerTestUser(t, svc)

	res, err := svc.Login(context.Background(), "ANA@example.com", "correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}

	actor, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if actor.Email != "ana@example.com" || actor.Role != appctx.RoleAdmin {
		t.Errorf("unexpected actor: %+v", actor)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc, _ := newAuthService()
	registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), "ana@example.com", "wrong")
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailLooksLikeBadPassword(t *testing.T) {
	svc, _ := newAuthService()
	registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, repo := newAuthService()
	u := registerTestUser(t, svc)
	repo.byEmail[u.Email].Active = false

	_, err := svc.Login(context.Background(), u.Email, "correct-horse")
	if !apperror.IsAppError(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, _ := newAuthService()
	registerTestUser(t, svc)

	res, err := svc.Login(context.Background(), "ana@example.com", "correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTService(DefaultJWTConfig("other-secret")).ValidateToken(res.Token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService()
	u := registerTestUser(t, svc)

	if err := svc.ChangePassword(context.Background(), u.ID, "correct-horse", "battery-staple"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(context.Background(), u.Email, "correct-horse"); err == nil {
		t.Error("old password must stop working")
	}
	if _, err := svc.Login(context.Background(), u.Email, "battery-staple"); err != nil {
		t.Errorf("new password must work: %v", err)
	}
}
