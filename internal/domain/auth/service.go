package auth

import (
	"context"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/pkg/logger"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// Service implements authentication operations.
type Service struct {
	repo Repository
	jwt  *JWTService
}

func NewService(repo Repository, jwt *JWTService) *Service {
	return &Service{repo: repo, jwt: jwt}
}

// Login authenticates by email and password and issues an access token.
// Unknown emails and bad passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !u.Active || !u.CheckPassword(password) {
		logger.Warn(ctx, "failed login attempt", "email", NormalizeEmail(email))
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Email, u.Name, u.Role)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	u := &User{
		ID:     id.New(),
		Email:  NormalizeEmail(in.Email),
		Name:   in.Name,
		Role:   in.Role,
		Active: true,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", u.Email)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword sets a new password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, current, next string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.CheckPassword(current) {
		return apperror.NewUnauthorized("invalid credentials")
	}
	if err := u.SetPassword(next); err != nil {
		return err
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) Get(ctx context.Context, userID id.ID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}
