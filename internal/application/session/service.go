package session

import (
	"context"
	"errors"

	"github.com/go-account-api/internal/domain"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User // nil for whitelisted admins
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type tokenIssuer interface {
	SignAccess(userID, email, role string) (string, error)
	SignRefresh(userID, email, role string) (string, error)
	VerifyRefresh(token string) (*jwtinfra.UserClaims, error)
}

type passwordComparer interface {
	Compare(plain, digest string) bool
}

type adminValidator interface {
	Validate(email, password string) bool
}

type service struct {
	userRepo userStore
	tokens   tokenIssuer
	hasher   passwordComparer
	admins   adminValidator
}

type ServiceDeps struct {
	UserRepo userStore
	Tokens   tokenIssuer
	Hasher   passwordComparer
	Admins   adminValidator
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo: deps.UserRepo,
		tokens:   deps.Tokens,
		hasher:   deps.Hasher,
		admins:   deps.Admins,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := domain.NormalizeEmail(req.Email)
	if s.admins.Validate(email, req.Password) {
		return s.issue(domain.AdminUserID, email, domain.RoleAdmin, nil)
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(req.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(u.UserID, u.Email, u.Role, u)
}

func (s *service) Refresh(_ context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	return s.tokens.SignAccess(claims.UserID, claims.Email, claims.Role)
}

func (s *service) issue(userID, email, role string, u *domain.User) (*LoginResult, error) {
	access, err := s.tokens.SignAccess(userID, email, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefresh(userID, email, role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: u}, nil
}
