package services

import (
	"context"
	"errors"
	"time"

	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
)

// Token is the login/refresh payload.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"-"`
}

type AuthService struct {
	users  *UserService
	repo   *repositories.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users *UserService, repo *repositories.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, repo: repo, tokens: tokens}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	logger := loggerFor(ctx, "auth")
	logger.Info().Str("user_id", user.ID.String()).Msg("login succeeded")
	return token, nil
}

// Verify decodes the bearer token and loads its user, so deactivating an
// account revokes its outstanding tokens.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*auth.Identity, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, persistence("load token user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return &auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Refresh re-issues a token for the caller with the role currently stored.
func (s *AuthService) Refresh(ctx context.Context, identity *auth.Identity) (*Token, error) {
	if identity == nil {
		return nil, auth.ErrMissingToken
	}
	user, err := s.users.GetByID(ctx, identity.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Token, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, user.Role, 0)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}
