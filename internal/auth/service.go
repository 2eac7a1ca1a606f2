package auth

import (
	"context"
	"log/slog"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/token"
	"github.com/praxis-crm/praxis/internal/users"
)

// Authenticator verifies a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*users.Credentials, error)
}

// Registrar creates accounts for self-registration.
type Registrar interface {
	CreateUser(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
}

// RoleSource returns the role codes an identity carries, embedded into the
// signed tokens.
type RoleSource interface {
	RoleCodesForUser(ctx context.Context, userID int64) ([]string, error)
}

// Service implements the authentication flows over the token service.
type Service struct {
	users  Authenticator
	signup Registrar
	roles  RoleSource
	tokens *token.Service
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(users Authenticator, signup Registrar, roles RoleSource, tokens *token.Service, logger *slog.Logger) *Service {
	return &Service{users: users, signup: signup, roles: roles, tokens: tokens, logger: logger}
}

// Login verifies credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*token.Pair, error) {
	creds, err := s.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.RoleCodesForUser(ctx, creds.ID)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	pair, err := s.tokens.IssuePair(creds.ID, creds.Username, roles)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login", slog.Int64("user_id", creds.ID), slog.String("username", creds.Username))
	return pair, nil
}

// Register creates an account and logs it straight in.
func (s *Service) Register(ctx context.Context, req users.CreateUserRequest) (*token.Pair, error) {
	user, err := s.signup.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.RoleCodesForUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	s.logger.Info("registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	return s.tokens.IssuePair(user.ID, user.Username, roles)
}

// Refresh exchanges a refresh token for a new pair. An expired refresh token
// means the session is over: the caller must log in again.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*token.Pair, error) {
	return s.tokens.Refresh(ctx, req.RefreshToken)
}

// Logout blacklists both halves of the pair for their remaining lifetimes.
func (s *Service) Logout(ctx context.Context, accessToken string, req LogoutRequest) error {
	if err := s.tokens.Invalidate(ctx, accessToken); err != nil {
		return err
	}
	if req.RefreshToken != "" {
		if err := s.tokens.Invalidate(ctx, req.RefreshToken); err != nil {
			return err
		}
	}
	return nil
}
