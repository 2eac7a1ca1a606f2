package users

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, page shared.PageRequest) ([]User, int, error)
	FindUser(ctx context.Context, id int64) (*User, error)
	FindCredentials(ctx context.Context, username string) (*Credentials, error)
	CreateUser(ctx context.Context, req CreateUserRequest, passwordHash string) (User, error)
	UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (User, error)
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
	ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error
	TouchLastLogin(ctx context.Context, userID int64) error
}

// Invalidator drops one identity's cached permission matrix.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID int64)
}

// Service handles user business logic.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

var errUserNotFound = apperr.New(apperr.KindNotFound, apperr.CodeUserNotFound, "User not found")

// NormalizeUsername canonicalizes a username to NFC lowercase so visually
// identical logins hit the same row.
func NormalizeUsername(username string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(username)))
}

// ListUsers returns one page of users.
func (s *Service) ListUsers(ctx context.Context, page shared.PageRequest) (*UserPage, error) {
	page = page.Normalize()
	items, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if items == nil {
		items = []User{}
	}
	return &UserPage{Items: items, Pagination: shared.NewPagination(page.Page, page.Size, total)}, nil
}

// GetUser loads one user.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindUser(ctx, id)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if user == nil {
		return nil, errUserNotFound
	}
	return user, nil
}

// Authenticate verifies username/password and stamps the login. All failure
// shapes collapse into one INVALID_CREDENTIALS answer except a disabled
// account, which is told apart deliberately.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Credentials, error) {
	creds, err := s.repo.FindCredentials(ctx, NormalizeUsername(username))
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if creds == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return nil, apperr.ErrUserDisabled
	}
	if err := s.repo.TouchLastLogin(ctx, creds.ID); err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	return creds, nil
}

// CreateUser creates an account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.Username = NormalizeUsername(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.DataScope == 0 {
		req.DataScope = int(shared.ScopeOwn)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	user, err := s.repo.CreateUser(ctx, req, string(hash))
	if err != nil {
		return nil, mapUserError(err)
	}
	return &user, nil
}

// UpdateUser updates account fields and invalidates the cached matrix since
// data scope is part of the grant picture.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.DataScope == 0 {
		req.DataScope = int(shared.ScopeOwn)
	}
	user, err := s.repo.UpdateUser(ctx, id, req)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, mapUserError(err)
	}
	s.invalidator.InvalidateUser(ctx, id)
	return &user, nil
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	updated, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return apperr.ErrInternal.Wrap(err)
	}
	if !updated {
		return errUserNotFound
	}
	s.invalidator.InvalidateUser(ctx, id)
	return nil
}

// AssignRoles replaces the user's role set and invalidates their cached
// matrix so the new grants apply on the next request.
func (s *Service) AssignRoles(ctx context.Context, id int64, req AssignRolesRequest) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceRoles(ctx, id, req.RoleIDs); err != nil {
		return nil, mapUserError(err)
	}
	s.invalidator.InvalidateUser(ctx, id)
	return user, nil
}

func mapUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if strings.Contains(pgErr.ConstraintName, "email") {
				return apperr.New(apperr.KindConflict, apperr.CodeDuplicateEmail, "Email already in use")
			}
			return apperr.New(apperr.KindConflict, apperr.CodeDuplicateUsername, "Username already taken")
		case "23503":
			return apperr.New(apperr.KindBadRequest, apperr.CodeBadRequest, "Unknown role id")
		}
	}
	return apperr.ErrInternal.Wrap(err)
}
