package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context, page shared.PageRequest) ([]Role, int, error)
	FindRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (Role, error)
	UpdateRole(ctx context.Context, id int64, req UpdateRoleRequest) (Role, error)
	DeleteRole(ctx context.Context, id int64) (bool, error)
	ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// Invalidator drops cached permission matrices after a grant change.
type Invalidator interface {
	InvalidateRole(ctx context.Context, roleID int64) error
}

// Service handles role business logic.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

var errRoleNotFound = apperr.New(apperr.KindNotFound, apperr.CodeRoleNotFound, "Role not found")

// ListRoles returns one page of roles.
func (s *Service) ListRoles(ctx context.Context, page shared.PageRequest) (*RolePage, error) {
	page = page.Normalize()
	items, total, err := s.repo.ListRoles(ctx, page)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if items == nil {
		items = []Role{}
	}
	return &RolePage{Items: items, Pagination: shared.NewPagination(page.Page, page.Size, total)}, nil
}

// GetRole loads one role.
func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	role, err := s.repo.FindRole(ctx, id)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if role == nil {
		return nil, errRoleNotFound
	}
	return role, nil
}

// CreateRole creates a role. Duplicate codes map to CONFLICT.
func (s *Service) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	if req.DataScope == 0 {
		req.DataScope = int(shared.ScopeOwn)
	}
	role, err := s.repo.CreateRole(ctx, req)
	if err != nil {
		return nil, mapRoleError(err)
	}
	return &role, nil
}

// UpdateRole updates a role and invalidates its holders' cached grants
// since data scope travels with the role.
func (s *Service) UpdateRole(ctx context.Context, id int64, req UpdateRoleRequest) (*Role, error) {
	if req.DataScope == 0 {
		req.DataScope = int(shared.ScopeOwn)
	}
	role, err := s.repo.UpdateRole(ctx, id, req)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errRoleNotFound
	}
	if err != nil {
		return nil, mapRoleError(err)
	}
	if err := s.invalidator.InvalidateRole(ctx, id); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole removes a role after invalidating its holders.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if err := s.invalidator.InvalidateRole(ctx, id); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteRole(ctx, id)
	if err != nil {
		return apperr.ErrInternal.Wrap(err)
	}
	if !deleted {
		return errRoleNotFound
	}
	return nil
}

// GrantPermissions replaces the role's permission set and invalidates every
// holder so the change applies on their next request.
func (s *Service) GrantPermissions(ctx context.Context, id int64, req GrantPermissionsRequest) (*Role, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplacePermissions(ctx, id, req.PermissionIDs); err != nil {
		return nil, mapRoleError(err)
	}
	if err := s.invalidator.InvalidateRole(ctx, id); err != nil {
		return nil, err
	}
	return role, nil
}

func mapRoleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.New(apperr.KindConflict, apperr.CodeConflict, "Role code already exists")
		case "23503":
			return apperr.New(apperr.KindBadRequest, apperr.CodeBadRequest, "Unknown permission id")
		}
	}
	return apperr.ErrInternal.Wrap(err)
}
