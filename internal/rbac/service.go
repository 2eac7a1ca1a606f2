package rbac

import (
	"context"
	"log/slog"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/authz"
	"github.com/praxis-crm/praxis/internal/shared"
)

// RepositoryPort defines data access methods for the permission model.
type RepositoryPort interface {
	MatrixForUser(ctx context.Context, userID int64) (map[string][]string, error)
	RoleCodesForUser(ctx context.Context, userID int64) ([]string, error)
	FindIdentity(ctx context.Context, userID int64) (*identity, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	UserIDsForRole(ctx context.Context, roleID int64) ([]int64, error)
	ActiveUserIDs(ctx context.Context, limit int) ([]int64, error)
}

type matrixSource struct {
	repo RepositoryPort
}

func (m matrixSource) PermissionMatrix(ctx context.Context, userID int64) (map[string][]string, error) {
	return m.repo.MatrixForUser(ctx, userID)
}

// NewMatrixSource adapts the repository into the cache's source interface.
func NewMatrixSource(repo RepositoryPort) authz.MatrixSource {
	return matrixSource{repo: repo}
}

// Service assembles principals and answers matrix queries through the
// cache. It is both the token layer's PrincipalSource and the matrix
// authority role mutations invalidate against.
type Service struct {
	repo   RepositoryPort
	cache  *authz.MatrixCache
	logger *slog.Logger
}

// NewService builds Service instance. Pass the cache built over this
// service's repository.
func NewService(repo RepositoryPort, cache *authz.MatrixCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// PermissionMatrix returns the cached resource-to-actions matrix for the
// identity.
func (s *Service) PermissionMatrix(ctx context.Context, userID int64) (map[string][]string, error) {
	return s.cache.Matrix(ctx, userID)
}

// LoadPrincipal assembles the live principal for an identity. Grants come
// from current state, not from whatever the token captured at signing time.
// Disabled accounts are rejected here so a mid-session deactivation locks
// the user out on their next request.
func (s *Service) LoadPrincipal(ctx context.Context, userID int64) (*shared.Principal, error) {
	id, err := s.repo.FindIdentity(ctx, userID)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if id == nil {
		return nil, apperr.ErrUnauthorized
	}
	if !id.IsActive {
		return nil, apperr.ErrUserDisabled
	}
	roles, err := s.repo.RoleCodesForUser(ctx, userID)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	matrix, err := s.cache.Matrix(ctx, userID)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	return &shared.Principal{
		ID:           id.ID,
		Username:     id.Username,
		Email:        id.Email,
		Name:         id.Name,
		RoleCodes:    roles,
		Permissions:  matrix,
		DataScope:    shared.DataScopeFromCode(id.DataScope),
		DepartmentID: id.DepartmentID,
	}, nil
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	return perms, nil
}

// InvalidateUser drops the identity's cached matrix.
func (s *Service) InvalidateUser(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil && s.logger != nil {
		s.logger.Warn("matrix invalidation failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

// InvalidateRole drops the cached matrix of every identity holding the
// role. Called after any grant change touching the role.
func (s *Service) InvalidateRole(ctx context.Context, roleID int64) error {
	userIDs, err := s.repo.UserIDsForRole(ctx, roleID)
	if err != nil {
		return apperr.ErrInternal.Wrap(err)
	}
	for _, userID := range userIDs {
		s.InvalidateUser(ctx, userID)
	}
	return nil
}

// WarmMatrices refreshes the cached matrix for recently active identities.
// Used by the scheduled warm job.
func (s *Service) WarmMatrices(ctx context.Context, limit int) (int, error) {
	userIDs, err := s.repo.ActiveUserIDs(ctx, limit)
	if err != nil {
		return 0, apperr.ErrInternal.Wrap(err)
	}
	warmed := 0
	for _, userID := range userIDs {
		if _, err := s.cache.Matrix(ctx, userID); err != nil {
			if s.logger != nil {
				s.logger.Warn("matrix warm failed", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			continue
		}
		warmed++
	}
	return warmed, nil
}
