package roles_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/roles"
	"github.com/praxis-crm/praxis/internal/shared"
)

type stubRepo struct {
	roles.RepositoryPort

	role          *roles.Role
	createErr     error
	deleted       bool
	replacedFor   int64
	permissionIDs []int64
}

func (s *stubRepo) FindRole(context.Context, int64) (*roles.Role, error) {
	return s.role, nil
}

func (s *stubRepo) CreateRole(_ context.Context, req roles.CreateRoleRequest) (roles.Role, error) {
	if s.createErr != nil {
		return roles.Role{}, s.createErr
	}
	return roles.Role{ID: 1, Code: req.Code, Name: req.Name, DataScope: req.DataScope}, nil
}

func (s *stubRepo) DeleteRole(context.Context, int64) (bool, error) {
	return s.deleted, nil
}

func (s *stubRepo) ReplacePermissions(_ context.Context, roleID int64, permissionIDs []int64) error {
	s.replacedFor = roleID
	s.permissionIDs = permissionIDs
	return nil
}

type recordingInvalidator struct {
	roleIDs []int64
}

func (r *recordingInvalidator) InvalidateRole(_ context.Context, roleID int64) error {
	r.roleIDs = append(r.roleIDs, roleID)
	return nil
}

func TestCreateRoleDefaultsScope(t *testing.T) {
	svc := roles.NewService(&stubRepo{}, &recordingInvalidator{})
	role, err := svc.CreateRole(context.Background(), roles.CreateRoleRequest{Code: "TEACHER", Name: "Teacher"})
	require.NoError(t, err)
	assert.Equal(t, int(shared.ScopeOwn), role.DataScope)
}

func TestCreateRoleDuplicateCode(t *testing.T) {
	repo := &stubRepo{createErr: &pgconn.PgError{Code: "23505", ConstraintName: "roles_code_key"}}
	svc := roles.NewService(repo, &recordingInvalidator{})

	_, err := svc.CreateRole(context.Background(), roles.CreateRoleRequest{Code: "TEACHER", Name: "Teacher"})
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
	assert.Equal(t, apperr.CodeConflict, appErr.Code)
}

func TestGetRoleNotFound(t *testing.T) {
	svc := roles.NewService(&stubRepo{}, &recordingInvalidator{})
	_, err := svc.GetRole(context.Background(), 9)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeRoleNotFound, apperr.From(err).Code)
}

func TestDeleteRoleInvalidatesHolders(t *testing.T) {
	invalidator := &recordingInvalidator{}
	svc := roles.NewService(&stubRepo{deleted: true}, invalidator)

	require.NoError(t, svc.DeleteRole(context.Background(), 4))
	assert.Equal(t, []int64{4}, invalidator.roleIDs)
}

func TestGrantPermissionsInvalidatesHolders(t *testing.T) {
	repo := &stubRepo{role: &roles.Role{ID: 4, Code: "STAFF"}}
	invalidator := &recordingInvalidator{}
	svc := roles.NewService(repo, invalidator)

	role, err := svc.GrantPermissions(context.Background(), 4, roles.GrantPermissionsRequest{PermissionIDs: []int64{10, 11}})
	require.NoError(t, err)
	assert.Equal(t, "STAFF", role.Code)
	assert.Equal(t, int64(4), repo.replacedFor)
	assert.Equal(t, []int64{10, 11}, repo.permissionIDs)
	assert.Equal(t, []int64{4}, invalidator.roleIDs)
}
