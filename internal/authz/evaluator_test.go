package authz_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/authz"
	"github.com/praxis-crm/praxis/internal/routing"
	"github.com/praxis-crm/praxis/internal/shared"
)

func TestAuthorizePublicRoute(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	_, err := e.Authorize(context.Background(), nil, nil)
	assert.NoError(t, err)
}

func TestAuthorizeRejectsAnonymous(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	_, err := e.Authorize(context.Background(), nil, &routing.Requirement{Resource: "USER", Action: "VIEW"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthorizeSuperAdminBypass(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	p := &shared.Principal{ID: 1, RoleCodes: []string{shared.RoleSuperAdmin}}
	_, err := e.Authorize(context.Background(), p, &routing.Requirement{Resource: "WALLET", Action: "APPROVE"})
	assert.NoError(t, err)
}

func TestAuthorizeMatrix(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	cases := []struct {
		name        string
		permissions map[string][]string
		resource    string
		action      string
		allowed     bool
	}{
		{"exact grant", map[string][]string{"USER": {"VIEW", "UPDATE"}}, "USER", "VIEW", true},
		{"missing action", map[string][]string{"USER": {"VIEW"}}, "USER", "DELETE", false},
		{"missing resource", map[string][]string{"USER": {"VIEW"}}, "ROLE", "VIEW", false},
		{"wildcard action", map[string][]string{"USER": {shared.Wildcard}}, "USER", "EXPORT", true},
		{"wildcard resource", map[string][]string{shared.Wildcard: {"VIEW"}}, "STUDENT", "VIEW", true},
		{"empty matrix", nil, "USER", "VIEW", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &shared.Principal{ID: 7, RoleCodes: []string{"STAFF"}, Permissions: tc.permissions}
			_, err := e.Authorize(context.Background(), p, &routing.Requirement{Resource: tc.resource, Action: tc.action})
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
			}
		})
	}
}

func TestAuthorizeAuthenticatedOnly(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	req := routing.Authenticated()

	_, err := e.Authorize(context.Background(), nil, req)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	p := &shared.Principal{ID: 3, RoleCodes: []string{"STAFF"}}
	_, err = e.Authorize(context.Background(), p, req)
	assert.NoError(t, err)
}

func TestAuthorizePropagatesScope(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	p := &shared.Principal{
		ID:           9,
		RoleCodes:    []string{"STAFF"},
		Permissions:  map[string][]string{"STUDENT": {"VIEW"}},
		DataScope:    shared.ScopeDepartment,
		DepartmentID: 4,
	}

	ctx, err := e.Authorize(context.Background(), p, &routing.Requirement{
		Resource: "STUDENT", Action: "VIEW", ScopeFilter: true,
	})
	require.NoError(t, err)

	filter, ok := shared.ScopeFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "STUDENT", filter.Resource)
	assert.Equal(t, shared.ScopeDepartment, filter.Scope)
	assert.Equal(t, int64(9), filter.PrincipalID)
	assert.Equal(t, int64(4), filter.DepartmentID)
}

func TestAuthorizeSuperAdminScopeIsAll(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	p := &shared.Principal{ID: 1, RoleCodes: []string{shared.RoleSuperAdmin}, DataScope: shared.ScopeOwn}

	ctx, err := e.Authorize(context.Background(), p, &routing.Requirement{
		Resource: "STUDENT", Action: "VIEW", ScopeFilter: true,
	})
	require.NoError(t, err)

	filter, ok := shared.ScopeFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, shared.ScopeAll, filter.Scope)
}

func TestAuthorizeNoScopeWithoutFlag(t *testing.T) {
	e := authz.NewEvaluator(slog.Default())
	p := &shared.Principal{ID: 2, Permissions: map[string][]string{"USER": {"VIEW"}}}

	ctx, err := e.Authorize(context.Background(), p, &routing.Requirement{Resource: "USER", Action: "VIEW"})
	require.NoError(t, err)

	_, ok := shared.ScopeFromContext(ctx)
	assert.False(t, ok)
}
