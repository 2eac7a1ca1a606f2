package roles

import (
	"context"
	"net/http"

	"github.com/praxis-crm/praxis/internal/rbac"
	"github.com/praxis-crm/praxis/internal/routing"
)

// Routes declares the role management endpoints. Everything here touches
// the database, so every route dispatches on the db pool.
func (s *Service) Routes() []routing.Declaration {
	return []routing.Declaration{
		{
			Method:     http.MethodGet,
			Path:       "/api/roles",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceRole, Action: rbac.ActionView},
			Bindings: []routing.Binding{
				{Source: routing.SourcePageable},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.ListRoles(ctx, args.Page(0))
			},
		},
		{
			Method:     http.MethodGet,
			Path:       "/api/roles/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceRole, Action: rbac.ActionView},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.GetRole(ctx, args.Int64(0))
			},
		},
		{
			Method:     http.MethodPost,
			Path:       "/api/roles",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceRole, Action: rbac.ActionAdd},
			Bindings: []routing.Binding{
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &CreateRoleRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.CreateRole(ctx, *args.Body(0).(*CreateRoleRequest))
			},
		},
		{
			Method:     http.MethodPut,
			Path:       "/api/roles/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceRole, Action: rbac.ActionUpdate},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &UpdateRoleRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.UpdateRole(ctx, args.Int64(0), *args.Body(1).(*UpdateRoleRequest))
			},
		},
		{
			Method:     http.MethodDelete,
			Path:       "/api/roles/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceRole, Action: rbac.ActionDelete},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return nil, s.DeleteRole(ctx, args.Int64(0))
			},
		},
		{
			Method:     http.MethodPut,
			Path:       "/api/roles/:id/permissions",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourcePermission, Action: rbac.ActionUpdate},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &GrantPermissionsRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.GrantPermissions(ctx, args.Int64(0), *args.Body(1).(*GrantPermissionsRequest))
			},
		},
	}
}
