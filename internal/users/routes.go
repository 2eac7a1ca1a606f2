package users

import (
	"context"
	"net/http"

	"github.com/praxis-crm/praxis/internal/rbac"
	"github.com/praxis-crm/praxis/internal/routing"
)

// Routes declares the user management endpoints.
func (s *Service) Routes() []routing.Declaration {
	return []routing.Declaration{
		{
			Method:     http.MethodGet,
			Path:       "/api/users",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceUser, Action: rbac.ActionView},
			Bindings: []routing.Binding{
				{Source: routing.SourcePageable},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.ListUsers(ctx, args.Page(0))
			},
		},
		{
			Method:     http.MethodGet,
			Path:       "/api/users/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceUser, Action: rbac.ActionView},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.GetUser(ctx, args.Int64(0))
			},
		},
		{
			Method:     http.MethodPost,
			Path:       "/api/users",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceUser, Action: rbac.ActionAdd},
			Bindings: []routing.Binding{
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &CreateUserRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.CreateUser(ctx, *args.Body(0).(*CreateUserRequest))
			},
		},
		{
			Method:     http.MethodPut,
			Path:       "/api/users/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceUser, Action: rbac.ActionUpdate},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &UpdateUserRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.UpdateUser(ctx, args.Int64(0), *args.Body(1).(*UpdateUserRequest))
			},
		},
		{
			Method:     http.MethodPut,
			Path:       "/api/users/:id/active",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceUser, Action: rbac.ActionUpdate},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
				{Source: routing.SourceQuery, Name: "value", Target: routing.TargetBool, Required: true},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return nil, s.SetActive(ctx, args.Int64(0), args.Bool(1))
			},
		},
		{
			Method:     http.MethodPut,
			Path:       "/api/users/:id/roles",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceUser, Action: rbac.ActionUpdate},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &AssignRolesRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.AssignRoles(ctx, args.Int64(0), *args.Body(1).(*AssignRolesRequest))
			},
		},
	}
}
