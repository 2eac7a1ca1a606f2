package auth

import (
	"context"
	"net/http"

	"github.com/praxis-crm/praxis/internal/platform/httpx"
	"github.com/praxis-crm/praxis/internal/routing"
	"github.com/praxis-crm/praxis/internal/users"
)

// Routes declares the authentication endpoints. Login and registration run
// on the cpu pool since bcrypt dominates their cost; refresh and logout are
// redis round trips on the io pool.
func (s *Service) Routes() []routing.Declaration {
	return []routing.Declaration{
		{
			Method:   http.MethodPost,
			Path:     "/api/auth/login",
			Mode:     routing.Blocking,
			Workload: routing.WorkloadCPU,
			Bindings: []routing.Binding{
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &LoginRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.Login(ctx, *args.Body(0).(*LoginRequest))
			},
		},
		{
			Method:   http.MethodPost,
			Path:     "/api/auth/register",
			Mode:     routing.Blocking,
			Workload: routing.WorkloadCPU,
			Bindings: []routing.Binding{
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &users.CreateUserRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.Register(ctx, *args.Body(0).(*users.CreateUserRequest))
			},
		},
		{
			Method:     http.MethodGet,
			Path:       "/api/auth/me",
			Mode:       routing.Inline,
			Permission: routing.Authenticated(),
			Bindings: []routing.Binding{
				{Source: routing.SourcePrincipal},
			},
			Handler: func(_ context.Context, args *routing.Args) (any, error) {
				return profileOf(args.Principal(0)), nil
			},
		},
		{
			Method:   http.MethodPost,
			Path:     "/api/auth/refresh",
			Mode:     routing.Blocking,
			Workload: routing.WorkloadIO,
			Bindings: []routing.Binding{
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &RefreshRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.Refresh(ctx, *args.Body(0).(*RefreshRequest))
			},
		},
		{
			Method:     http.MethodPost,
			Path:       "/api/auth/logout",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadIO,
			Permission: routing.Authenticated(),
			Bindings: []routing.Binding{
				{Source: routing.SourceRequest},
				{Source: routing.SourceBody, Target: routing.TargetStruct,
					Factory: func() any { return &LogoutRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				access := httpx.BearerToken(args.Request(0))
				return nil, s.Logout(ctx, access, *args.Body(1).(*LogoutRequest))
			},
		},
	}
}
