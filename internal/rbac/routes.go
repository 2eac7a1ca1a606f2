package rbac

import (
	"context"
	"net/http"

	"github.com/praxis-crm/praxis/internal/routing"
)

// Routes declares the permission catalog endpoint.
func (s *Service) Routes() []routing.Declaration {
	return []routing.Declaration{
		{
			Method:     http.MethodGet,
			Path:       "/api/permissions",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: ResourcePermission, Action: ActionView},
			Handler: func(ctx context.Context, _ *routing.Args) (any, error) {
				return s.ListPermissions(ctx)
			},
		},
	}
}
