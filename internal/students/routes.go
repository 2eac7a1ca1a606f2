package students

import (
	"context"
	"net/http"

	"github.com/praxis-crm/praxis/internal/rbac"
	"github.com/praxis-crm/praxis/internal/routing"
)

// Routes declares the student endpoints. The listing requests data-scope
// propagation; the rest are plain grant checks.
func (s *Service) Routes() []routing.Declaration {
	return []routing.Declaration{
		{
			Method:     http.MethodGet,
			Path:       "/api/students",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceStudent, Action: rbac.ActionView, ScopeFilter: true},
			Bindings: []routing.Binding{
				{Source: routing.SourcePageable},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.ListStudents(ctx, args.Page(0))
			},
		},
		{
			Method:     http.MethodGet,
			Path:       "/api/students/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceStudent, Action: rbac.ActionView},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.GetStudent(ctx, args.Int64(0))
			},
		},
		{
			Method:     http.MethodPost,
			Path:       "/api/students",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceStudent, Action: rbac.ActionAdd},
			Bindings: []routing.Binding{
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &CreateStudentRequest{} }},
				{Source: routing.SourcePrincipal},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.CreateStudent(ctx, *args.Body(0).(*CreateStudentRequest), args.Principal(1))
			},
		},
		{
			Method:     http.MethodPut,
			Path:       "/api/students/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceStudent, Action: rbac.ActionUpdate},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
				{Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
					Factory: func() any { return &UpdateStudentRequest{} }},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return s.UpdateStudent(ctx, args.Int64(0), *args.Body(1).(*UpdateStudentRequest))
			},
		},
		{
			Method:     http.MethodDelete,
			Path:       "/api/students/:id",
			Mode:       routing.Blocking,
			Workload:   routing.WorkloadDB,
			Permission: &routing.Requirement{Resource: rbac.ResourceStudent, Action: rbac.ActionDelete},
			Bindings: []routing.Binding{
				{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64},
			},
			Handler: func(ctx context.Context, args *routing.Args) (any, error) {
				return nil, s.DeleteStudent(ctx, args.Int64(0))
			},
		},
	}
}
