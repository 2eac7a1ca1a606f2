// Package authz evaluates route permission requirements against the
// principal's permission matrix. The evaluator decides allow or deny; it
// never filters data itself, it only propagates the principal's data scope
// for handlers that do.
package authz

import (
	"context"
	"log/slog"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/routing"
	"github.com/praxis-crm/praxis/internal/shared"
)

// Evaluator is the production routing.Authorizer.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Authorize enforces the route requirement. Routes without a requirement are
// public. An unauthenticated principal is rejected as UNAUTHORIZED before
// any matrix check; an authenticated principal lacking the grant is
// FORBIDDEN. Super admins bypass the matrix entirely.
func (e *Evaluator) Authorize(ctx context.Context, p *shared.Principal, req *routing.Requirement) (context.Context, error) {
	if req == nil {
		return ctx, nil
	}
	if p == nil {
		return ctx, apperr.ErrUnauthorized
	}
	// An empty action means the route only needs an authenticated principal.
	if req.Action != "" && !p.IsSuperAdmin() && !p.HasPermission(req.Resource, req.Action) {
		if e.logger != nil {
			e.logger.Warn("permission denied",
				slog.Int64("user_id", p.ID),
				slog.String("resource", req.Resource),
				slog.String("action", req.Action))
		}
		return ctx, apperr.ErrPermissionDenied
	}
	if req.ScopeFilter {
		scope := p.DataScope
		if p.IsSuperAdmin() {
			scope = shared.ScopeAll
		}
		ctx = shared.ContextWithScope(ctx, shared.ScopeFilter{
			Resource:     req.Resource,
			Scope:        scope,
			PrincipalID:  p.ID,
			DepartmentID: p.DepartmentID,
		})
	}
	return ctx, nil
}
