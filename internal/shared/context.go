package shared

import "context"

type principalContextKey struct{}

type scopeContextKey struct{}

// ScopeFilter carries the data-scope tag the authorization layer propagates
// for handlers that filter result sets by department or ownership.
type ScopeFilter struct {
	Resource     string
	Scope        DataScope
	PrincipalID  int64
	DepartmentID int64
}

// ContextWithPrincipal stores the principal in context for one request.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, nil when the
// request was not authenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ContextWithScope attaches the propagated data-scope filter.
func ContextWithScope(ctx context.Context, f ScopeFilter) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, f)
}

// ScopeFromContext extracts the data-scope filter, ok=false when the route
// did not request scope filtering.
func ScopeFromContext(ctx context.Context) (ScopeFilter, bool) {
	f, ok := ctx.Value(scopeContextKey{}).(ScopeFilter)
	return f, ok
}
