// Package routing implements the startup-time route registry. Endpoint
// declarations are scanned exactly once into immutable RouteDescriptors;
// per-request work runs against the cached descriptor without any dynamic
// introspection.
package routing

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/praxis-crm/praxis/internal/shared"
)

// ExecutionMode decides where a handler runs.
type ExecutionMode int

const (
	// Inline runs the handler directly on the serving goroutine. Inline
	// handlers must not perform blocking I/O; this is a caller contract.
	Inline ExecutionMode = iota
	// Blocking submits the handler to a bounded worker pool selected by the
	// declared workload class.
	Blocking
)

// Workload classes for Blocking routes.
const (
	WorkloadDB  = "db"
	WorkloadIO  = "io"
	WorkloadCPU = "cpu"
)

// Source identifies where a parameter value comes from.
type Source int

const (
	SourcePath Source = iota
	SourceQuery
	SourceBody
	SourcePrincipal
	SourcePageable
	SourceRequest
)

// Target is the declared type a raw value converts to.
type Target int

const (
	TargetString Target = iota
	TargetInt64
	TargetBool
	TargetFloat64
	TargetUUID
	TargetStruct
)

// Binding describes how one handler argument is materialized. Bindings are
// pure metadata built once at registration.
type Binding struct {
	Source   Source
	Name     string // path variable or query parameter name
	Target   Target
	Required bool
	Default  string
	// Factory returns a fresh pointer for SourceBody decoding.
	Factory func() any
}

// Requirement is the permission an endpoint demands before dispatch.
type Requirement struct {
	Resource string
	Action   string
	// ScopeFilter requests propagation of the principal's data scope so the
	// handler can filter result sets; the evaluator never filters itself.
	ScopeFilter bool
}

// Authenticated returns the requirement for routes that need a principal
// but no particular grant, such as profile and logout endpoints.
func Authenticated() *Requirement {
	return &Requirement{Resource: shared.Wildcard}
}

// HandlerFunc is the shape business handlers register with. Arguments arrive
// already authorized and bound.
type HandlerFunc func(ctx context.Context, args *Args) (any, error)

// Declaration is the registration input for one endpoint.
type Declaration struct {
	Method     string
	Path       string // literal segments and :name variables
	Handler    HandlerFunc
	Bindings   []Binding
	Permission *Requirement
	Mode       ExecutionMode
	Workload   string // required for Blocking
}

// RouteDescriptor is the immutable per-endpoint record built at startup and
// looked up per request.
type RouteDescriptor struct {
	Method     string
	Path       string
	Bindings   []Binding
	Permission *Requirement
	Mode       ExecutionMode
	Workload   string
	Handler    HandlerFunc

	shape string
}

// Args holds the bound handler arguments in declaration order. Absent
// optional values are nil; the typed accessors return zero values for those.
type Args struct {
	values []any
}

// Len returns the number of bound arguments.
func (a *Args) Len() int { return len(a.values) }

// Value returns the raw bound value at index i.
func (a *Args) Value(i int) any { return a.values[i] }

// String returns the string argument at index i.
func (a *Args) String(i int) string {
	v, _ := a.values[i].(string)
	return v
}

// Int64 returns the int64 argument at index i.
func (a *Args) Int64(i int) int64 {
	v, _ := a.values[i].(int64)
	return v
}

// Bool returns the bool argument at index i.
func (a *Args) Bool(i int) bool {
	v, _ := a.values[i].(bool)
	return v
}

// Float64 returns the float64 argument at index i.
func (a *Args) Float64(i int) float64 {
	v, _ := a.values[i].(float64)
	return v
}

// UUID returns the uuid argument at index i.
func (a *Args) UUID(i int) uuid.UUID {
	v, _ := a.values[i].(uuid.UUID)
	return v
}

// Body returns the decoded request body at index i. Callers assert to the
// concrete type produced by the binding factory.
func (a *Args) Body(i int) any { return a.values[i] }

// Principal returns the injected principal at index i, nil when the request
// was unauthenticated.
func (a *Args) Principal(i int) *shared.Principal {
	v, _ := a.values[i].(*shared.Principal)
	return v
}

// Page returns the injected pagination request at index i.
func (a *Args) Page(i int) shared.PageRequest {
	v, _ := a.values[i].(shared.PageRequest)
	return v
}

// Request returns the raw request at index i.
func (a *Args) Request(i int) *http.Request {
	v, _ := a.values[i].(*http.Request)
	return v
}
