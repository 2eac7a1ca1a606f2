package routing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/platform/httpx"
	"github.com/praxis-crm/praxis/internal/shared"
)

// Authorizer evaluates a route's permission requirement for the current
// principal. On Allow it may return a derived context carrying the
// propagated data scope.
type Authorizer interface {
	Authorize(ctx context.Context, p *shared.Principal, req *Requirement) (context.Context, error)
}

// Invoker runs a handler according to the declared execution mode and
// normalizes async results; the dispatch package provides the production
// implementation.
type Invoker interface {
	Invoke(ctx context.Context, mode ExecutionMode, workload string, fn func(context.Context) (any, error)) (any, error)
}

// Registry is the startup-built route table. Descriptors are immutable and
// the per-request hot path touches only the closure-bound descriptor, so no
// locking or lookup allocation happens while serving.
type Registry struct {
	mux        *chi.Mux
	authorizer Authorizer
	invoker    Invoker
	binder     *Binder
	logger     *slog.Logger

	routes map[string]*RouteDescriptor // "METHOD path" -> descriptor
	shapes map[string]string           // collapsed shape -> declared path
}

// NewRegistry constructs an empty registry mounted on the given chi mux.
func NewRegistry(mux *chi.Mux, authorizer Authorizer, invoker Invoker, logger *slog.Logger) *Registry {
	return &Registry{
		mux:        mux,
		authorizer: authorizer,
		invoker:    invoker,
		binder:     NewBinder(),
		logger:     logger,
		routes:     make(map[string]*RouteDescriptor),
		shapes:     make(map[string]string),
	}
}

// Register scans the declarations exactly once, builds one descriptor per
// endpoint and mounts it. Any invalid declaration fails registration so the
// process does not start with a partial table.
func (reg *Registry) Register(decls ...Declaration) error {
	for _, decl := range decls {
		desc, err := buildDescriptor(decl)
		if err != nil {
			return err
		}
		key := routeKey(desc.Method, desc.Path)
		if _, exists := reg.routes[key]; exists {
			return fmt.Errorf("routing: duplicate route %s %s", desc.Method, desc.Path)
		}
		if prior, exists := reg.shapes[desc.Method+" "+desc.shape]; exists {
			return fmt.Errorf("routing: ambiguous route %s %s conflicts with %s", desc.Method, desc.Path, prior)
		}
		reg.routes[key] = desc
		reg.shapes[desc.Method+" "+desc.shape] = desc.Path
		reg.mux.MethodFunc(desc.Method, chiPattern(desc.Path), reg.handlerFor(desc))
		if reg.logger != nil {
			reg.logger.Debug("route registered",
				slog.String("method", desc.Method),
				slog.String("path", desc.Path))
		}
	}
	return nil
}

// Lookup resolves a concrete request path to its descriptor. It never
// returns an error; unregistered pairs yield ok=false.
func (reg *Registry) Lookup(method, path string) (*RouteDescriptor, bool) {
	if desc, ok := reg.routes[routeKey(method, path)]; ok {
		return desc, true
	}
	rctx := chi.NewRouteContext()
	if !reg.mux.Match(rctx, method, path) {
		return nil, false
	}
	pattern := declaredPattern(rctx.RoutePattern())
	desc, ok := reg.routes[routeKey(method, pattern)]
	return desc, ok
}

// Routes returns the number of registered descriptors.
func (reg *Registry) Routes() int { return len(reg.routes) }

// handlerFor binds one descriptor into an http.HandlerFunc. Ordering within
// a request is strict: authorize, bind, dispatch, respond. A handler is
// never invoked with partial arguments.
func (reg *Registry) handlerFor(desc *RouteDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		principal := shared.PrincipalFromContext(ctx)

		ctx, err := reg.authorizer.Authorize(ctx, principal, desc.Permission)
		if err != nil {
			httpx.Error(w, err)
			return
		}

		args, err := reg.binder.Bind(ctx, r, desc.Bindings)
		if err != nil {
			httpx.Error(w, err)
			return
		}

		result, err := reg.invoker.Invoke(ctx, desc.Mode, desc.Workload, func(c context.Context) (any, error) {
			return desc.Handler(c, args)
		})
		if err != nil {
			reg.logFailure(desc, err)
			httpx.Error(w, err)
			return
		}
		if result == nil {
			httpx.NoContent(w)
			return
		}
		httpx.OK(w, result)
	}
}

func (reg *Registry) logFailure(desc *RouteDescriptor, err error) {
	if reg.logger == nil {
		return
	}
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindTimeout {
		reg.logger.Error("handler failed",
			slog.String("method", desc.Method),
			slog.String("path", desc.Path),
			slog.Any("error", err))
	}
}

func buildDescriptor(decl Declaration) (*RouteDescriptor, error) {
	method := strings.ToUpper(strings.TrimSpace(decl.Method))
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, fmt.Errorf("routing: unsupported method %q for %s", decl.Method, decl.Path)
	}
	if !strings.HasPrefix(decl.Path, "/") {
		return nil, fmt.Errorf("routing: path %q must start with /", decl.Path)
	}
	if decl.Handler == nil {
		return nil, fmt.Errorf("routing: %s %s has no handler", method, decl.Path)
	}
	if decl.Permission != nil && strings.TrimSpace(decl.Permission.Resource) == "" {
		return nil, fmt.Errorf("routing: %s %s permission requirement missing resource", method, decl.Path)
	}
	if decl.Mode == Blocking {
		switch decl.Workload {
		case WorkloadDB, WorkloadIO, WorkloadCPU:
		default:
			return nil, fmt.Errorf("routing: %s %s blocking route needs a workload class", method, decl.Path)
		}
	}
	for i, b := range decl.Bindings {
		if err := validateBinding(b); err != nil {
			return nil, fmt.Errorf("routing: %s %s binding %d: %w", method, decl.Path, i, err)
		}
	}
	return &RouteDescriptor{
		Method:     method,
		Path:       decl.Path,
		Bindings:   append([]Binding(nil), decl.Bindings...),
		Permission: decl.Permission,
		Mode:       decl.Mode,
		Workload:   decl.Workload,
		Handler:    decl.Handler,
		shape:      collapseShape(decl.Path),
	}, nil
}

func validateBinding(b Binding) error {
	switch b.Source {
	case SourcePath, SourceQuery:
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("source requires a name")
		}
		if b.Target == TargetStruct {
			return fmt.Errorf("scalar source cannot bind a struct target")
		}
	case SourceBody:
		if b.Factory == nil {
			return fmt.Errorf("body binding requires a factory")
		}
	case SourcePrincipal, SourcePageable, SourceRequest:
	default:
		return fmt.Errorf("unrecognized source kind %d", b.Source)
	}
	switch b.Target {
	case TargetString, TargetInt64, TargetBool, TargetFloat64, TargetUUID, TargetStruct:
	default:
		return fmt.Errorf("unrecognized target type %d", b.Target)
	}
	return nil
}

func routeKey(method, path string) string {
	return method + " " + path
}

// collapseShape replaces every :name segment with ":" so two routes that
// differ only in variable naming register as the same ambiguous pattern.
func collapseShape(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = ":"
		}
	}
	return strings.Join(segments, "/")
}

// chiPattern rewrites :name variables into chi's {name} placeholders.
func chiPattern(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// declaredPattern converts a chi route pattern back to the :name form used
// as registry keys.
func declaredPattern(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = ":" + seg[1:len(seg)-1]
		}
	}
	return strings.Join(segments, "/")
}
