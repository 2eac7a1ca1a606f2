package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-crm/praxis/internal/observability"
	"github.com/praxis-crm/praxis/internal/routing"
	"github.com/praxis-crm/praxis/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger     *slog.Logger
	Config     *Config
	Metrics    *observability.Metrics
	Tokens     TokenAuthenticator
	Authorizer routing.Authorizer
	Invoker    routing.Invoker

	// Declarations is the full route table, collected from every module at
	// startup. Registration fails fast on any invalid declaration.
	Declarations []routing.Declaration

	JobsHandler *jobs.Handler
}

// NewRouter constructs the chi router and the route registry mounted on it.
func NewRouter(params RouterParams) (http.Handler, *routing.Registry, error) {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(AuthMiddleware(params.Tokens, params.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	registry := routing.NewRegistry(r, params.Authorizer, params.Invoker, params.Logger)
	if err := registry.Register(params.Declarations...); err != nil {
		return nil, nil, err
	}
	params.Logger.Info("routes registered", slog.Int("count", registry.Routes()))
	return r, registry, nil
}
