package routing_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/routing"
	"github.com/praxis-crm/praxis/internal/shared"
	_ "github.com/praxis-crm/praxis/internal/testing/guard"
)

type allowAll struct{}

func (allowAll) Authorize(ctx context.Context, _ *shared.Principal, _ *routing.Requirement) (context.Context, error) {
	return ctx, nil
}

type denyAll struct{ err error }

func (d denyAll) Authorize(ctx context.Context, _ *shared.Principal, _ *routing.Requirement) (context.Context, error) {
	return ctx, d.err
}

type directInvoker struct{}

func (directInvoker) Invoke(ctx context.Context, _ routing.ExecutionMode, _ string, fn func(context.Context) (any, error)) (any, error) {
	return fn(ctx)
}

func newRegistry(t *testing.T, authorizer routing.Authorizer) (*chi.Mux, *routing.Registry) {
	t.Helper()
	mux := chi.NewRouter()
	return mux, routing.NewRegistry(mux, authorizer, directInvoker{}, slog.Default())
}

func echoHandler(value any) routing.HandlerFunc {
	return func(context.Context, *routing.Args) (any, error) {
		return value, nil
	}
}

func TestRegisterAndLookup(t *testing.T) {
	_, reg := newRegistry(t, allowAll{})
	err := reg.Register(
		routing.Declaration{Method: http.MethodGet, Path: "/api/things", Handler: echoHandler("list")},
		routing.Declaration{Method: http.MethodGet, Path: "/api/things/:id", Handler: echoHandler("one")},
		routing.Declaration{Method: http.MethodPost, Path: "/api/things", Handler: echoHandler("created")},
	)
	require.NoError(t, err)
	require.Equal(t, 3, reg.Routes())

	desc, ok := reg.Lookup(http.MethodGet, "/api/things")
	require.True(t, ok)
	assert.Equal(t, "/api/things", desc.Path)

	desc, ok = reg.Lookup(http.MethodGet, "/api/things/42")
	require.True(t, ok)
	assert.Equal(t, "/api/things/:id", desc.Path)

	_, ok = reg.Lookup(http.MethodDelete, "/api/things/42")
	assert.False(t, ok)

	_, ok = reg.Lookup(http.MethodGet, "/api/nothing")
	assert.False(t, ok)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	_, reg := newRegistry(t, allowAll{})
	err := reg.Register(
		routing.Declaration{Method: http.MethodGet, Path: "/api/things", Handler: echoHandler(nil)},
		routing.Declaration{Method: http.MethodGet, Path: "/api/things", Handler: echoHandler(nil)},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate route")
}

func TestRegisterRejectsAmbiguousShapes(t *testing.T) {
	_, reg := newRegistry(t, allowAll{})
	err := reg.Register(
		routing.Declaration{Method: http.MethodGet, Path: "/api/things/:id", Handler: echoHandler(nil)},
		routing.Declaration{Method: http.MethodGet, Path: "/api/things/:thingID", Handler: echoHandler(nil)},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous route")
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		decl routing.Declaration
	}{
		{"unsupported method", routing.Declaration{Method: "TRACE", Path: "/x", Handler: echoHandler(nil)}},
		{"relative path", routing.Declaration{Method: http.MethodGet, Path: "x", Handler: echoHandler(nil)}},
		{"nil handler", routing.Declaration{Method: http.MethodGet, Path: "/x"}},
		{"empty requirement resource", routing.Declaration{
			Method: http.MethodGet, Path: "/x", Handler: echoHandler(nil),
			Permission: &routing.Requirement{Action: "VIEW"},
		}},
		{"blocking without workload", routing.Declaration{
			Method: http.MethodGet, Path: "/x", Handler: echoHandler(nil),
			Mode: routing.Blocking,
		}},
		{"body binding without factory", routing.Declaration{
			Method: http.MethodPost, Path: "/x", Handler: echoHandler(nil),
			Bindings: []routing.Binding{{Source: routing.SourceBody, Target: routing.TargetStruct}},
		}},
		{"path binding without name", routing.Declaration{
			Method: http.MethodGet, Path: "/x/:id", Handler: echoHandler(nil),
			Bindings: []routing.Binding{{Source: routing.SourcePath, Target: routing.TargetInt64}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, reg := newRegistry(t, allowAll{})
			assert.Error(t, reg.Register(tc.decl))
		})
	}
}

func TestHandlerWritesSuccessEnvelope(t *testing.T) {
	mux, reg := newRegistry(t, allowAll{})
	require.NoError(t, reg.Register(routing.Declaration{
		Method: http.MethodGet, Path: "/api/ping",
		Handler: echoHandler(map[string]string{"pong": "yes"}),
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Code int               `json:"code"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 200, envelope.Code)
	assert.Equal(t, "yes", envelope.Data["pong"])
}

func TestHandlerWritesNoContentEnvelopeForNilResult(t *testing.T) {
	mux, reg := newRegistry(t, allowAll{})
	require.NoError(t, reg.Register(routing.Declaration{
		Method: http.MethodDelete, Path: "/api/things/:id",
		Bindings: []routing.Binding{{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64}},
		Handler: func(context.Context, *routing.Args) (any, error) {
			return nil, nil
		},
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/things/7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200}`, rec.Body.String())
}

func TestHandlerDeniedBeforeBinding(t *testing.T) {
	mux, reg := newRegistry(t, denyAll{err: apperr.ErrPermissionDenied})
	bound := false
	require.NoError(t, reg.Register(routing.Declaration{
		Method: http.MethodGet, Path: "/api/secret",
		Permission: &routing.Requirement{Resource: "USER", Action: "VIEW"},
		Handler: func(context.Context, *routing.Args) (any, error) {
			bound = true
			return "secret", nil
		},
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/secret", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, bound)
	var envelope struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodePermissionDenied, envelope.Code)
	assert.NotEmpty(t, envelope.Timestamp)
}

func TestHandlerMapsTimeout(t *testing.T) {
	mux, reg := newRegistry(t, allowAll{})
	require.NoError(t, reg.Register(routing.Declaration{
		Method: http.MethodGet, Path: "/api/slow",
		Handler: func(context.Context, *routing.Args) (any, error) {
			return nil, apperr.ErrTimeout
		},
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slow", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var envelope struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeTimeout, envelope.Code)
}
