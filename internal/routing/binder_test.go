package routing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/routing"
	"github.com/praxis-crm/praxis/internal/shared"
)

func TestConvert(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name   string
		raw    string
		target routing.Target
		want   any
		bad    bool
	}{
		{"string", "hello", routing.TargetString, "hello", false},
		{"int64", "42", routing.TargetInt64, int64(42), false},
		{"negative int64", "-7", routing.TargetInt64, int64(-7), false},
		{"bad int64", "4x2", routing.TargetInt64, nil, true},
		{"bool true", "true", routing.TargetBool, true, false},
		{"bad bool", "yep", routing.TargetBool, nil, true},
		{"float64", "3.5", routing.TargetFloat64, 3.5, false},
		{"bad float64", "3,5", routing.TargetFloat64, nil, true},
		{"uuid", id.String(), routing.TargetUUID, id, false},
		{"bad uuid", "not-a-uuid", routing.TargetUUID, nil, true},
		{"struct target unsupported", "x", routing.TargetStruct, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := routing.Convert(tc.raw, tc.target)
			if tc.bad {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// bindOn runs one request through a registered route and hands the bound
// args back to the test.
func bindOn(t *testing.T, bindings []routing.Binding, r *http.Request) (*routing.Args, *httptest.ResponseRecorder) {
	t.Helper()
	mux, reg := newRegistry(t, allowAll{})
	var captured *routing.Args
	require.NoError(t, reg.Register(routing.Declaration{
		Method:   r.Method,
		Path:     routePathFor(r),
		Bindings: bindings,
		Handler: func(_ context.Context, args *routing.Args) (any, error) {
			captured = args
			return "ok", nil
		},
	}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	return captured, rec
}

func routePathFor(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, "/api/items/") {
		return "/api/items/:id"
	}
	return r.URL.Path
}

func TestBindPathVariable(t *testing.T) {
	args, rec := bindOn(t,
		[]routing.Binding{{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64}},
		httptest.NewRequest(http.MethodGet, "/api/items/99", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, args)
	assert.Equal(t, int64(99), args.Int64(0))
}

func TestBindPathVariableConversionFailure(t *testing.T) {
	args, rec := bindOn(t,
		[]routing.Binding{{Source: routing.SourcePath, Name: "id", Target: routing.TargetInt64}},
		httptest.NewRequest(http.MethodGet, "/api/items/banana", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, args)
	var envelope struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeBadRequest, envelope.Code)
}

func TestBindQueryDefaultAndRequired(t *testing.T) {
	bindings := []routing.Binding{
		{Source: routing.SourceQuery, Name: "limit", Target: routing.TargetInt64, Default: "10"},
		{Source: routing.SourceQuery, Name: "flag", Target: routing.TargetBool},
	}
	args, rec := bindOn(t, bindings, httptest.NewRequest(http.MethodGet, "/api/list", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), args.Int64(0))
	assert.Nil(t, args.Value(1)) // optional, absent

	_, rec = bindOn(t,
		[]routing.Binding{{Source: routing.SourceQuery, Name: "q", Target: routing.TargetString, Required: true}},
		httptest.NewRequest(http.MethodGet, "/api/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindQueryConversionFailure(t *testing.T) {
	args, rec := bindOn(t,
		[]routing.Binding{{Source: routing.SourceQuery, Name: "limit", Target: routing.TargetInt64}},
		httptest.NewRequest(http.MethodGet, "/api/list?limit=ten", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, args)
	var envelope struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeBadRequest, envelope.Code)
}

type createPayload struct {
	Name string `json:"name" validate:"required,min=2"`
}

func TestBindBody(t *testing.T) {
	bindings := []routing.Binding{{
		Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
		Factory: func() any { return &createPayload{} },
	}}

	r := httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader(`{"name":"praxis"}`))
	args, rec := bindOn(t, bindings, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "praxis", args.Body(0).(*createPayload).Name)

	r = httptest.NewRequest(http.MethodPost, "/api/create", nil)
	_, rec = bindOn(t, bindings, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader(`{"name":`))
	_, rec = bindOn(t, bindings, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindBodyValidation(t *testing.T) {
	bindings := []routing.Binding{{
		Source: routing.SourceBody, Target: routing.TargetStruct, Required: true,
		Factory: func() any { return &createPayload{} },
	}}
	r := httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader(`{"name":"x"}`))
	_, rec := bindOn(t, bindings, r)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeValidationError, envelope.Code)
	assert.Contains(t, envelope.Message, "Name")
}

func TestBindPageable(t *testing.T) {
	bindings := []routing.Binding{{Source: routing.SourcePageable}}
	args, rec := bindOn(t, bindings,
		httptest.NewRequest(http.MethodGet, "/api/paged?page=3&size=50&sort=name&order=DESC", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	page := args.Page(0)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 50, page.Size)
	assert.Equal(t, "name", page.Sort)
	assert.Equal(t, "desc", page.Order)

	args, _ = bindOn(t, bindings, httptest.NewRequest(http.MethodGet, "/api/paged?size=9999", nil))
	page = args.Page(0)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Size)

	_, rec = bindOn(t, bindings, httptest.NewRequest(http.MethodGet, "/api/paged?page=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindPrincipal(t *testing.T) {
	bindings := []routing.Binding{{Source: routing.SourcePrincipal}}
	principal := &shared.Principal{ID: 5, Username: "dina"}
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r = r.WithContext(shared.ContextWithPrincipal(r.Context(), principal))
	args, rec := bindOn(t, bindings, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, principal, args.Principal(0))

	args, rec = bindOn(t, bindings, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, args.Principal(0))
}
