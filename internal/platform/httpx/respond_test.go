package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/platform/httpx"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.OK(rec, map[string]int{"total": 3})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":200,"data":{"total":3}}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.NoContent(rec)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200}`, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Error(rec, apperr.ErrTokenExpired)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeTokenExpired, envelope.Code)
	assert.NotEmpty(t, envelope.Message)

	parsed, err := time.Parse(time.RFC3339, envelope.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}

func TestErrorHidesWrappedDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Error(rec, apperr.ErrInternal.Wrap(assert.AnError))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestErrorNormalizesUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Error(rec, assert.AnError)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var envelope struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeInternal, envelope.Code)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, httpx.BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", httpx.BearerToken(r))

	r.Header.Set("Authorization", "bearer lower.case")
	assert.Equal(t, "lower.case", httpx.BearerToken(r))

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, httpx.BearerToken(r))
}
