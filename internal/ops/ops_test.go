package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"symscan/internal/metrics"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	metrics.Init()

	s := New(0, zap.NewNop())

	for path, wantStatus := range map[string]string{
		"/healthz": "ok",
		"/readyz":  "ready",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, wantStatus, body["status"], path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	metrics.Init()

	s := New(0, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	metrics.Init()

	s := New(0, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
