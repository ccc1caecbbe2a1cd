package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismhq/prism/internal/config"
)

func newAPIKeyHandler(t *testing.T) http.Handler {
	t.Helper()
	s := &Server{env: &config.Env{BaseEnv: config.BaseEnv{APIKey: "secret"}}}
	return s.apiKeyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAPIKeyMiddleware(t *testing.T) {
	handler := newAPIKeyHandler(t)

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{
			name: "missing key rejected",
			path: "/api/budget",
			want: http.StatusUnauthorized,
		},
		{
			name:   "wrong key rejected",
			path:   "/api/budget",
			header: map[string]string{"X-API-Key": "wrong"},
			want:   http.StatusUnauthorized,
		},
		{
			name:   "x-api-key header accepted",
			path:   "/api/budget",
			header: map[string]string{"X-API-Key": "secret"},
			want:   http.StatusOK,
		},
		{
			name:   "bearer token accepted",
			path:   "/api/budget",
			header: map[string]string{"Authorization": "Bearer secret"},
			want:   http.StatusOK,
		},
		{
			name: "health is open",
			path: "/health",
			want: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthChecker(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HealthChecker{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
