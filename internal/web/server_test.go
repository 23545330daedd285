package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twdlabs/pagebot/internal/web"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *web.Server {
	t.Helper()

	server, err := web.NewServer(":0", zap.NewNop())
	require.NoError(t, err)

	return server
}

func TestServerPages(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		path     string
		contains string
	}{
		{path: "/", contains: "up and running"},
		{path: "/commands", contains: "/servers"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestServerStatus(t *testing.T) {
	server := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status web.Status
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "pagebot", status.Name)
	assert.Equal(t, "ok", status.Status)
	assert.GreaterOrEqual(t, status.UptimeSec, int64(0))
}

func TestServerUnknownRoute(t *testing.T) {
	server := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
