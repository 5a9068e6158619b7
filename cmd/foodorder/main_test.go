package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syp1xd/food-ordering-app/config"
)

func newTestServices(t *testing.T) *config.Services {
	t.Helper()

	t.Setenv("FOODORDER_DATABASE_SQLITE_PATH", filepath.Join(t.TempDir(), "orders.db"))
	cfg, err := Load("")
	require.NoError(t, err)

	services, err := cfg.Initialize(t.Context())
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	_, err = services.SeedMenu(t.Context())
	require.NoError(t, err)
	return services
}

func TestLoad_ConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  address: \":9100\"\n  engine: echo\nstream:\n  keep_alive: 5s\n"), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Address)
	assert.Equal(t, config.EngineEcho, cfg.GetEngine())
	assert.Equal(t, 5*time.Second, cfg.Stream.KeepAlive)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "error reading config file")
}

func TestDashboard(t *testing.T) {
	services := newTestServices(t)

	rec := httptest.NewRecorder()
	NewDashboard(services).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Order Service Status")
	assert.Contains(t, rec.Body.String(), "out_for_delivery:")
}

func TestFiberServer_Routes(t *testing.T) {
	services := newTestServices(t)

	srv := newFiberServer(t.Context(), services, NewDashboard(services))

	for _, tc := range []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, "Order Management API"},
		{"/health", http.StatusOK, "OK"},
		{"/status", http.StatusOK, "Order Service Status"},
		{"/api/menu/", http.StatusOK, "Margherita"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := srv.app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, string(body), tc.body)
		})
	}
}

func TestEchoServer_Routes(t *testing.T) {
	services := newTestServices(t)

	srv := newEchoServer(services, NewDashboard(services))
	ts := httptest.NewServer(srv.srv.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Open streams:")
}
