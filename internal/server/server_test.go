package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	srv := New(t.TempDir(), nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReportEndpoints(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.json"), []byte(`{"generated_at":"now"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.md"), []byte("# Report"), 0o644))

	srv := New(dir, nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"generated_at":"now"}`, string(raw))

	resp, err = srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/report/markdown", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(raw))
}

func TestReportNotGenerated(t *testing.T) {
	srv := New(t.TempDir(), nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryUnconfigured(t *testing.T) {
	srv := New(t.TempDir(), nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := New(t.TempDir(), nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
