package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nfrund/binstore/internal/server"
	"github.com/nfrund/binstore/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationServer(t *testing.T, overrides map[string]string) (*server.Server, *httptest.Server) {
	t.Helper()
	cfg := testutils.ConfigForTests(t, overrides)
	s, err := server.New(cfg)
	require.NoError(t, err)
	s.RegisterRoutes()

	ts := httptest.NewServer(s.E)
	t.Cleanup(ts.Close)
	return s, ts
}

func request(t *testing.T, method, url string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_StorageRoundTrip_Integration(t *testing.T) {
	root := t.TempDir()
	s, ts := newIntegrationServer(t, map[string]string{"STORAGE_ROOT": root})
	api := ts.URL + server.APIPrefix

	// Upload through the multipart form the original clients use.
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("content", "report.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(`{"ok":true}`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp := request(t, http.MethodPut, api+"/bucket/reports/asset/report.json?createBucketIfNotExists=true", body, writer.FormDataContentType())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	// The asset lands as a plain file under the configured root.
	onDisk, err := os.ReadFile(filepath.Join(root, "reports", "report.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(onDisk))

	resp = request(t, http.MethodGet, api+"/bucket/reports/asset/report.json", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got))

	resp = request(t, http.MethodGet, api+"/list", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buckets []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&buckets))
	assert.Equal(t, []string{"reports"}, buckets)

	assert.True(t, s.Store.AssetExists(context.Background(), "reports", "report.json"))
}

func TestServer_MemoryBackend_Integration(t *testing.T) {
	_, ts := newIntegrationServer(t, map[string]string{"STORAGE_BACKEND": "memory", "EVENTS_ENABLED": "false"})
	api := ts.URL + server.APIPrefix

	resp := request(t, http.MethodPut, api+"/bucket/tmp", nil, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = request(t, http.MethodGet, api+"/bucket/tmp/list", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, http.MethodGet, ts.URL+"/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RateLimit_Integration(t *testing.T) {
	_, ts := newIntegrationServer(t, map[string]string{"RATE_LIMIT_PER_MINUTE": "2"})

	for i := 0; i < 2; i++ {
		resp := request(t, http.MethodGet, ts.URL+"/health", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := request(t, http.MethodGet, ts.URL+"/health", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := testutils.ConfigForTests(t, nil)
	s, err := server.New(cfg)
	require.NoError(t, err)
	s.RegisterRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()

	require.Eventually(t, func() bool { return s.E.ListenerAddr() != nil }, 5*time.Second, 10*time.Millisecond)

	resp := request(t, http.MethodGet, "http://"+s.E.ListenerAddr().String()+"/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
