package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/pouladzade/swapwatch/pkg/config"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	s := NewServer(&config.MetricsConfig{
		Enabled:       true,
		ListenAddress: "127.0.0.1:0",
		Path:          "/metrics",
	}, logger.NewNopLogger())
	s.started = time.Now()

	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)

	return s, ts
}

func TestServer_HealthEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, body["uptime"])
}

func TestServer_MetricsEndpoint(t *testing.T) {
	HeadHeightSet(12345)

	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "swapwatch_head_height 12345")
}

func TestServer_RunDisabled(t *testing.T) {
	s := NewServer(&config.MetricsConfig{Enabled: false}, logger.NewNopLogger())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background())
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when metrics are disabled")
	}
}
