package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr, body
}

func TestHealthServer_Liveness(t *testing.T) {
	h := NewHealthServer(":0", slog.Default())

	rr, body := get(t, h.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "ok", body.Status)
}

func TestHealthServer_Readiness(t *testing.T) {
	h := NewHealthServer(":0", slog.Default())

	rr, body := get(t, h.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "not ready", body.Status)

	h.SetReady(true)
	rr, body = get(t, h.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", body.Status)

	h.SetReady(false)
	rr, _ = get(t, h.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHealthServer_ReportsLastRuns(t *testing.T) {
	h := NewHealthServer(":0", slog.Default())
	h.SetReady(true)

	at := time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)
	h.RecordJob("today", at, nil)
	h.RecordJob("tomorrow", at.Add(12*time.Hour), errors.New("bluesky create session: HTTP 401"))

	_, body := get(t, h.Handler(), "/health/ready")
	require.Len(t, body.LastRuns, 2)
	assert.True(t, body.LastRuns["today"].OK)
	assert.True(t, body.LastRuns["today"].At.Equal(at))
	assert.False(t, body.LastRuns["tomorrow"].OK)
	assert.Contains(t, body.LastRuns["tomorrow"].Error, "401")
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	h := NewHealthServer(addr, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", addr))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("health server did not stop")
	}
}
