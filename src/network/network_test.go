package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(retries int) *AsyncNetworkManager {
	cfg := &models.MConfig{}
	cfg.Network.RequestTimeout = 5
	cfg.Network.MaxRetries = retries
	nm := NewAsyncNetworkManager(cfg, logger.NewLogger(nil, "network-test"))
	nm.Backoff = func(int) time.Duration { return time.Millisecond }
	return nm
}

func TestGetPassesQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := newTestManager(0).Get(context.Background(), srv.URL, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   "AAPL",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGetRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestManager(2).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestManager(1).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var rl *helpers.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, http.StatusTooManyRequests, rl.StatusCode)
	assert.Equal(t, helpers.ReasonRateLimited, helpers.ReasonOf(err))
}

func TestGetBadStatusIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestManager(0).Get(context.Background(), srv.URL, nil)
	var ne *helpers.NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, helpers.ReasonTransport, helpers.ReasonOf(err))
}

func TestGetStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestManager(5).Get(ctx, srv.URL, nil)
	require.Error(t, err)
}
