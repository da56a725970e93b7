package resilience_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danisampedro/locationapp/internal/provider/resilience"
)

func fastConfig(name string, retries uint64) resilience.ClientConfig {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Timeout = 2 * time.Second
	cfg.Retry = resilience.RetryPolicy{
		MaxRetries:      retries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
	}
	// Keep the breaker closed unless a test opts in.
	cfg.Breaker.MinRequests = 100
	return cfg
}

func get(t *testing.T, client *resilience.Client, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	return client.Do(req)
}

func TestClient_SuccessfulRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("ors", 3))

	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ors", client.Name())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("ors", 5))

	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_ReplaysBodyOnRetry(t *testing.T) {
	var attempts atomic.Int32
	var lastBody atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody.Store(string(body))
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("ors", 2))

	payload := []byte(`{"coordinates":[[-3.7,40.4],[-3.6,40.5]]}`)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, bytes.NewReader(payload))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, string(payload), lastBody.Load())
}

func TestClient_ExhaustedRetriesReturnLastResponse(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":2099,"message":"boom"}}`))
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("ors", 2))

	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "boom")
}

func TestClient_ClientErrorsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("ors", 3))

	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_BreakerOpens(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var transitions atomic.Int32
	cfg := fastConfig("ors", 0)
	cfg.Breaker = resilience.BreakerSettings{
		OpenFor:      time.Minute,
		MinRequests:  5,
		FailureRatio: 0.5,
		OnStateChange: func(string, gobreaker.State, gobreaker.State) {
			transitions.Add(1)
		},
	}
	client := resilience.NewClient(cfg)

	for i := 0; i < 5; i++ {
		resp, err := get(t, client, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())
	assert.Equal(t, int32(1), transitions.Load())

	resp, err := get(t, client, server.URL)
	if resp != nil {
		resp.Body.Close()
	}
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(5), attempts.Load(), "open breaker must not reach the server")
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig("ors", 0)
	cfg.Timeout = 50 * time.Millisecond
	client := resilience.NewClient(cfg)

	resp, err := get(t, client, server.URL)
	if resp != nil {
		resp.Body.Close()
	}
	assert.Error(t, err)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("ors", 3))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	if resp != nil {
		resp.Body.Close()
	}
	assert.Error(t, err)
}

func TestBreakerSettings_ShouldTrip(t *testing.T) {
	s := resilience.DefaultBreakerSettings()

	tests := []struct {
		name   string
		counts gobreaker.Counts
		want   bool
	}{
		{"not enough requests", gobreaker.Counts{Requests: 4, TotalFailures: 4}, false},
		{"low failure rate", gobreaker.Counts{Requests: 10, TotalFailures: 4}, false},
		{"half failing", gobreaker.Counts{Requests: 10, TotalFailures: 5}, true},
		{"all failing", gobreaker.Counts{Requests: 5, TotalFailures: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ShouldTrip(tt.counts))
		})
	}
}

func TestServerError(t *testing.T) {
	err := &resilience.ServerError{StatusCode: http.StatusInternalServerError}
	assert.Contains(t, err.Error(), "Internal Server Error")
}
