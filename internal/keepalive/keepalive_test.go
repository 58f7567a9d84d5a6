package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploykit/blueprint/internal/schema"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestPinger(t *testing.T, targets ...string) *Pinger {
	t.Helper()
	p, err := New(targets)
	require.NoError(t, err)
	p.sleep = noSleep
	return p
}

func TestNewRequiresTargets(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestPingSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPinger(t, srv.URL)
	result := p.ping(context.Background(), srv.URL)

	assert.True(t, result.OK())
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, 1, result.Attempts)
}

func TestPingRetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPinger(t, srv.URL)
	result := p.ping(context.Background(), srv.URL)

	assert.True(t, result.OK())
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPingGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestPinger(t, srv.URL)
	result := p.ping(context.Background(), srv.URL)

	assert.False(t, result.OK())
	assert.Equal(t, http.StatusBadGateway, result.Status)
	assert.Equal(t, maxAttempts, result.Attempts)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestPingDoesNotRetryDefinitiveStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestPinger(t, srv.URL)
	result := p.ping(context.Background(), srv.URL)

	assert.False(t, result.OK())
	assert.Equal(t, http.StatusNotFound, result.Status)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPingTransportError(t *testing.T) {
	// Reserve a port, then close the listener so nothing answers.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := newTestPinger(t, url)
	result := p.ping(context.Background(), url)

	assert.False(t, result.OK())
	assert.Error(t, result.Err)
	assert.Equal(t, maxAttempts, result.Attempts)
}

func TestRunOnceFansOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPinger(t, srv.URL+"/a", srv.URL+"/b")
	results := p.RunOnce(context.Background())

	require.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.OK())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPinger(t, srv.URL)
	p.interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTargetsFromServices(t *testing.T) {
	services := []schema.Service{
		{
			Name:            "backend",
			Network:         schema.NetworkPublic,
			Runtime:         schema.RuntimeContinuous,
			Domains:         []string{"iems.example.com", "www.iems.example.com"},
			HealthCheckPath: "/health",
		},
		{
			Name:    "frontend",
			Network: schema.NetworkPublic,
			Runtime: schema.RuntimeStatic,
			Domains: []string{"site.example.com"},
		},
		{
			Name:    "keepalive",
			Network: schema.NetworkPrivate,
			Runtime: schema.RuntimeContinuous,
		},
		{
			Name:    "api",
			Network: schema.NetworkPublic,
			Runtime: schema.RuntimeContinuous,
			Domains: []string{"https://api.example.com/"},
		},
	}

	targets := TargetsFromServices(services)
	assert.Equal(t, []string{
		"https://iems.example.com/health",
		"https://api.example.com/",
	}, targets)
}

func TestOptions(t *testing.T) {
	p, err := New([]string{"https://example.com"},
		WithInterval(time.Minute),
		WithTimeout(2*time.Second))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, p.interval)
	assert.Equal(t, 2*time.Second, p.client.Timeout)

	p, err = New([]string{"https://example.com"}, WithInterval(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, p.interval)
}
