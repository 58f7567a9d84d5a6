// Package keepalive implements the manifest's background keepalive job: a
// worker that periodically pings web services so free-tier instances never
// idle out.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deploykit/blueprint/internal/schema"
)

const (
	DefaultInterval = 180 * time.Second
	DefaultTimeout  = 10 * time.Second

	maxAttempts = 3
)

// Statuses worth retrying; anything else is a definitive answer.
var retryableStatuses = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// ErrNoTargets indicates there is nothing to ping.
var ErrNoTargets = errors.New("no keepalive targets")

// Result is the outcome of pinging one target once (after retries).
type Result struct {
	Target   string
	Status   int
	Attempts int
	Duration time.Duration
	Err      error
}

// OK reports whether the target answered with a 2xx.
func (r Result) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Pinger pings a fixed set of targets on an interval.
type Pinger struct {
	targets  []string
	interval time.Duration
	client   *http.Client
	log      *slog.Logger

	// sleep is swapped out by tests to skip real backoff waits.
	sleep func(context.Context, time.Duration) error
}

// Option configures a Pinger.
type Option func(*Pinger)

func WithInterval(interval time.Duration) Option {
	return func(p *Pinger) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(p *Pinger) {
		if timeout > 0 {
			p.client.Timeout = timeout
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(p *Pinger) {
		p.log = log
	}
}

func New(targets []string, opts ...Option) (*Pinger, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	p := &Pinger{
		targets:  targets,
		interval: DefaultInterval,
		client:   &http.Client{Timeout: DefaultTimeout},
		log:      slog.Default(),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// TargetsFromServices derives ping URLs from the manifest's web services:
// the first domain of each public continuous service, with its health check
// path appended when declared.
func TargetsFromServices(services []schema.Service) []string {
	var targets []string

	for _, svc := range services {
		if svc.Network != schema.NetworkPublic || svc.Runtime != schema.RuntimeContinuous {
			continue
		}

		for _, domain := range svc.Domains {
			target := domain
			if !strings.Contains(target, "://") {
				target = "https://" + target
			}
			if svc.HealthCheckPath != "" {
				target = strings.TrimSuffix(target, "/") + "/" + strings.TrimPrefix(svc.HealthCheckPath, "/")
			}
			targets = append(targets, target)
			break // one URL per service keeps the ping load bounded
		}
	}

	return targets
}

// Run pings all targets every interval until ctx is cancelled.
func (p *Pinger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First round fires immediately; the worker exists to keep instances
	// warm, not to wait out the first interval.
	p.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce pings every target concurrently and returns all results.
func (p *Pinger) RunOnce(ctx context.Context) []Result {
	results := make([]Result, len(p.targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range p.targets {
		g.Go(func() error {
			results[i] = p.ping(gctx, target)
			return nil
		})
	}
	_ = g.Wait()

	for _, result := range results {
		switch {
		case result.OK():
			p.log.Info("ping ok",
				slog.String("target", result.Target),
				slog.Int("status", result.Status),
				slog.Int("attempts", result.Attempts),
				slog.Duration("duration", result.Duration))
		case result.Err != nil:
			p.log.Error("ping failed",
				slog.String("target", result.Target),
				slog.Int("attempts", result.Attempts),
				slog.String("error", result.Err.Error()))
		default:
			p.log.Warn("ping answered non-2xx",
				slog.String("target", result.Target),
				slog.Int("status", result.Status),
				slog.Int("attempts", result.Attempts))
		}
	}

	return results
}

// ping performs up to maxAttempts GETs with exponential backoff, retrying
// only transport errors and the retryable status list.
func (p *Pinger) ping(ctx context.Context, target string) Result {
	start := time.Now()
	result := Result{Target: target}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		result.Attempts = attempt + 1

		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			if err := p.sleep(ctx, backoff); err != nil {
				result.Err = err
				break
			}
		}

		status, err := p.get(ctx, target)
		result.Status = status
		result.Err = err

		if err == nil && !retryableStatuses[status] {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (p *Pinger) get(ctx context.Context, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
