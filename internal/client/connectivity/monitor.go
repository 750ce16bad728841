// Package connectivity tracks whether the backend is reachable. It is a
// separate axis from authentication: a signed-in user may be offline, and a
// probe result never changes who the user is.
package connectivity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/sidereal-app/sidereal/internal/client/api"
	"github.com/sidereal-app/sidereal/internal/logging"
)

// ErrorKind names the network failure behind a disconnected status.
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindOffline   ErrorKind = "offline"
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindServer    ErrorKind = "server"
	ErrorKindTransport ErrorKind = "transport"
)

// Status is the current connectivity snapshot.
type Status struct {
	Connected bool
	LastError ErrorKind
}

// Prober is the slice of the API client the monitor needs.
type Prober interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
}

const (
	probeTimeout    = 3 * time.Second
	probeBackoff    = 200 * time.Millisecond
	probeMaxRetries = 2
)

// Monitor owns the connectivity status: it probes on a fixed interval, on
// demand, and on debounced manual retries, and notifies subscribers when the
// status changes.
type Monitor struct {
	probe      Prober
	interval   time.Duration
	retryDelay time.Duration
	logger     logging.Logger

	mu        sync.Mutex
	status    Status
	retrying  bool
	listeners []func(Status)
}

func NewMonitor(probe Prober, interval, retryDelay time.Duration, logger logging.Logger) *Monitor {
	return &Monitor{
		probe:      probe,
		interval:   interval,
		retryDelay: retryDelay,
		logger:     logger.With("component", "connectivity"),
	}
}

// Status returns the current snapshot.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Subscribe registers a listener invoked on every status change. Listeners
// are called outside the monitor's lock, in registration order.
func (m *Monitor) Subscribe(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Probe runs one health check, retrying transient failures with exponential
// backoff, and records the outcome. It returns the resulting status.
func (m *Monitor) Probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(probeMaxRetries, retry.NewExponential(probeBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := m.probe.Health(ctx); err != nil {
			if api.Retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})

	status := Status{Connected: err == nil, LastError: classify(err)}
	m.setStatus(ctx, status)
	return status
}

// Retry schedules a single delayed re-probe. Calls made while one is already
// pending are coalesced into it.
func (m *Monitor) Retry(ctx context.Context) {
	m.mu.Lock()
	if m.retrying {
		m.mu.Unlock()
		return
	}
	m.retrying = true
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			m.retrying = false
			m.mu.Unlock()
		}()

		timer := time.NewTimer(m.retryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		m.Probe(ctx)
	}()
}

// Watch probes on the configured interval until ctx is cancelled.
func (m *Monitor) Watch(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) setStatus(ctx context.Context, status Status) {
	m.mu.Lock()
	changed := status != m.status
	m.status = status
	listeners := make([]func(Status), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Info(ctx, "connectivity changed", "connected", status.Connected, "kind", string(status.LastError))
	for _, fn := range listeners {
		fn(status)
	}
}

// classify maps an API error to the coarse kind surfaced in Status.
func classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, api.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	case errors.Is(err, api.ErrOffline):
		return ErrorKindOffline
	default:
		var se *api.ServerError
		if errors.As(err, &se) {
			return ErrorKindServer
		}
		return ErrorKindTransport
	}
}
