// Package rpc implements the fallback transport layer: a fixed-size
// rotating subset of configured JSON-RPC endpoints per network, with
// automatic failover and endpoint recovery.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oxwatch/balwatch/internal/monitor/metrics"
)

// ErrTransportExhausted is returned when every configured endpoint for a
// network failed within one logical call. The caller does not retry; the
// next polling cycle retries the network independently.
var ErrTransportExhausted = errors.New("all rpc endpoints failed")

// Options tunes pool behavior.
type Options struct {
	// ActiveCount is the size of the rotating active subset, clamped to
	// min(ActiveCount, len(urls)).
	ActiveCount int

	// RecoverySuccesses is the number of consecutive successes that
	// restore an unhealthy endpoint to the active subset.
	RecoverySuccesses int

	// ProbeEvery fronts the stalest unhealthy endpoint once every N calls
	// so no endpoint starves. Zero disables proactive probing (unhealthy
	// endpoints are still tried on fall-through).
	ProbeEvery int

	// Timeout bounds each individual endpoint request.
	Timeout time.Duration
}

// Pool executes balance queries against one network's endpoints with
// round-robin rotation over a healthy active subset and failover through
// the remaining endpoints.
type Pool struct {
	network           string
	endpoints         []*endpoint // configuration order
	activeCount       int
	recoverySuccesses int
	probeEvery        int

	mu    sync.Mutex
	rr    int    // round-robin cursor over the active subset
	calls uint64 // total Call invocations, drives probing

	log *slog.Logger
}

// NewPool creates a pool over the network's configured endpoint URLs.
func NewPool(network string, urls []string, opts Options) *Pool {
	if opts.ActiveCount <= 0 || opts.ActiveCount > len(urls) {
		opts.ActiveCount = len(urls)
	}
	if opts.RecoverySuccesses <= 0 {
		opts.RecoverySuccesses = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	endpoints := make([]*endpoint, len(urls))
	for i, url := range urls {
		endpoints[i] = newEndpoint(url, opts.Timeout)
	}

	return &Pool{
		network:           network,
		endpoints:         endpoints,
		activeCount:       opts.ActiveCount,
		recoverySuccesses: opts.RecoverySuccesses,
		probeEvery:        opts.ProbeEvery,
		log:               slog.Default().With("network", network),
	}
}

// Network returns the network this pool serves.
func (p *Pool) Network() string {
	return p.network
}

// Call executes one JSON-RPC request with failover. Endpoints are tried
// in round-robin order over the active subset; each failure marks the
// endpoint unhealthy and moves on. If the whole active subset fails the
// call falls through to the remaining configured endpoints in list order,
// exactly once each. When every endpoint fails the call reports
// ErrTransportExhausted.
func (p *Pool) Call(ctx context.Context, method string, params []any) (any, error) {
	attempts := p.attemptOrder()

	var lastErr error
	for _, e := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := e.call(ctx, method, params)
		metrics.RPCCallsTotal.WithLabelValues(p.network, e.url).Inc()
		if err == nil {
			p.recordSuccess(e)
			return result, nil
		}

		metrics.RPCErrorsTotal.WithLabelValues(p.network, e.url).Inc()
		p.recordFailure(e)
		p.log.Debug("endpoint failed, trying next", "endpoint", e.url, "error", err)
		lastErr = err
	}

	return nil, fmt.Errorf("network %s: %w (last: %v)", p.network, ErrTransportExhausted, lastErr)
}

// attemptOrder builds the failover order for one logical call: an optional
// probe target, then the active subset starting at the round-robin cursor,
// then the remaining endpoints in configuration order. Every endpoint
// appears at most once.
func (p *Pool) attemptOrder() []*endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++

	seen := make(map[*endpoint]bool, len(p.endpoints))
	order := make([]*endpoint, 0, len(p.endpoints))

	// Re-probe: periodically front the stalest unhealthy endpoint so a
	// recovered node can earn its way back while the subset is healthy.
	if p.probeEvery > 0 && p.calls%uint64(p.probeEvery) == 0 {
		if probe := p.stalestUnhealthy(); probe != nil {
			order = append(order, probe)
			seen[probe] = true
		}
	}

	// Active subset: first activeCount healthy endpoints in config order,
	// rotated by the round-robin cursor.
	active := make([]*endpoint, 0, p.activeCount)
	for _, e := range p.endpoints {
		if e.healthy {
			active = append(active, e)
			if len(active) == p.activeCount {
				break
			}
		}
	}
	if len(active) > 0 {
		start := p.rr % len(active)
		p.rr++
		for i := 0; i < len(active); i++ {
			e := active[(start+i)%len(active)]
			if !seen[e] {
				order = append(order, e)
				seen[e] = true
			}
		}
	}

	// Fall-through: whatever is left, in configuration order.
	for _, e := range p.endpoints {
		if !seen[e] {
			order = append(order, e)
			seen[e] = true
		}
	}

	return order
}

func (p *Pool) stalestUnhealthy() *endpoint {
	var stalest *endpoint
	for _, e := range p.endpoints {
		if e.healthy {
			continue
		}
		if stalest == nil || e.lastUsed.Before(stalest.lastUsed) {
			stalest = e
		}
	}
	return stalest
}

func (p *Pool) recordSuccess(e *endpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e.consecutiveFailures = 0
	e.lastUsed = time.Now()
	if !e.healthy {
		e.recoveryStreak++
		if e.recoveryStreak >= p.recoverySuccesses {
			e.healthy = true
			e.recoveryStreak = 0
			p.log.Info("endpoint restored to active subset", "endpoint", e.url)
		}
	}
	metrics.EndpointHealthy.WithLabelValues(p.network, e.url).Set(boolGauge(e.healthy))
}

func (p *Pool) recordFailure(e *endpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e.consecutiveFailures++
	e.recoveryStreak = 0
	e.lastUsed = time.Now()
	e.healthy = false
	metrics.EndpointHealthy.WithLabelValues(p.network, e.url).Set(0)
}

// EndpointHealth is a point-in-time view of one endpoint's counters.
type EndpointHealth struct {
	URL                 string    `json:"url"`
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastUsed            time.Time `json:"last_used"`
}

// Health reports the current health of every configured endpoint.
func (p *Pool) Health() []EndpointHealth {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]EndpointHealth, len(p.endpoints))
	for i, e := range p.endpoints {
		out[i] = EndpointHealth{
			URL:                 e.url,
			Healthy:             e.healthy,
			ConsecutiveFailures: e.consecutiveFailures,
			LastUsed:            e.lastUsed,
		}
	}
	return out
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
