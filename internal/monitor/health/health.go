// Package health exposes the watcher's liveness state and Prometheus
// metrics over HTTP.
package health

// Status is the aggregate health of the watcher or of one network.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// EndpointStatus is a point-in-time view of one RPC endpoint.
type EndpointStatus struct {
	URL                 string `json:"url"`
	Healthy             bool   `json:"healthy"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
}

// NetworkHealth summarizes one network's RPC pool.
type NetworkHealth struct {
	Network   string           `json:"network"`
	Status    Status           `json:"status"`
	Endpoints []EndpointStatus `json:"endpoints"`
}

// Report contains the full health report returned by /health/detailed.
type Report struct {
	SystemStatus Status                   `json:"system_status"`
	Networks     map[string]NetworkHealth `json:"networks"`
}

// networkStatus classifies one pool: critical when no endpoint is
// healthy, degraded when some are down, healthy otherwise.
func networkStatus(endpoints []EndpointStatus) Status {
	healthy := 0
	for _, e := range endpoints {
		if e.Healthy {
			healthy++
		}
	}
	switch {
	case healthy == 0:
		return StatusCritical
	case healthy < len(endpoints):
		return StatusDegraded
	default:
		return StatusHealthy
	}
}
