package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed collection cycles.
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "balwatch_cycles_total",
			Help: "Total number of completed collection cycles",
		},
	)

	// RPCCallsTotal tracks RPC attempts per network and endpoint.
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balwatch_rpc_calls_total",
			Help: "Total number of RPC endpoint attempts",
		},
		[]string{"network", "endpoint"},
	)

	// RPCErrorsTotal tracks failed RPC attempts per network and endpoint.
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balwatch_rpc_errors_total",
			Help: "Total number of failed RPC endpoint attempts",
		},
		[]string{"network", "endpoint"},
	)

	// EndpointHealthy reports per-endpoint health (1 healthy, 0 unhealthy).
	EndpointHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "balwatch_endpoint_healthy",
			Help: "Whether an RPC endpoint is in the active rotation",
		},
		[]string{"network", "endpoint"},
	)

	// EventsEmittedTotal counts notification events by type.
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balwatch_events_emitted_total",
			Help: "Total number of notification events emitted",
		},
		[]string{"type"},
	)

	// AlertsFiredTotal counts low-balance alerts that passed throttling.
	AlertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balwatch_alerts_fired_total",
			Help: "Total number of low-balance alerts fired",
		},
		[]string{"network"},
	)

	// Balance reports the last observed balance per entity.
	Balance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "balwatch_balance",
			Help: "Last observed balance for a monitored entity",
		},
		[]string{"network", "alias", "address"},
	)

	// FlushFailuresTotal counts failed state-file flushes (retried on the
	// next cycle).
	FlushFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balwatch_flush_failures_total",
			Help: "Total number of failed state file flushes",
		},
		[]string{"file"},
	)
)
