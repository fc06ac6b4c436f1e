package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oxwatch/balwatch/internal/infra/rpc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	pools  map[string]*rpc.Pool
	server *http.Server
}

// NewServer creates a health server over the per-network RPC pools.
func NewServer(pools map[string]*rpc.Pool, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		pools: pools,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) report() Report {
	report := Report{
		SystemStatus: StatusHealthy,
		Networks:     make(map[string]NetworkHealth, len(s.pools)),
	}
	for name, pool := range s.pools {
		endpoints := make([]EndpointStatus, 0, len(pool.Health()))
		for _, e := range pool.Health() {
			endpoints = append(endpoints, EndpointStatus{
				URL:                 e.URL,
				Healthy:             e.Healthy,
				ConsecutiveFailures: e.ConsecutiveFailures,
			})
		}
		nh := NetworkHealth{
			Network:   name,
			Status:    networkStatus(endpoints),
			Endpoints: endpoints,
		}
		report.Networks[name] = nh

		// Aggregate status (worst case wins)
		if nh.Status == StatusCritical {
			report.SystemStatus = StatusCritical
		} else if nh.Status == StatusDegraded && report.SystemStatus == StatusHealthy {
			report.SystemStatus = StatusDegraded
		}
	}
	return report
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.report()

	response := map[string]string{"status": string(report.SystemStatus)}
	w.Header().Set("Content-Type", "application/json")

	if report.SystemStatus == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.report()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
