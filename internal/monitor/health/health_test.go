package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestNetworkStatus(t *testing.T) {
	up := EndpointStatus{URL: "https://a", Healthy: true}
	down := EndpointStatus{URL: "https://b", Healthy: false}

	tests := []struct {
		name      string
		endpoints []EndpointStatus
		want      Status
	}{
		{"all healthy", []EndpointStatus{up, up}, StatusHealthy},
		{"partially down", []EndpointStatus{up, down}, StatusDegraded},
		{"all down", []EndpointStatus{down, down}, StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := networkStatus(tt.endpoints); got != tt.want {
				t.Errorf("networkStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleHealth_NoPools(t *testing.T) {
	s := NewServer(nil, 0)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != string(StatusHealthy) {
		t.Errorf("status = %q", body["status"])
	}
}
