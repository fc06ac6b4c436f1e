package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func rpcServer(t *testing.T, result string, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail != nil && fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode body: %v", err)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": result,
			"error":  nil,
			"id":     req["id"],
		})
	}))
}

func TestPool_FailoverToHealthyEndpoint(t *testing.T) {
	var failA, failB atomic.Bool
	failA.Store(true)
	failB.Store(true)

	a := rpcServer(t, "0x1", &failA)
	defer a.Close()
	b := rpcServer(t, "0x2", &failB)
	defer b.Close()
	c := rpcServer(t, "0x3", nil)
	defer c.Close()

	pool := NewPool("testnet", []string{a.URL, b.URL, c.URL}, Options{
		ActiveCount: 2,
		Timeout:     2 * time.Second,
	})

	// a and b (the active subset) fail; the call must fall through to c.
	result, err := pool.Call(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(string) != "0x3" {
		t.Errorf("expected fall-through result 0x3, got %v", result)
	}

	health := pool.Health()
	if health[0].Healthy || health[1].Healthy {
		t.Errorf("failed endpoints should be unhealthy: %+v", health)
	}
	if !health[2].Healthy {
		t.Errorf("succeeding endpoint should stay healthy")
	}
}

func TestPool_TransportExhausted(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)

	a := rpcServer(t, "", &fail)
	defer a.Close()
	b := rpcServer(t, "", &fail)
	defer b.Close()
	c := rpcServer(t, "", &fail)
	defer c.Close()

	pool := NewPool("deadnet", []string{a.URL, b.URL, c.URL}, Options{
		ActiveCount: 2,
		Timeout:     2 * time.Second,
	})

	_, err := pool.Call(context.Background(), "eth_blockNumber", nil)
	if !errors.Is(err, ErrTransportExhausted) {
		t.Fatalf("expected ErrTransportExhausted, got %v", err)
	}

	for i, h := range pool.Health() {
		if h.Healthy {
			t.Errorf("endpoint %d should be unhealthy after exhausted call", i)
		}
		if h.ConsecutiveFailures != 1 {
			t.Errorf("endpoint %d: consecutive failures = %d, want 1", i, h.ConsecutiveFailures)
		}
	}
}

func TestPool_RecoveryAfterSuccessStreak(t *testing.T) {
	var failA atomic.Bool
	failA.Store(true)

	a := rpcServer(t, "0xa", &failA)
	defer a.Close()
	b := rpcServer(t, "0xb", nil)
	defer b.Close()

	pool := NewPool("testnet", []string{a.URL, b.URL}, Options{
		ActiveCount:       1,
		RecoverySuccesses: 2,
		ProbeEvery:        2,
		Timeout:           2 * time.Second,
	})

	// First call: a (active) fails, b answers. a is now unhealthy.
	if _, err := pool.Call(context.Background(), "eth_blockNumber", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.Health()[0].Healthy {
		t.Fatal("endpoint a should be unhealthy")
	}

	// a comes back. Probing fronts it every second call; it needs two
	// consecutive successes before rejoining the active subset.
	failA.Store(false)

	var probed int
	for i := 0; i < 6 && !pool.Health()[0].Healthy; i++ {
		if _, err := pool.Call(context.Background(), "eth_blockNumber", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		probed++
	}

	if !pool.Health()[0].Healthy {
		t.Fatalf("endpoint a not restored after %d calls", probed)
	}
}

func TestPool_RoundRobinRotation(t *testing.T) {
	var hitsA, hitsB atomic.Int64

	a := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitsA.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"result": "0xa", "id": 1})
	}))
	defer a.Close()
	b := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitsB.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"result": "0xb", "id": 1})
	}))
	defer b.Close()

	pool := NewPool("testnet", []string{a.URL, b.URL}, Options{
		ActiveCount: 2,
		Timeout:     2 * time.Second,
	})

	for i := 0; i < 4; i++ {
		if _, err := pool.Call(context.Background(), "eth_blockNumber", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if hitsA.Load() != 2 || hitsB.Load() != 2 {
		t.Errorf("round-robin should spread load evenly, got a=%d b=%d", hitsA.Load(), hitsB.Load())
	}
}
