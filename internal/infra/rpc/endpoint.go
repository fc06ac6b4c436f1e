package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// endpoint is a single JSON-RPC HTTP endpoint with its in-memory health
// counters. Counters are guarded by the owning Pool's mutex; they are
// transient and never persisted.
type endpoint struct {
	url        string
	httpClient *http.Client

	healthy             bool
	consecutiveFailures int
	recoveryStreak      int
	lastUsed            time.Time
}

func newEndpoint(url string, timeout time.Duration) *endpoint {
	return &endpoint{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		healthy: true,
	}
}

// call issues one JSON-RPC 2.0 request. Timeouts, connection errors,
// non-200 statuses, malformed bodies and JSON-RPC error objects all count
// as endpoint failures to the caller.
func (e *endpoint) call(ctx context.Context, method string, params []any) (any, error) {
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp struct {
		Result any             `json:"result"`
		Error  *map[string]any `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if rpcResp.Error != nil {
		errMsg := "unknown error"
		if msg, ok := (*rpcResp.Error)["message"].(string); ok {
			errMsg = msg
		}
		return nil, fmt.Errorf("rpc error: %s", errMsg)
	}

	return rpcResp.Result, nil
}
