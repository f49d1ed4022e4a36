// Package memsvc is the narrow client for the memory service under
// evaluation: store a memory with metadata in a zone over an authenticated
// JSON-RPC-over-HTTP contract. The service's search endpoint is not used;
// retrieval goes through the local memory index instead.
package memsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/membench/membench/pkg/circuitbreaker"
	"github.com/membench/membench/pkg/logger"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	zone       string
	cb         *circuitbreaker.CircuitBreaker
	rpcID      atomic.Int64
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func NewClient(baseURL, apiKey, zone string) *Client {
	cb := circuitbreaker.New("memsvc", circuitbreaker.Config{
		MaxRequests:      5,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("Memory service client initialized",
		zap.String("url", baseURL),
		zap.String("zone", zone),
	)

	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		zone:       zone,
		cb:         cb,
	}
}

// StoreMemory stores one content string with metadata in the configured
// zone. The call is not retried; a failed item stays eligible for the next
// run because no checkpoint is written for it.
func (c *Client) StoreMemory(ctx context.Context, content string, metadata map[string]any) error {
	return c.cb.Execute(ctx, func() error {
		return c.rpc(ctx, "memory_store", map[string]any{
			"content":  content,
			"metadata": metadata,
			"zone":     c.zone,
		})
	})
}

func (c *Client) rpc(ctx context.Context, method string, params map[string]any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.rpcID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	url := c.baseURL + "/api/nfs/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d", method, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("%s failed: %s (code %d)", method, parsed.Error.Message, parsed.Error.Code)
	}
	return nil
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
