// Package answer talks to the remote answering service.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"xenora/transport"
)

const (
	DefaultEndpoint = "http://localhost:5000/chat"
	DefaultTimeout  = 30 * time.Second
)

type request struct {
	Query string `json:"query"`
}

type reply struct {
	Response *string `json:"response"`
}

// NetworkError covers transport failures, non-2xx statuses and replies
// without a response field. StatusCode is 0 when no response arrived.
type NetworkError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("answering service error %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("answering service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Result is a successful exchange plus the bookkeeping the diagnostics
// log wants.
type Result struct {
	Text         string
	StatusCode   int
	RequestBytes int
	ReplyBytes   int
	Metrics      *transport.NetworkMetrics
}

type Client struct {
	endpoint string
	client   *transport.TracedClient
}

func New(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		client:   transport.NewTracedClient(endpoint, timeout),
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

// Warm pre-opens a connection to the endpoint.
func (c *Client) Warm() { c.client.Warm() }

func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	res, err := c.Exchange(ctx, query)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Exchange POSTs {query} and decodes {response}. On a *NetworkError the
// returned Result still carries status and metrics when any were seen.
func (c *Client) Exchange(ctx context.Context, query string) (*Result, error) {
	payload, err := json.Marshal(request{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res := &Result{RequestBytes: len(payload)}
	resp, err := c.client.Do(req)
	if err != nil {
		return res, &NetworkError{Err: err}
	}
	res.StatusCode = resp.StatusCode
	res.ReplyBytes = len(resp.Body)
	res.Metrics = resp.Metrics

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, &NetworkError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var r reply
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return res, &NetworkError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: fmt.Errorf("parse reply: %w", err)}
	}
	if r.Response == nil {
		return res, &NetworkError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: fmt.Errorf("reply has no response field")}
	}
	res.Text = *r.Response
	return res, nil
}
