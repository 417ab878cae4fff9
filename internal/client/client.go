// Package client provides HTTP adapters for the ordering backend: the order
// submission port consumed by checkout, plus menu and order-history reads.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brewhouse/ordering/internal/domain/catalog"
	"github.com/brewhouse/ordering/internal/domain/checkout"
)

// maxResponseBody bounds how much of any backend response is read.
const maxResponseBody = 1 << 20

// Config holds the settings for a backend Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8080".
	BaseURL string
	// HTTPClient overrides the default instrumented client.
	HTTPClient *http.Client
}

var _ checkout.Submitter = (*Client)(nil)

// Client talks to the ordering backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. Unless overridden, requests go through an
// otelhttp-instrumented transport.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
	}
}

// Submit implements checkout.Submitter by posting the request to
// POST /api/orders. All failures come back as *checkout.SubmissionError so
// the orchestrator can surface a message and keep the cart for retry.
func (c *Client) Submit(ctx context.Context, req checkout.Request) (*checkout.Ack, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &checkout.SubmissionError{Message: "could not encode the order", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, &checkout.SubmissionError{Message: "could not build the order request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &checkout.SubmissionError{Message: "could not reach the ordering service", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &checkout.SubmissionError{Message: "could not read the ordering service response", Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &checkout.SubmissionError{Message: serverMessage(data, resp.StatusCode)}
	}

	var ack struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &ack); err != nil || ack.ID == "" {
		return nil, &checkout.SubmissionError{Message: "ordering service returned a malformed response", Err: err}
	}

	return &checkout.Ack{OrderID: ack.ID, Message: "order placed"}, nil
}

// Menu fetches the current menu from GET /api/menu.
func (c *Client) Menu(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := c.getJSON(ctx, "/api/menu", &items); err != nil {
		return nil, errors.Wrap(err, "fetch menu")
	}
	return items, nil
}

// OrderSummary is one entry of a requester's order history.
type OrderSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Orders fetches the most recent orders attached to a requester.
func (c *Client) Orders(ctx context.Context, requesterID string) ([]OrderSummary, error) {
	var orders []OrderSummary
	path := "/api/orders?requester=" + url.QueryEscape(requesterID)
	if err := c.getJSON(ctx, path, &orders); err != nil {
		return nil, errors.Wrap(err, "fetch orders")
	}
	return orders, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.New(serverMessage(data, resp.StatusCode))
	}
	return json.Unmarshal(data, out)
}

// serverMessage extracts the backend's error message, falling back to the
// HTTP status text.
func serverMessage(data []byte, status int) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return fmt.Sprintf("ordering service returned %s", http.StatusText(status))
}
