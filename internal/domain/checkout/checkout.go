// Package checkout turns the current cart plus user-entered fulfillment
// details into a submitted order.
package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// Fulfillment selects how the customer receives the order.
type Fulfillment string

const (
	Takeaway Fulfillment = "takeaway"
	DineIn   Fulfillment = "dine_in"
)

// Form holds the transient user-entered checkout fields. It is reset after a
// successful submission and left untouched after a failed one.
type Form struct {
	Name        string
	Phone       string
	Address     string
	Notes       string
	Fulfillment Fulfillment
}

// RequestLine is one order line inside a submission payload.
type RequestLine struct {
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Request is the submission payload built at the validating-to-submitting
// boundary. It snapshots the cart and the computed total at that instant and
// is discarded after the attempt resolves, never persisted.
type Request struct {
	RequesterID    string        `json:"requester_id,omitempty"`
	Lines          []RequestLine `json:"items"`
	Total          int64         `json:"total"`
	Notes          string        `json:"notes,omitempty"`
	Fulfillment    Fulfillment   `json:"fulfillment"`
	ContactName    string        `json:"contact_name"`
	ContactPhone   string        `json:"contact_phone"`
	ContactAddress string        `json:"contact_address"`
}

// Ack is the opaque acknowledgment of a created order; enough for the caller
// to say "order placed".
type Ack struct {
	OrderID string
	Message string
}

// Submitter delivers a checkout request to the ordering backend.
type Submitter interface {
	Submit(ctx context.Context, req Request) (*Ack, error)
}

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not resolved yet.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ValidationError reports a field-level guard failure. It never reaches the
// network and never mutates the cart.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmissionError wraps a failure reported by (or on the way to) the ordering
// backend. The Message is safe to show the user; the attempt is retryable
// with the cart and form intact.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// State identifies where the orchestrator is within one checkout attempt.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
