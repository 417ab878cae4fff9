package checkout

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/brewhouse/ordering/internal/domain/cart"
	"github.com/brewhouse/ordering/internal/identity"
)

// Orchestrator runs the checkout state machine
//
//	idle -> validating -> submitting -> succeeded | failed
//
// for one cart. A terminal state belongs to one attempt; the machine returns
// to idle at the start of the next. At most one submission is in flight per
// orchestrator; a concurrent Submit is rejected with ErrSubmissionInFlight.
type Orchestrator struct {
	cart      *cart.Store
	submitter Submitter
	identity  identity.Provider
	lg        *zap.Logger

	inFlight atomic.Bool
	state    atomic.Int32

	form Form
}

// NewOrchestrator wires the orchestrator to its cart and collaborators.
func NewOrchestrator(c *cart.Store, submitter Submitter, ident identity.Provider, lg *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cart:      c,
		submitter: submitter,
		identity:  ident,
		lg:        lg,
	}
}

// Form returns the current transient form fields.
func (o *Orchestrator) Form() Form {
	return o.form
}

// SetForm replaces the transient form fields.
func (o *Orchestrator) SetForm(f Form) {
	o.form = f
}

// State reports where the orchestrator is: during Submit the live attempt
// state, between attempts the outcome of the last one.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

// Submit runs one checkout attempt against the current cart and form.
//
// On success the cart is cleared, the form is reset, and the backend's
// acknowledgment is returned. On any failure the cart and form are left
// exactly as they were so the user can retry without re-entering data.
func (o *Orchestrator) Submit(ctx context.Context) (*Ack, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer o.inFlight.Store(false)

	o.setState(StateIdle)
	o.setState(StateValidating)

	lines := o.cart.Lines()
	if err := validate(lines, o.form); err != nil {
		// Guard failures halt at validating; the cart is untouched and the
		// submitter is never reached.
		return nil, err
	}

	o.setState(StateSubmitting)
	req := o.buildRequest(lines)

	ack, err := o.submitter.Submit(ctx, req)
	if err != nil {
		o.setState(StateFailed)
		o.lg.Warn("order submission failed", zap.Error(err))

		var subErr *SubmissionError
		if errors.As(err, &subErr) {
			return nil, subErr
		}
		return nil, &SubmissionError{Message: "could not place the order, please try again", Err: err}
	}

	o.cart.Clear()
	o.form = Form{}
	o.setState(StateSucceeded)
	o.lg.Info("order placed", zap.String("order_id", ack.OrderID), zap.Int64("total", req.Total))
	return ack, nil
}

// buildRequest snapshots the cart, form and identity at the
// validating-to-submitting boundary. The total is fixed here; a cart mutation
// during network flight does not affect the in-flight request.
func (o *Orchestrator) buildRequest(lines []cart.Line) Request {
	reqLines := make([]RequestLine, len(lines))
	for i, l := range lines {
		reqLines[i] = RequestLine{
			ItemID:    l.ItemID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	fulfillment := o.form.Fulfillment
	if fulfillment == "" {
		fulfillment = Takeaway
	}

	req := Request{
		Lines:          reqLines,
		Total:          cart.TotalsFor(lines).Total,
		Notes:          o.form.Notes,
		Fulfillment:    fulfillment,
		ContactName:    strings.TrimSpace(o.form.Name),
		ContactPhone:   strings.TrimSpace(o.form.Phone),
		ContactAddress: strings.TrimSpace(o.form.Address),
	}

	// Identity is optional: guest checkout is permitted.
	if id, ok := o.identity.CurrentIdentifier(); ok {
		req.RequesterID = id
	}
	return req
}

func validate(lines []cart.Line, form Form) error {
	if len(lines) == 0 {
		return &ValidationError{Field: "items", Message: "add at least one item to your order"}
	}
	if strings.TrimSpace(form.Name) == "" {
		return &ValidationError{Field: "contact_name", Message: "name is required"}
	}
	if strings.TrimSpace(form.Phone) == "" {
		return &ValidationError{Field: "contact_phone", Message: "phone number is required"}
	}
	if strings.TrimSpace(form.Address) == "" {
		return &ValidationError{Field: "contact_address", Message: "address is required"}
	}
	return nil
}
