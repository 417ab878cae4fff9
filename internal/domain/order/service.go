package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewhouse/ordering/internal/domain/catalog"
)

// taxRate mirrors the client-side cart: a flat 5% on the subtotal, rounded
// half up.
var taxRate = decimal.RequireFromString("0.05")

// Sentinel errors for order validation.
var ErrEmptyItems = fmt.Errorf("items required")

// MissingFieldError indicates a required contact field is blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ItemID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s", e.ItemID)
}

// UnknownItemError indicates a submitted item does not exist in the menu.
type UnknownItemError struct {
	ItemID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("item %s not found", e.ItemID)
}

// TotalMismatchError indicates the client-claimed total disagrees with the
// server's recomputation over the submitted lines.
type TotalMismatchError struct {
	Claimed  int64
	Computed int64
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total mismatch: claimed %d, computed %d", e.Claimed, e.Computed)
}

// PlaceRequest holds the input for accepting an order.
type PlaceRequest struct {
	RequesterID    string
	Lines          []Line
	Total          int64
	Notes          string
	Fulfillment    string
	ContactName    string
	ContactPhone   string
	ContactAddress string
}

// Service encapsulates order acceptance business logic.
type Service struct {
	menu   catalog.Repository
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(menu catalog.Repository, orders Repository) *Service {
	return &Service{
		menu:   menu,
		orders: orders,
		now:    time.Now,
	}
}

// Place validates the submission, checks every item against the menu,
// recomputes the totals from the submitted unit prices, persists the order,
// and returns it.
//
// Unit prices come from the client's cart snapshot, not the live menu: the
// customer pays what they saw when they added the item. The menu lookup only
// establishes that the items exist.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyItems
	}
	if strings.TrimSpace(req.ContactName) == "" {
		return nil, &MissingFieldError{Field: "contact_name"}
	}
	if strings.TrimSpace(req.ContactPhone) == "" {
		return nil, &MissingFieldError{Field: "contact_phone"}
	}
	if strings.TrimSpace(req.ContactAddress) == "" {
		return nil, &MissingFieldError{Field: "contact_address"}
	}

	ids := make([]string, len(req.Lines))
	for i, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, &InvalidQuantityError{ItemID: l.ItemID}
		}
		if l.UnitPrice < 0 {
			return nil, &UnknownItemError{ItemID: l.ItemID}
		}
		ids[i] = l.ItemID
	}

	// Batch fetch to verify every submitted item exists.
	fetched, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get menu items: %w", err)
	}
	known := make(map[string]struct{}, len(fetched))
	for _, it := range fetched {
		known[it.ID] = struct{}{}
	}
	for _, l := range req.Lines {
		if _, ok := known[l.ItemID]; !ok {
			return nil, &UnknownItemError{ItemID: l.ItemID}
		}
	}

	var subtotal int64
	for _, l := range req.Lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
	}
	tax := decimal.NewFromInt(subtotal).Mul(taxRate).Round(0).IntPart()
	total := subtotal + tax

	if req.Total != total {
		return nil, &TotalMismatchError{Claimed: req.Total, Computed: total}
	}

	o := &Order{
		ID:             uuid.New().String(),
		RequesterID:    req.RequesterID,
		Lines:          req.Lines,
		Subtotal:       subtotal,
		Tax:            tax,
		Total:          total,
		Notes:          req.Notes,
		Fulfillment:    req.Fulfillment,
		ContactName:    strings.TrimSpace(req.ContactName),
		ContactPhone:   strings.TrimSpace(req.ContactPhone),
		ContactAddress: strings.TrimSpace(req.ContactAddress),
		Status:         StatusReceived,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// History returns the most recent orders attached to a requester.
func (s *Service) History(ctx context.Context, requesterID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 20
	}
	orders, err := s.orders.ListByRequester(ctx, requesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
