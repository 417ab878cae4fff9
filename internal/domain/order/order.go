package order

import (
	"context"
	"time"
)

// StatusReceived is the status every freshly accepted order starts in.
const StatusReceived = "received"

// Order is a customer order as accepted and stored by the backend.
type Order struct {
	ID             string
	RequesterID    string
	Lines          []Line
	Subtotal       int64
	Tax            int64
	Total          int64
	Notes          string
	Fulfillment    string
	ContactName    string
	ContactPhone   string
	ContactAddress string
	Status         string
	CreatedAt      time.Time
}

// Line is a single line item in a stored order. The unit price is what the
// customer saw when the item went into their cart.
type Line struct {
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	ListByRequester(ctx context.Context, requesterID string, limit int) ([]Order, error)
}
