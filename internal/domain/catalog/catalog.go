package catalog

import "context"

// Item represents a menu item available for ordering. Prices are whole
// currency units; the menu has no fractional prices.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Category  string `json:"category,omitempty"`
	Available bool   `json:"available"`
}

// Repository defines read operations for the menu catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]Item, error)
}
