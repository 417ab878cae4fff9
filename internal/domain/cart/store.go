package cart

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/brewhouse/ordering/internal/domain/catalog"
	"github.com/brewhouse/ordering/internal/kvstore"
)

// SlotKey is the persisted cart slot name, carried over from the original
// product so existing profiles keep their carts.
const SlotKey = "bh_cart"

// PlaceholderImage substitutes for menu items that ship without an image.
const PlaceholderImage = "/images/menu/placeholder.jpg"

// ErrMissingItemID is returned by AddItem for a catalog item without an
// identifier. Adding such an item would corrupt the line collection.
var ErrMissingItemID = errors.New("catalog item has no id")

// Store owns the authoritative in-memory cart for one profile and keeps it
// durable in the injected key-value slot after every mutation.
//
// All operations are synchronous; the Store is not safe for concurrent use.
// Two processes sharing one slot each hold an independent cart and the last
// writer wins on the next rehydrate. That weak consistency is accepted, the
// slot is per-profile state, not a shared database.
type Store struct {
	kv    kvstore.Store
	lg    *zap.Logger
	lines []Line
}

// NewStore creates a Store rehydrated from the slot. An absent, unreadable or
// corrupt slot degrades to an empty cart; a broken cart must never take the
// application down.
func NewStore(kv kvstore.Store, lg *zap.Logger) *Store {
	s := &Store{kv: kv, lg: lg}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	data, err := s.kv.Get(SlotKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.lg.Warn("cart slot unreadable, starting empty", zap.Error(err))
		}
		return
	}

	lines, err := decodeLines(data)
	if err != nil {
		s.lg.Warn("cart slot corrupt, starting empty", zap.Error(err))
		return
	}
	s.lines = lines
}

// AddItem appends a quantity-1 snapshot of item, or increments the quantity
// of the existing line with the same id. Availability is the caller's
// concern; the cart accepts whatever the menu view lets through.
func (s *Store) AddItem(item catalog.Item) error {
	if item.ID == "" {
		return ErrMissingItemID
	}

	for i := range s.lines {
		if s.lines[i].ItemID == item.ID {
			s.lines[i].Quantity++
			s.persist()
			return nil
		}
	}

	image := item.Image
	if image == "" {
		image = PlaceholderImage
	}
	s.lines = append(s.lines, Line{
		ItemID:    item.ID,
		Title:     item.Title,
		UnitPrice: item.Price,
		ImageRef:  image,
		Quantity:  1,
	})
	s.persist()
	return nil
}

// UpdateQuantity sets the quantity of the line with itemID. A quantity of
// zero or less removes the line. An absent id is a no-op.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	for i := range s.lines {
		if s.lines[i].ItemID != itemID {
			continue
		}
		if quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity = quantity
		}
		s.persist()
		return
	}
}

// RemoveItem deletes the line with itemID. An absent id is a no-op.
func (s *Store) RemoveItem(itemID string) {
	s.UpdateQuantity(itemID, 0)
}

// Clear empties the cart. Called after a successful checkout and on explicit
// user action.
func (s *Store) Clear() {
	s.lines = nil
	s.persist()
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of distinct lines in the cart.
func (s *Store) Len() int {
	return len(s.lines)
}

// Totals derives subtotal, tax and total from the current lines.
func (s *Store) Totals() Totals {
	return TotalsFor(s.lines)
}

// persist writes the full line set to the slot. Write failures are logged and
// swallowed: the in-memory cart stays authoritative for this session.
func (s *Store) persist() {
	if err := s.kv.Set(SlotKey, encodeLines(s.lines)); err != nil {
		s.lg.Warn("persist cart", zap.Error(err))
	}
}
