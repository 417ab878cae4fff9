// Package cart implements the shopping cart owned by one profile: an ordered
// line collection with derived totals, kept durable in an injected key-value
// slot.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Line is one distinct purchasable item currently in the cart. Title, price
// and image are snapshots captured at add time and are not re-synced if the
// menu item later changes.
type Line struct {
	ItemID    string
	Title     string
	UnitPrice int64
	ImageRef  string
	Quantity  int
}

// encodeLines serializes lines to the persisted slot format.
func encodeLines(lines []Line) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(l.ItemID)
		e.FieldStart("title")
		e.Str(l.Title)
		e.FieldStart("price")
		e.Int64(l.UnitPrice)
		e.FieldStart("image")
		e.Str(l.ImageRef)
		e.FieldStart("qty")
		e.Int(l.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// decodeLines parses a persisted slot blob. Any malformed line rejects the
// whole blob: a cart that violates its invariants is treated as corrupt.
func decodeLines(data []byte) ([]Line, error) {
	d := jx.DecodeBytes(data)

	var lines []Line
	seen := make(map[string]struct{})
	if err := d.Arr(func(d *jx.Decoder) error {
		var l Line
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				l.ItemID, err = d.Str()
			case "title":
				l.Title, err = d.Str()
			case "price":
				l.UnitPrice, err = d.Int64()
			case "image":
				l.ImageRef, err = d.Str()
			case "qty":
				l.Quantity, err = d.Int()
			default:
				return d.Skip()
			}
			return err
		}); err != nil {
			return err
		}

		if l.ItemID == "" {
			return errors.New("line without item id")
		}
		if _, dup := seen[l.ItemID]; dup {
			return errors.Errorf("duplicate line for item %s", l.ItemID)
		}
		if l.Quantity < 1 {
			return errors.Errorf("line %s has quantity %d", l.ItemID, l.Quantity)
		}
		if l.UnitPrice < 0 {
			return errors.Errorf("line %s has negative price", l.ItemID)
		}

		seen[l.ItemID] = struct{}{}
		lines = append(lines, l)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart lines")
	}
	return lines, nil
}
