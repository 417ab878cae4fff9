package cart

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brewhouse/ordering/internal/domain/catalog"
	"github.com/brewhouse/ordering/internal/kvstore"
)

func newTestStore(t *testing.T) (*Store, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	return NewStore(kv, zap.NewNop()), kv
}

func chai() catalog.Item {
	return catalog.Item{ID: "chai", Title: "Masala Chai", Price: 30, Image: "/images/menu/chai.jpg", Available: true}
}

func samosa() catalog.Item {
	return catalog.Item{ID: "samosa", Title: "Samosa", Price: 20, Available: true}
}

func TestAddItem_NewLine(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(chai()))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "chai", lines[0].ItemID)
	assert.Equal(t, "Masala Chai", lines[0].Title)
	assert.Equal(t, int64(30), lines[0].UnitPrice)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestAddItem_RepeatedAddIncrements(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(chai()))
	require.NoError(t, s.AddItem(chai()))
	require.NoError(t, s.AddItem(chai()))

	lines := s.Lines()
	require.Len(t, lines, 1, "repeated adds must not duplicate lines")
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddItem_MissingID(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.AddItem(catalog.Item{Title: "Mystery", Price: 10})
	require.ErrorIs(t, err, ErrMissingItemID)
	assert.Empty(t, s.Lines())
}

func TestAddItem_PlaceholderImage(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(samosa()))
	assert.Equal(t, PlaceholderImage, s.Lines()[0].ImageRef)
}

func TestAddItem_SnapshotNotResynced(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(chai()))

	changed := chai()
	changed.Price = 99
	changed.Title = "Premium Chai"
	require.NoError(t, s.AddItem(changed))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(30), lines[0].UnitPrice, "price captured at first add")
	assert.Equal(t, "Masala Chai", lines[0].Title)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		itemID   string
		quantity int
		wantIDs  []string
		wantQty  int
	}{
		{name: "set exact", itemID: "chai", quantity: 5, wantIDs: []string{"chai", "samosa"}, wantQty: 5},
		{name: "zero removes", itemID: "chai", quantity: 0, wantIDs: []string{"samosa"}},
		{name: "negative removes", itemID: "chai", quantity: -3, wantIDs: []string{"samosa"}},
		{name: "absent id is a no-op", itemID: "ghost", quantity: 7, wantIDs: []string{"chai", "samosa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			require.NoError(t, s.AddItem(chai()))
			require.NoError(t, s.AddItem(samosa()))

			s.UpdateQuantity(tt.itemID, tt.quantity)

			lines := s.Lines()
			ids := make([]string, len(lines))
			for i, l := range lines {
				ids[i] = l.ItemID
				assert.GreaterOrEqual(t, l.Quantity, 1, "no line may survive with quantity < 1")
			}
			assert.Equal(t, tt.wantIDs, ids)
			if tt.wantQty > 0 {
				assert.Equal(t, tt.wantQty, lines[0].Quantity)
			}
		})
	}
}

func TestRemoveItem(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(chai()))
	require.NoError(t, s.AddItem(samosa()))

	s.RemoveItem("chai")
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, "samosa", s.Lines()[0].ItemID)

	// Absent id is a no-op.
	s.RemoveItem("chai")
	assert.Len(t, s.Lines(), 1)
}

func TestClear(t *testing.T) {
	s, kv := newTestStore(t)
	require.NoError(t, s.AddItem(chai()))

	s.Clear()
	assert.Empty(t, s.Lines())

	// Clear is persisted too: a fresh store sees the empty cart.
	fresh := NewStore(kv, zap.NewNop())
	assert.Empty(t, fresh.Lines())
}

func TestInsertionOrderPreserved(t *testing.T) {
	s, _ := newTestStore(t)

	items := []catalog.Item{
		{ID: "c", Title: "C", Price: 1},
		{ID: "a", Title: "A", Price: 2},
		{ID: "b", Title: "B", Price: 3},
	}
	for _, it := range items {
		require.NoError(t, s.AddItem(it))
	}
	// Re-adding the first item must not move it.
	require.NoError(t, s.AddItem(items[0]))

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "c", lines[0].ItemID)
	assert.Equal(t, "a", lines[1].ItemID)
	assert.Equal(t, "b", lines[2].ItemID)
}

func TestScenario_TotalsAndRemoval(t *testing.T) {
	s, _ := newTestStore(t)

	a := catalog.Item{ID: "A", Title: "Item A", Price: 100}
	b := catalog.Item{ID: "B", Title: "Item B", Price: 50}

	require.NoError(t, s.AddItem(a))
	require.NoError(t, s.AddItem(a))
	require.NoError(t, s.AddItem(b))

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)

	totals := s.Totals()
	assert.Equal(t, int64(250), totals.Subtotal)
	assert.Equal(t, int64(13), totals.Tax, "round half up of 12.5")
	assert.Equal(t, int64(263), totals.Total)

	s.UpdateQuantity("A", 0)
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, "B", s.Lines()[0].ItemID)
	assert.Equal(t, int64(50), s.Totals().Subtotal)
}

func TestPersistence_RoundTrip(t *testing.T) {
	kv := kvstore.NewMemory()
	s := NewStore(kv, zap.NewNop())

	require.NoError(t, s.AddItem(chai()))
	require.NoError(t, s.AddItem(chai()))
	require.NoError(t, s.AddItem(samosa()))
	s.UpdateQuantity("samosa", 4)

	fresh := NewStore(kv, zap.NewNop())
	assert.Equal(t, s.Lines(), fresh.Lines())
	assert.Equal(t, s.Totals(), fresh.Totals())
}

func TestRehydrate_CorruptSlot(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(SlotKey, []byte(`{"not":"a cart`)))

	s := NewStore(kv, zap.NewNop())
	assert.Empty(t, s.Lines())
	assert.Equal(t, Totals{}, s.Totals())
}

func TestRehydrate_InvariantViolatingBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "zero quantity", blob: `[{"id":"a","title":"A","price":10,"image":"","qty":0}]`},
		{name: "missing id", blob: `[{"title":"A","price":10,"image":"","qty":1}]`},
		{name: "negative price", blob: `[{"id":"a","title":"A","price":-5,"image":"","qty":1}]`},
		{name: "duplicate id", blob: `[{"id":"a","title":"A","price":5,"image":"","qty":1},{"id":"a","title":"A","price":5,"image":"","qty":2}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := kvstore.NewMemory()
			require.NoError(t, kv.Set(SlotKey, []byte(tt.blob)))

			s := NewStore(kv, zap.NewNop())
			assert.Empty(t, s.Lines(), "an invariant-violating blob rehydrates to an empty cart")
		})
	}
}

// failingKV rejects all writes, standing in for a full or read-only profile.
type failingKV struct {
	kvstore.Store
}

func (f *failingKV) Set(string, []byte) error {
	return errors.New("disk full")
}

func TestPersistFailure_CartStaysAuthoritative(t *testing.T) {
	kv := &failingKV{Store: kvstore.NewMemory()}
	s := NewStore(kv, zap.NewNop())

	require.NoError(t, s.AddItem(chai()), "persistence failures must not surface from mutations")
	assert.Len(t, s.Lines(), 1)
}
