package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewhouse/ordering/internal/domain/catalog"
)

// --- Mock implementations ---

type mockMenuRepo struct {
	items  map[string]catalog.Item
	getErr error
}

func (m *mockMenuRepo) List(_ context.Context) ([]catalog.Item, error) {
	out := make([]catalog.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *mockMenuRepo) GetByIDs(_ context.Context, ids []string) ([]catalog.Item, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []catalog.Item
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

type mockOrderRepo struct {
	lastOrder *Order
	listed    []Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.err
}

func (m *mockOrderRepo) ListByRequester(_ context.Context, _ string, _ int) ([]Order, error) {
	return m.listed, m.err
}

// --- Helpers ---

func newMenu(items ...catalog.Item) *mockMenuRepo {
	byID := make(map[string]catalog.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return &mockMenuRepo{items: byID}
}

func validRequest() PlaceRequest {
	return PlaceRequest{
		Lines: []Line{
			{ItemID: "chai", Title: "Masala Chai", Quantity: 2, UnitPrice: 100},
			{ItemID: "samosa", Title: "Samosa", Quantity: 1, UnitPrice: 50},
		},
		Total:          263,
		Fulfillment:    "takeaway",
		ContactName:    "Asha Verma",
		ContactPhone:   "9876543210",
		ContactAddress: "Room 12, Sunrise Hostel",
	}
}

func cafeMenu() *mockMenuRepo {
	return newMenu(
		catalog.Item{ID: "chai", Title: "Masala Chai", Price: 100, Available: true},
		catalog.Item{ID: "samosa", Title: "Samosa", Price: 50, Available: true},
	)
}

// --- Tests ---

func TestPlace_EmptyItems(t *testing.T) {
	svc := NewService(cafeMenu(), &mockOrderRepo{})

	_, err := svc.Place(context.Background(), PlaceRequest{})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestPlace_MissingContactFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PlaceRequest)
		wantField string
	}{
		{name: "name", mutate: func(r *PlaceRequest) { r.ContactName = " " }, wantField: "contact_name"},
		{name: "phone", mutate: func(r *PlaceRequest) { r.ContactPhone = "" }, wantField: "contact_phone"},
		{name: "address", mutate: func(r *PlaceRequest) { r.ContactAddress = "" }, wantField: "contact_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepo{}
			svc := NewService(cafeMenu(), repo)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Place(context.Background(), req)

			var mfErr *MissingFieldError
			require.ErrorAs(t, err, &mfErr)
			assert.Equal(t, tt.wantField, mfErr.Field)
			assert.Nil(t, repo.lastOrder)
		})
	}
}

func TestPlace_InvalidQuantity(t *testing.T) {
	svc := NewService(cafeMenu(), &mockOrderRepo{})

	req := validRequest()
	req.Lines[0].Quantity = 0

	_, err := svc.Place(context.Background(), req)

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "chai", iqErr.ItemID)
}

func TestPlace_UnknownItem(t *testing.T) {
	svc := NewService(cafeMenu(), &mockOrderRepo{})

	req := validRequest()
	req.Lines[1].ItemID = "pizza"

	_, err := svc.Place(context.Background(), req)

	var uiErr *UnknownItemError
	require.ErrorAs(t, err, &uiErr)
	assert.Equal(t, "pizza", uiErr.ItemID)
}

func TestPlace_TotalMismatch(t *testing.T) {
	svc := NewService(cafeMenu(), &mockOrderRepo{})

	req := validRequest()
	req.Total = 250 // forgot the tax

	_, err := svc.Place(context.Background(), req)

	var tmErr *TotalMismatchError
	require.ErrorAs(t, err, &tmErr)
	assert.Equal(t, int64(250), tmErr.Claimed)
	assert.Equal(t, int64(263), tmErr.Computed)
}

func TestPlace_Success(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(cafeMenu(), repo)
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC) }

	req := validRequest()
	req.RequesterID = "user-7"

	o, err := svc.Place(context.Background(), req)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(o.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, int64(250), o.Subtotal)
	assert.Equal(t, int64(13), o.Tax)
	assert.Equal(t, int64(263), o.Total)
	assert.Equal(t, "user-7", o.RequesterID)
	assert.Equal(t, StatusReceived, o.Status)
	assert.Equal(t, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC), o.CreatedAt)
	assert.Equal(t, o, repo.lastOrder)
}

func TestPlace_GuestOrder(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(cafeMenu(), repo)

	o, err := svc.Place(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, o.RequesterID, "guest checkout is permitted")
}

func TestPlace_RepoError(t *testing.T) {
	svc := NewService(cafeMenu(), &mockOrderRepo{err: errors.New("db write failed")})

	_, err := svc.Place(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestPlace_MenuLookupError(t *testing.T) {
	menu := cafeMenu()
	menu.getErr = errors.New("db down")
	svc := NewService(menu, &mockOrderRepo{})

	_, err := svc.Place(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get menu items")
}

func TestHistory_DefaultLimit(t *testing.T) {
	repo := &mockOrderRepo{listed: []Order{{ID: "o1"}, {ID: "o2"}}}
	svc := NewService(cafeMenu(), repo)

	orders, err := svc.History(context.Background(), "user-7", 0)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
