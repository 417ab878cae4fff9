package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/brewhouse/ordering/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, requester_id, items, subtotal, tax, total, notes, fulfillment,
		 contact_name, contact_phone, contact_address, status, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	listOrdersByRequesterSQL = `SELECT id, COALESCE(requester_id, ''), items, subtotal, tax, total,
			notes, fulfillment, contact_name, contact_phone, contact_address, status, created_at
		FROM orders WHERE requester_id = $1
		ORDER BY created_at DESC LIMIT $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The order lines are serialized to JSON for
// storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshaling order lines: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.RequesterID, linesJSON,
		decimal.NewFromInt(o.Subtotal), decimal.NewFromInt(o.Tax), decimal.NewFromInt(o.Total),
		o.Notes, o.Fulfillment,
		o.ContactName, o.ContactPhone, o.ContactAddress,
		o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// ListByRequester returns the most recent orders attached to a requester.
func (r *OrderRepository) ListByRequester(ctx context.Context, requesterID string, limit int) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByRequesterSQL, requesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", requesterID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                   order.Order
		linesJSON           []byte
		subtotal, tax, totl decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &o.RequesterID, &linesJSON, &subtotal, &tax, &totl,
		&o.Notes, &o.Fulfillment, &o.ContactName, &o.ContactPhone, &o.ContactAddress,
		&o.Status, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return o, fmt.Errorf("unmarshaling lines for order %q: %w", o.ID, err)
	}
	o.Subtotal = subtotal.IntPart()
	o.Tax = tax.IntPart()
	o.Total = totl.IntPart()
	return o, nil
}
