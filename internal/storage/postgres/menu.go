package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/brewhouse/ordering/internal/domain/catalog"
)

const (
	listMenuSQL = `SELECT id, title, price, image, category, available
		FROM menu_items ORDER BY category, id`

	getMenuByIDsSQL = `SELECT id, title, price, image, category, available
		FROM menu_items WHERE id = ANY($1)`

	upsertMenuItemSQL = `INSERT INTO menu_items (id, title, price, image, category, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			category = EXCLUDED.category,
			available = EXCLUDED.available`
)

var _ catalog.Repository = (*MenuRepository)(nil)

// MenuRepository implements catalog.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// List returns the full menu ordered by category then id.
func (r *MenuRepository) List(ctx context.Context) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, listMenuSQL)
	if err != nil {
		return nil, fmt.Errorf("listing menu: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetByIDs returns menu items matching any of the given IDs.
func (r *MenuRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting menu items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// Upsert inserts or replaces a menu item. Used by the seeding tool.
func (r *MenuRepository) Upsert(ctx context.Context, item catalog.Item) error {
	_, err := r.pool.Exec(ctx, upsertMenuItemSQL,
		item.ID, item.Title, decimal.NewFromInt(item.Price),
		item.Image, item.Category, item.Available,
	)
	if err != nil {
		return fmt.Errorf("upserting menu item %q: %w", item.ID, err)
	}
	return nil
}

func scanItem(row pgx.CollectableRow) (catalog.Item, error) {
	var (
		it    catalog.Item
		price decimal.Decimal
	)
	err := row.Scan(&it.ID, &it.Title, &price, &it.Image, &it.Category, &it.Available)
	it.Price = price.IntPart()
	return it, err
}
