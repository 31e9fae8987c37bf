package store

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `i.id, i.name, i.description, i.category_id, i.price_per_day, i.image_url,
	i.specifications, i.total_quantity, i.available_quantity, i.created_at, i.updated_at`

func scanItem(row pgx.Row, extra ...any) (rental.Item, error) {
	var it rental.Item
	dest := []any{&it.ID, &it.Name, &it.Description, &it.CategoryID, &it.PricePerDay, &it.ImageURL,
		&it.Specifications, &it.TotalQuantity, &it.AvailableQuantity, &it.CreatedAt, &it.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return it, err
}

func (s *Store) GetItem(ctx context.Context, id int64) (rental.Item, error) {
	it, err := scanItem(s.q(ctx).QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id=$1`, id))
	return it, mapErr(err, "item", id)
}

func (s *Store) GetItemForUpdate(ctx context.Context, id int64) (rental.Item, error) {
	it, err := scanItem(s.q(ctx).QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id=$1 FOR UPDATE`, id))
	return it, mapErr(err, "item", id)
}

func (s *Store) ListItemsWithCategory(ctx context.Context, f rental.ItemFilter) ([]rental.ItemView, error) {
	clause, args := buildItemListQuery(f)
	rows, err := s.q(ctx).Query(ctx, `SELECT `+itemColumns+`, c.name
		FROM items i LEFT JOIN categories c ON c.id = i.category_id `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []rental.ItemView{}
	for rows.Next() {
		var v rental.ItemView
		if v.Item, err = scanItem(rows, &v.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AdjustAvailability is a conditional update: zero rows means the result
// would leave [0, total] (or the item is gone) and nothing was written.
func (s *Store) AdjustAvailability(ctx context.Context, id int64, delta int) (int, error) {
	var available int
	err := s.q(ctx).QueryRow(ctx, `
		UPDATE items SET available_quantity = available_quantity + $2, updated_at = now()
		WHERE id = $1 AND available_quantity + $2 BETWEEN 0 AND total_quantity
		RETURNING available_quantity`, id, delta).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: item %d cannot move available_quantity by %d", rental.ErrConstraintViolation, id, delta)
	}
	return available, mapErr(err, "item", id)
}

func (s *Store) SetTotals(ctx context.Context, id int64, total, available int) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE items SET total_quantity = $2, available_quantity = $3, updated_at = now()
		WHERE id = $1`, id, total, available)
	if err != nil {
		return mapErr(err, "item", id)
	}
	return expectOne(tag, "item", id)
}

func (s *Store) InsertItem(ctx context.Context, it rental.Item) (int64, error) {
	var id int64
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO items (name, description, category_id, price_per_day, image_url, specifications,
		                   total_quantity, available_quantity)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		it.Name, it.Description, it.CategoryID, it.PricePerDay, it.ImageURL, it.Specifications,
		it.TotalQuantity, it.AvailableQuantity).Scan(&id)
	return id, mapErr(err, "item", it.Name)
}

func (s *Store) UpdateItemDetails(ctx context.Context, it rental.Item) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE items SET name=$2, description=$3, category_id=$4, price_per_day=$5, image_url=$6,
		       specifications=$7, updated_at=now()
		WHERE id=$1`,
		it.ID, it.Name, it.Description, it.CategoryID, it.PricePerDay, it.ImageURL, it.Specifications)
	if err != nil {
		return mapErr(err, "item", it.ID)
	}
	return expectOne(tag, "item", it.ID)
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return mapErr(err, "item", id)
	}
	return expectOne(tag, "item", id)
}
