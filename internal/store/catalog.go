package store

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
)

func (s *Store) ListCategories(ctx context.Context) ([]rental.Category, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []rental.Category{}
	for rows.Next() {
		var c rental.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) InsertCategory(ctx context.Context, c rental.Category) (int64, error) {
	var id int64
	err := s.q(ctx).QueryRow(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`, c.Name, c.Description).Scan(&id)
	return id, mapErr(err, "category", c.Name)
}

func (s *Store) UpdateCategory(ctx context.Context, c rental.Category) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE categories SET name = $2, description = $3 WHERE id = $1`, c.ID, c.Name, c.Description)
	if err != nil {
		return mapErr(err, "category", c.ID)
	}
	return expectOne(tag, "category", c.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "category", id)
	}
	return expectOne(tag, "category", id)
}
