package store

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
)

func (s *Store) InsertFeedback(ctx context.Context, f rental.Feedback) (int64, error) {
	var id int64
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO feedback (customer_id, item_id, rating, message)
		VALUES ($1, $2, $3, $4) RETURNING id`, f.CustomerID, f.ItemID, f.Rating, f.Message).Scan(&id)
	return id, mapErr(err, "feedback for customer", f.CustomerID)
}

func (s *Store) ListFeedback(ctx context.Context, limit int) ([]rental.Feedback, error) {
	sql := `SELECT f.id, f.customer_id, f.item_id, f.rating, f.message, f.created_at,
	               u.full_name, COALESCE(u.email, ''), i.name
	        FROM feedback f
	        JOIN users u ON u.id = f.customer_id
	        LEFT JOIN items i ON i.id = f.item_id
	        ORDER BY f.created_at DESC, f.id DESC`
	var args []any
	if limit > 0 {
		sql += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := s.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []rental.Feedback{}
	for rows.Next() {
		var f rental.Feedback
		if err := rows.Scan(&f.ID, &f.CustomerID, &f.ItemID, &f.Rating, &f.Message, &f.CreatedAt,
			&f.CustomerName, &f.CustomerEmail, &f.ItemName); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) FeedbackSummary(ctx context.Context) (rental.FeedbackSummary, error) {
	var sum rental.FeedbackSummary
	err := s.q(ctx).QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM feedback`).Scan(&sum.AvgRating, &sum.TotalFeedback)
	return sum, err
}

func (s *Store) DeleteFeedback(ctx context.Context, id int64) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "feedback", id)
	}
	return expectOne(tag, "feedback", id)
}
