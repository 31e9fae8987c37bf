package store

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/jackc/pgx/v5"
	"time"
)

const orderColumns = `r.id, r.customer_id, r.item_id, r.rental_date, r.return_date, r.actual_return_date,
	r.quantity, r.total_amount, r.status, r.created_at`

func scanOrder(row pgx.Row, extra ...any) (rental.Order, error) {
	var o rental.Order
	var status string
	dest := []any{&o.ID, &o.CustomerID, &o.ItemID, &o.RentalDate, &o.ReturnDate, &o.ActualReturnDate,
		&o.Quantity, &o.TotalAmount, &status, &o.CreatedAt}
	err := row.Scan(append(dest, extra...)...)
	o.Status = rental.Status(status)
	return o, err
}

func (s *Store) InsertOrder(ctx context.Context, o rental.Order) (int64, error) {
	var id int64
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO rentals (customer_id, item_id, rental_date, return_date, quantity, total_amount, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		o.CustomerID, o.ItemID, o.RentalDate, o.ReturnDate, o.Quantity, o.TotalAmount, string(o.Status)).Scan(&id)
	return id, mapErr(err, "rental for item", o.ItemID)
}

func (s *Store) GetOrder(ctx context.Context, id int64) (rental.Order, error) {
	o, err := scanOrder(s.q(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM rentals r WHERE r.id=$1`, id))
	return o, mapErr(err, "rental", id)
}

func (s *Store) GetOrderForUpdate(ctx context.Context, id int64) (rental.Order, error) {
	o, err := scanOrder(s.q(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM rentals r WHERE r.id=$1 FOR UPDATE`, id))
	return o, mapErr(err, "rental", id)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, from, to rental.Status, actualReturn *time.Time) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE rentals SET status = $3, actual_return_date = COALESCE($4, actual_return_date)
		WHERE id = $1 AND status = $2`, id, string(from), string(to), actualReturn)
	if err != nil {
		return mapErr(err, "rental", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rental %d is no longer %s", rental.ErrConstraintViolation, id, from)
	}
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM rentals WHERE id=$1`, id)
	if err != nil {
		return mapErr(err, "rental", id)
	}
	return expectOne(tag, "rental", id)
}

const orderViewFrom = `FROM rentals r
	JOIN items i ON i.id = r.item_id
	JOIN users u ON u.id = r.customer_id `

func (s *Store) ListOrders(ctx context.Context, f rental.OrderFilter) ([]rental.OrderView, error) {
	clause, args := buildOrderListQuery(f)
	return s.listOrderViews(ctx, clause, args...)
}

func (s *Store) listOrderViews(ctx context.Context, clause string, args ...any) ([]rental.OrderView, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT `+orderColumns+`, i.name, i.price_per_day, u.full_name,
		COALESCE(u.email, ''), u.phone `+orderViewFrom+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []rental.OrderView{}
	for rows.Next() {
		var v rental.OrderView
		v.Order, err = scanOrder(rows, &v.ItemName, &v.PricePerDay, &v.CustomerName, &v.CustomerEmail, &v.CustomerPhone)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) CountActiveByItem(ctx context.Context, itemID int64) (int, error) {
	var n int
	err := s.q(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM rentals
		WHERE item_id = $1 AND status = ANY($2)`, itemID, activeStatuses()).Scan(&n)
	return n, err
}

func activeStatuses() []string {
	out := make([]string, 0, len(rental.ActiveStatuses))
	for _, st := range rental.ActiveStatuses {
		out = append(out, string(st))
	}
	return out
}
