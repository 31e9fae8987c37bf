package store

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"time"
)

func (s *Store) DashboardStats(ctx context.Context) (rental.DashboardStats, error) {
	var st rental.DashboardStats
	err := s.q(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM items),
		       (SELECT COUNT(*) FROM rentals),
		       (SELECT COUNT(*) FROM users WHERE role = 'customer'),
		       (SELECT COALESCE(SUM(total_amount), 0) FROM rentals
		         WHERE status IN ('confirmed', 'ongoing', 'returned'))`).
		Scan(&st.TotalItems, &st.TotalRentals, &st.TotalCustomers, &st.TotalRevenue)
	if err != nil {
		return st, err
	}

	if st.RecentRentals, err = s.listOrderViews(ctx, `ORDER BY r.created_at DESC, r.id DESC LIMIT 5`); err != nil {
		return st, err
	}
	if st.RecentFeedback, err = s.ListFeedback(ctx, 5); err != nil {
		return st, err
	}
	st.GeneratedAt = time.Now().UTC()
	return st, nil
}

// ItemDrift recomputes expected availability from the ledger.
func (s *Store) ItemDrift(ctx context.Context, itemID int64) (rental.ItemDrift, error) {
	d := rental.ItemDrift{ItemID: itemID}
	err := s.q(ctx).QueryRow(ctx, `
		SELECT i.total_quantity, i.available_quantity,
		       i.total_quantity - COALESCE((SELECT SUM(r.quantity) FROM rentals r
		                                    WHERE r.item_id = i.id
		                                      AND r.status = ANY($2)), 0)
		FROM items i WHERE i.id = $1`, itemID, activeStatuses()).Scan(&d.Total, &d.Available, &d.Expected)
	return d, mapErr(err, "item", itemID)
}
