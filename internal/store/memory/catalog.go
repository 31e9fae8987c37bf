package memory

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/shopspring/decimal"
	"sort"
)

func (s *Store) ListCategories(ctx context.Context) ([]rental.Category, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	out := make([]rental.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) InsertCategory(ctx context.Context, c rental.Category) (int64, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	c.ID = s.nextID()
	c.CreatedAt = s.now()
	s.categories[c.ID] = c
	return c.ID, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c rental.Category) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	cur, ok := s.categories[c.ID]
	if !ok {
		return notFound("category", c.ID)
	}
	cur.Name, cur.Description = c.Name, c.Description
	s.categories[c.ID] = cur
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.categories[id]; !ok {
		return notFound("category", id)
	}
	delete(s.categories, id)
	for iid, it := range s.items {
		if it.CategoryID != nil && *it.CategoryID == id {
			it.CategoryID = nil
			s.items[iid] = it
		}
	}
	return nil
}

func (s *Store) InsertFeedback(ctx context.Context, f rental.Feedback) (int64, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.users[f.CustomerID]; !ok {
		return 0, violation("customer %d does not exist", f.CustomerID)
	}
	if f.ItemID != nil {
		if _, ok := s.items[*f.ItemID]; !ok {
			return 0, violation("item %d does not exist", *f.ItemID)
		}
	}
	if f.Rating < 1 || f.Rating > 5 {
		return 0, violation("rating %d out of range", f.Rating)
	}
	f.ID = s.nextID()
	f.CreatedAt = s.now()
	s.feedback[f.ID] = f
	return f.ID, nil
}

func (s *Store) ListFeedback(ctx context.Context, limit int) ([]rental.Feedback, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	return s.listFeedback(limit), nil
}

func (s *Store) listFeedback(limit int) []rental.Feedback {
	out := make([]rental.Feedback, 0, len(s.feedback))
	for _, f := range s.feedback {
		if u, ok := s.users[f.CustomerID]; ok {
			f.CustomerName, f.CustomerEmail = u.FullName, u.Email
		}
		if f.ItemID != nil {
			if it, ok := s.items[*f.ItemID]; ok {
				name := it.Name
				f.ItemName = &name
			}
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) FeedbackSummary(ctx context.Context) (rental.FeedbackSummary, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	var sum rental.FeedbackSummary
	total := 0
	for _, f := range s.feedback {
		total += f.Rating
		sum.TotalFeedback++
	}
	if sum.TotalFeedback > 0 {
		sum.AvgRating = float64(total) / float64(sum.TotalFeedback)
	}
	return sum, nil
}

func (s *Store) DeleteFeedback(ctx context.Context, id int64) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.feedback[id]; !ok {
		return notFound("feedback", id)
	}
	delete(s.feedback, id)
	return nil
}

func (s *Store) InsertInquiry(ctx context.Context, q rental.Inquiry) (int64, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if q.Status == "" {
		q.Status = rental.InquiryNew
	}
	q.ID = s.nextID()
	q.CreatedAt = s.now()
	s.inquiries[q.ID] = q
	return q.ID, nil
}

func (s *Store) ListInquiries(ctx context.Context, status *rental.InquiryStatus) ([]rental.Inquiry, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	out := make([]rental.Inquiry, 0, len(s.inquiries))
	for _, q := range s.inquiries {
		if status != nil && q.Status != *status {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) CountInquiries(ctx context.Context) (rental.InquiryCounts, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	var c rental.InquiryCounts
	for _, q := range s.inquiries {
		c.Total++
		switch q.Status {
		case rental.InquiryNew:
			c.New++
		case rental.InquiryRead:
			c.Read++
		case rental.InquiryReplied:
			c.Replied++
		}
	}
	return c, nil
}

func (s *Store) SetInquiryStatus(ctx context.Context, id int64, st rental.InquiryStatus) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	q, ok := s.inquiries[id]
	if !ok {
		return notFound("inquiry", id)
	}
	if !st.Valid() {
		return violation("unknown inquiry status %q", st)
	}
	q.Status = st
	s.inquiries[id] = q
	return nil
}

func (s *Store) DeleteInquiry(ctx context.Context, id int64) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.inquiries[id]; !ok {
		return notFound("inquiry", id)
	}
	delete(s.inquiries, id)
	return nil
}

func (s *Store) DashboardStats(ctx context.Context) (rental.DashboardStats, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	st := rental.DashboardStats{
		TotalItems:   len(s.items),
		TotalRentals: len(s.orders),
		TotalRevenue: decimal.Zero,
		GeneratedAt:  s.now().UTC(),
	}
	for _, u := range s.users {
		if u.Role == rental.RoleCustomer {
			st.TotalCustomers++
		}
	}
	views := make([]rental.OrderView, 0, len(s.orders))
	for _, o := range s.orders {
		switch o.Status {
		case rental.StatusConfirmed, rental.StatusOngoing, rental.StatusReturned:
			st.TotalRevenue = st.TotalRevenue.Add(o.TotalAmount)
		}
		views = append(views, s.view(o))
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
	if len(views) > 5 {
		views = views[:5]
	}
	st.RecentRentals = views
	st.RecentFeedback = s.listFeedback(5)
	return st, nil
}

func (s *Store) ItemDrift(ctx context.Context, itemID int64) (rental.ItemDrift, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	it, ok := s.items[itemID]
	if !ok {
		return rental.ItemDrift{}, notFound("item", itemID)
	}
	d := rental.ItemDrift{ItemID: itemID, Total: it.TotalQuantity, Available: it.AvailableQuantity, Expected: it.TotalQuantity}
	for _, o := range s.orders {
		if o.ItemID == itemID && o.Status.IsActive() {
			d.Expected -= o.Quantity
		}
	}
	return d, nil
}
