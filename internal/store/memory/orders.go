package memory

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"sort"
	"strings"
	"time"
)

func (s *Store) InsertOrder(ctx context.Context, o rental.Order) (int64, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.items[o.ItemID]; !ok {
		return 0, violation("item %d does not exist", o.ItemID)
	}
	if _, ok := s.users[o.CustomerID]; !ok {
		return 0, violation("customer %d does not exist", o.CustomerID)
	}
	if o.Quantity < 1 || !o.ReturnDate.After(o.RentalDate) {
		return 0, violation("rental quantity or dates out of range")
	}
	if _, ok := rental.ParseStatus(string(o.Status)); !ok {
		return 0, violation("unknown status %q", o.Status)
	}
	o.ID = s.nextID()
	o.CreatedAt = s.now()
	s.orders[o.ID] = o
	return o.ID, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (rental.Order, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	o, ok := s.orders[id]
	if !ok {
		return rental.Order{}, notFound("rental", id)
	}
	return o, nil
}

func (s *Store) GetOrderForUpdate(ctx context.Context, id int64) (rental.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, from, to rental.Status, actualReturn *time.Time) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	o, ok := s.orders[id]
	if !ok {
		return notFound("rental", id)
	}
	if o.Status != from {
		return violation("rental %d is %s, expected %s", id, o.Status, from)
	}
	o.Status = to
	if actualReturn != nil {
		d := *actualReturn
		o.ActualReturnDate = &d
	}
	s.orders[id] = o
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.orders[id]; !ok {
		return notFound("rental", id)
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) view(o rental.Order) rental.OrderView {
	v := rental.OrderView{Order: o}
	if it, ok := s.items[o.ItemID]; ok {
		v.ItemName, v.PricePerDay = it.Name, it.PricePerDay
	}
	if u, ok := s.users[o.CustomerID]; ok {
		v.CustomerName, v.CustomerEmail, v.CustomerPhone = u.FullName, u.Email, u.Phone
	}
	return v
}

func (s *Store) ListOrders(ctx context.Context, f rental.OrderFilter) ([]rental.OrderView, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]rental.OrderView, 0)
	for _, o := range s.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.ItemID != nil && o.ItemID != *f.ItemID {
			continue
		}
		if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
			continue
		}
		v := s.view(o)
		if search != "" && !strings.Contains(strings.ToLower(v.CustomerName), search) &&
			!strings.Contains(strings.ToLower(v.ItemName), search) {
			continue
		}
		out = append(out, v)
	}
	// terbaru dulu
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []rental.OrderView{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) CountActiveByItem(ctx context.Context, itemID int64) (int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	n := 0
	for _, o := range s.orders {
		if o.ItemID == itemID && o.Status.IsActive() {
			n++
		}
	}
	return n, nil
}
