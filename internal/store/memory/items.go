package memory

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"sort"
	"strings"
)

func (s *Store) GetItem(ctx context.Context, id int64) (rental.Item, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	it, ok := s.items[id]
	if !ok {
		return rental.Item{}, notFound("item", id)
	}
	return it, nil
}

// GetItemForUpdate: WithTx sudah memegang lock global.
func (s *Store) GetItemForUpdate(ctx context.Context, id int64) (rental.Item, error) {
	return s.GetItem(ctx, id)
}

func (s *Store) ListItemsWithCategory(ctx context.Context, f rental.ItemFilter) ([]rental.ItemView, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]rental.ItemView, 0, len(s.items))
	for _, it := range s.items {
		if f.CategoryID != nil && (it.CategoryID == nil || *it.CategoryID != *f.CategoryID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		if f.MinPrice != nil && it.PricePerDay.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && it.PricePerDay.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.AvailableOnly && it.AvailableQuantity <= 0 {
			continue
		}
		v := rental.ItemView{Item: it}
		if it.CategoryID != nil {
			if c, ok := s.categories[*it.CategoryID]; ok {
				name := c.Name
				v.CategoryName = &name
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AdjustAvailability(ctx context.Context, id int64, delta int) (int, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	it, ok := s.items[id]
	if !ok {
		return 0, violation("item %d does not exist", id)
	}
	next := it.AvailableQuantity + delta
	if next < 0 || next > it.TotalQuantity {
		return 0, violation("available_quantity %d out of range [0, %d]", next, it.TotalQuantity)
	}
	it.AvailableQuantity = next
	it.UpdatedAt = s.now()
	s.items[id] = it
	return next, nil
}

func (s *Store) SetTotals(ctx context.Context, id int64, total, available int) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	it, ok := s.items[id]
	if !ok {
		return notFound("item", id)
	}
	if total < 0 || available < 0 || available > total {
		return violation("available_quantity %d out of range [0, %d]", available, total)
	}
	it.TotalQuantity, it.AvailableQuantity = total, available
	it.UpdatedAt = s.now()
	s.items[id] = it
	return nil
}

func (s *Store) checkCategory(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := s.categories[*id]; !ok {
		return violation("category %d does not exist", *id)
	}
	return nil
}

func (s *Store) InsertItem(ctx context.Context, it rental.Item) (int64, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if err := s.checkCategory(it.CategoryID); err != nil {
		return 0, err
	}
	if it.TotalQuantity < 0 || it.AvailableQuantity < 0 || it.AvailableQuantity > it.TotalQuantity {
		return 0, violation("available_quantity %d out of range [0, %d]", it.AvailableQuantity, it.TotalQuantity)
	}
	it.ID = s.nextID()
	it.CreatedAt = s.now()
	it.UpdatedAt = it.CreatedAt
	s.items[it.ID] = it
	return it.ID, nil
}

func (s *Store) UpdateItemDetails(ctx context.Context, in rental.Item) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	it, ok := s.items[in.ID]
	if !ok {
		return notFound("item", in.ID)
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return err
	}
	it.Name, it.Description, it.CategoryID = in.Name, in.Description, in.CategoryID
	it.PricePerDay, it.ImageURL, it.Specifications = in.PricePerDay, in.ImageURL, in.Specifications
	it.UpdatedAt = s.now()
	s.items[in.ID] = it
	return nil
}

// DeleteItem cascades to the item's rentals and detaches its feedback.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.items[id]; !ok {
		return notFound("item", id)
	}
	delete(s.items, id)
	for oid, o := range s.orders {
		if o.ItemID == id {
			delete(s.orders, oid)
		}
	}
	for fid, f := range s.feedback {
		if f.ItemID != nil && *f.ItemID == id {
			f.ItemID = nil
			s.feedback[fid] = f
		}
	}
	return nil
}
