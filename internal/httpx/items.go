package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"time"
)

type itemReq struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name" validate:"required,max=200"`
	Description    string          `json:"description"`
	CategoryID     *int64          `json:"category_id" validate:"omitempty,gt=0"`
	PricePerDay    decimal.Decimal `json:"price_per_day"`
	ImageURL       string          `json:"image_url" validate:"omitempty,max=500"`
	Specifications string          `json:"specifications"`
	TotalQuantity  int             `json:"total_quantity" validate:"gte=0"`
	// diabaikan: available selalu dihitung ulang
	AvailableQuantity *int `json:"available_quantity"`
}

func (req itemReq) item() rental.Item {
	return rental.Item{
		ID:             req.ID,
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		PricePerDay:    req.PricePerDay,
		ImageURL:       req.ImageURL,
		Specifications: req.Specifications,
		TotalQuantity:  req.TotalQuantity,
	}
}

func (a *API) listItems(w http.ResponseWriter, r *http.Request) {
	f, err := itemFilter(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache per versi katalog; versi naik tiap ada mutasi
	key := fmt.Sprintf(redisx.KeyCatalogItems, a.Cache.Version(ctx, redisx.KeyCatalogVersion), r.URL.Query().Encode())
	var items []rental.ItemView
	if a.Cache.GetJSON(ctx, key, &items) {
		ok(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	items, err = a.Engine.Items.ListItemsWithCategory(ctx, f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Cache.SetJSON(ctx, key, items, redisx.TTLCatalogCache)
	ok(w, http.StatusOK, map[string]any{"items": items})
}

func itemFilter(r *http.Request) (rental.ItemFilter, error) {
	q := r.URL.Query()
	f := rental.ItemFilter{Search: q.Get("search")}
	if s := q.Get("category_id"); s != "" {
		id, err := parseID(s, "category_id")
		if err != nil {
			return f, err
		}
		f.CategoryID = &id
	}
	for name, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		if q.Get(name) == "" {
			continue
		}
		d, err := decimal.NewFromString(q.Get(name))
		if err != nil {
			return f, fmt.Errorf("%w: %s must be a number", rental.ErrValidation, name)
		}
		*dst = &d
	}
	if s := q.Get("available_only"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("%w: available_only must be a boolean", rental.ErrValidation)
		}
		f.AvailableOnly = b
	}
	return f, nil
}

func (a *API) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := a.Engine.Items.GetItem(ctx, id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"item": it})
}

// itemAvailability: snapshot projector (stok tersimpan vs hitung ulang), fallback ke DB.
func (a *API) itemAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyItemAvailability, id)
	var d rental.ItemDrift
	if a.Cache.GetJSON(ctx, key, &d) {
		ok(w, http.StatusOK, map[string]any{"availability": d, "drifted": d.Drifted(), "cached": true})
		return
	}
	d, err = a.Stats.ItemDrift(ctx, id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Cache.SetJSON(ctx, key, d, redisx.TTLAvailability)
	ok(w, http.StatusOK, map[string]any{"availability": d, "drifted": d.Drifted(), "cached": false})
}

func (a *API) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := a.Engine.CreateItem(ctx, req.item())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.audit(r, "item.create", zap.Int64("item_id", id))
	a.invalidate(context.WithoutCancel(ctx))
	ok(w, http.StatusCreated, map[string]any{"item_id": id, "message": "Item created successfully"})
}

// updateItem: total_quantity memicu hitung ulang available_quantity.
func (a *API) updateItem(w http.ResponseWriter, r *http.Request) {
	var req itemReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.ID <= 0 {
		a.writeError(w, r, fmt.Errorf("%w: id required", rental.ErrValidation))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	it, err := a.Engine.UpdateItem(ctx, req.item())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.audit(r, "item.update", zap.Int64("item_id", it.ID), zap.Int("total_quantity", it.TotalQuantity))
	a.invalidate(context.WithoutCancel(ctx))
	ok(w, http.StatusOK, map[string]any{"item": it, "message": "Item updated successfully"})
}

func (a *API) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := a.Engine.DeleteItem(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.audit(r, "item.delete", zap.Int64("item_id", id))
	a.invalidate(context.WithoutCancel(ctx))
	ok(w, http.StatusOK, map[string]any{"message": "Item deleted successfully"})
}
