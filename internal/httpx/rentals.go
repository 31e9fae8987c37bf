package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const idemPending = "pending"

type createRentalReq struct {
	CustomerName  string `json:"customerName" validate:"required,max=100"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone" validate:"omitempty,max=30"`
	ItemID        int64  `json:"itemId" validate:"required,gt=0"`
	RentalDate    string `json:"rentalDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"returnDate" validate:"required,datetime=2006-01-02"`
	Quantity      *int   `json:"quantity"`
}

type updateRentalReq struct {
	ID               int64  `json:"id" validate:"required,gt=0"`
	Status           string `json:"status" validate:"required,oneof=pending confirmed ongoing returned cancelled"`
	ActualReturnDate string `json:"actual_return_date" validate:"omitempty,datetime=2006-01-02"` // kosong/null = hari ini
}

func (a *API) createRental(w http.ResponseWriter, r *http.Request) {
	var req createRentalReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	// sudah lolos validator
	rentalDate, _ := time.Parse(rental.DateLayout, req.RentalDate)
	returnDate, _ := time.Parse(rental.DateLayout, req.ReturnDate)
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Idempotency-Key opsional: request ulang dapat rental_id yang sama
	idem := a.idem()
	var idemKey string
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemRentalCreate, k)
		// TTL pendek: kalau Set final gagal, marker pending tidak nyangkut 24 jam
		claimed, err := idem.Claim(ctx, idemKey, idemPending, redisx.TTLIdemPending)
		if err != nil {
			idemKey = "" // redis bermasalah: lanjut tanpa idempotency
		} else if !claimed {
			if v, found := idem.Get(ctx, idemKey); found && v != idemPending {
				id, _ := strconv.ParseInt(v, 10, 64)
				ok(w, http.StatusOK, map[string]any{"rental_id": id, "idempotent": true})
				return
			}
			a.writeError(w, r, errRequestInProgress)
			return
		}
	}

	id, err := a.Engine.CreateRental(ctx, rental.CreateRentalInput{
		Customer:   rental.CustomerInfo{Name: req.CustomerName, Email: req.CustomerEmail, Phone: req.CustomerPhone},
		ItemID:     req.ItemID,
		RentalDate: rentalDate,
		ReturnDate: returnDate,
		Quantity:   qty,
	})
	if err != nil {
		if idemKey != "" {
			idem.Del(context.WithoutCancel(ctx), idemKey)
		}
		a.writeError(w, r, err)
		return
	}
	if idemKey != "" {
		idem.Set(context.WithoutCancel(ctx), idemKey, strconv.FormatInt(id, 10), redisx.TTLIdempotency)
	}
	a.invalidate(context.WithoutCancel(ctx))

	ok(w, http.StatusCreated, map[string]any{"rental_id": id, "message": "Rental request submitted successfully"})
}

func (a *API) updateRentalStatus(w http.ResponseWriter, r *http.Request) {
	var req updateRentalReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	var actual *time.Time
	if req.ActualReturnDate != "" {
		d, _ := time.Parse(rental.DateLayout, req.ActualReturnDate)
		actual = &d
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := a.Engine.UpdateRentalStatus(ctx, req.ID, rental.Status(req.Status), actual); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.audit(r, "rental.status", zap.Int64("rental_id", req.ID), zap.String("status", req.Status))
	a.invalidate(context.WithoutCancel(ctx), req.ID)
	ok(w, http.StatusOK, map[string]any{"message": "Rental updated successfully"})
}

func (a *API) deleteRental(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := a.Engine.DeleteRental(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.audit(r, "rental.delete", zap.Int64("rental_id", id))
	a.invalidate(context.WithoutCancel(ctx), id)
	ok(w, http.StatusOK, map[string]any{"message": "Rental deleted successfully"})
}

func (a *API) listRentals(w http.ResponseWriter, r *http.Request) {
	f, err := orderFilter(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rentals, err := a.Engine.Ledger.ListOrders(ctx, f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"rentals": rentals})
}

func orderFilter(r *http.Request) (rental.OrderFilter, error) {
	q := r.URL.Query()
	f := rental.OrderFilter{Search: q.Get("search"), Limit: 100}
	if s := q.Get("status"); s != "" {
		st, valid := rental.ParseStatus(s)
		if !valid {
			return f, fmt.Errorf("%w: unknown status %q", rental.ErrValidation, s)
		}
		f.Status = &st
	}
	for name, dst := range map[string]**int64{"item_id": &f.ItemID, "customer_id": &f.CustomerID} {
		if q.Get(name) == "" {
			continue
		}
		id, err := parseID(q.Get(name), name)
		if err != nil {
			return f, err
		}
		*dst = &id
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if q.Get(name) == "" {
			continue
		}
		n, err := strconv.Atoi(q.Get(name))
		if err != nil || n < 0 {
			return f, fmt.Errorf("%w: %s must be a non-negative integer", rental.ErrValidation, name)
		}
		*dst = n
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return f, nil
}

func (a *API) getRental(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyRentalStatus, id)
	var o rental.Order
	if a.Cache.GetJSON(ctx, key, &o) {
		ok(w, http.StatusOK, map[string]any{"rental": o})
		return
	}

	// 2) fallback DB
	o, err = a.Engine.Ledger.GetOrder(ctx, id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Cache.SetJSON(ctx, key, o, redisx.TTLStatusCache)
	ok(w, http.StatusOK, map[string]any{"rental": o})
}
