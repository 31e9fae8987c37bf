package rental_test

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/ariefcatur/go-tool-rental/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"math/rand"
	"sync"
	"testing"
	"time"
)

var today = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []rental.Envelope
}

func (r *recorder) PublishEvent(_ context.Context, env rental.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, env)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func newEngine(t *testing.T) (*rental.Engine, *memory.Store, *recorder) {
	t.Helper()
	st := memory.New()
	rec := &recorder{}
	e := &rental.Engine{
		Items:     st,
		Ledger:    st,
		Customers: st,
		Tx:        st,
		Events:    rec,
		Producer:  "test",
		Now:       func() time.Time { return today },
	}
	return e, st, rec
}

func seedItem(t *testing.T, st *memory.Store, total int, price string) int64 {
	t.Helper()
	id, err := st.InsertItem(context.Background(), rental.Item{
		Name:              "Hammer Drill",
		PricePerDay:       decimal.RequireFromString(price),
		TotalQuantity:     total,
		AvailableQuantity: total,
	})
	require.NoError(t, err)
	return id
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(rental.DateLayout, s)
	require.NoError(t, err)
	return d
}

func booking(t *testing.T, itemID int64, qty int) rental.CreateRentalInput {
	return rental.CreateRentalInput{
		Customer:   rental.CustomerInfo{Name: "Jane Doe", Email: "jane@example.com", Phone: "0812"},
		ItemID:     itemID,
		RentalDate: day(t, "2026-03-01"),
		ReturnDate: day(t, "2026-03-04"),
		Quantity:   qty,
	}
}

func available(t *testing.T, st *memory.Store, itemID int64) int {
	t.Helper()
	it, err := st.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	return it.AvailableQuantity
}

func requireConsistent(t *testing.T, st *memory.Store, itemID int64) {
	t.Helper()
	d, err := st.ItemDrift(context.Background(), itemID)
	require.NoError(t, err)
	require.False(t, d.Drifted(), "available=%d expected=%d", d.Available, d.Expected)
}

func TestCreateRental_DebitsAndPrices(t *testing.T) {
	ctx := context.Background()
	e, st, rec := newEngine(t)
	itemID := seedItem(t, st, 5, "12.50")

	id, err := e.CreateRental(ctx, booking(t, itemID, 2))
	require.NoError(t, err)

	o, err := st.GetOrder(ctx, id)
	require.NoError(t, err)
	require.Equal(t, rental.StatusPending, o.Status)
	require.Equal(t, 2, o.Quantity)
	require.Equal(t, "75.00", o.TotalAmount.StringFixed(2)) // 3 hari * 12.50 * 2
	require.Nil(t, o.ActualReturnDate)
	require.Equal(t, 3, available(t, st, itemID))
	requireConsistent(t, st, itemID)

	c, err := st.Customer(ctx, o.CustomerID)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", c.Email)
	require.Equal(t, "Jane Doe", c.FullName)
	require.Equal(t, rental.RoleCustomer, c.Role)
	require.Regexp(t, `^jane_doe_`, c.Username)

	require.Equal(t, []string{rental.EventRentalCreated}, rec.types())
	require.Equal(t, itemID, rec.events[0].ItemID)
	require.NotEmpty(t, rec.events[0].EventID)
}

func TestCreateRental_Validation(t *testing.T) {
	ctx := context.Background()
	e, st, rec := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	bad := []func(in *rental.CreateRentalInput){
		func(in *rental.CreateRentalInput) { in.Quantity = 0 },
		func(in *rental.CreateRentalInput) { in.ReturnDate = in.RentalDate },
		func(in *rental.CreateRentalInput) { in.ReturnDate = in.RentalDate.AddDate(0, 0, -1) },
		func(in *rental.CreateRentalInput) { in.Customer.Email = " " },
		func(in *rental.CreateRentalInput) { in.Customer.Name = "" },
		func(in *rental.CreateRentalInput) { in.ItemID = 0 },
	}
	for i, mutate := range bad {
		in := booking(t, itemID, 1)
		mutate(&in)
		_, err := e.CreateRental(ctx, in)
		require.ErrorIs(t, err, rental.ErrValidation, "case %d", i)
	}
	require.Equal(t, 5, available(t, st, itemID))
	require.Empty(t, rec.types())
}

func TestCreateRental_InsufficientLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	e, st, rec := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	_, err := e.CreateRental(ctx, booking(t, itemID, 6))
	require.ErrorIs(t, err, rental.ErrInsufficientInventory)

	_, err = e.CreateRental(ctx, booking(t, 999, 1))
	require.ErrorIs(t, err, rental.ErrInsufficientInventory)

	require.Equal(t, 5, available(t, st, itemID))
	orders, err := st.ListOrders(ctx, rental.OrderFilter{})
	require.NoError(t, err)
	require.Empty(t, orders)

	// customer yang dibuat di dalam tx ikut di-rollback
	stats, err := st.DashboardStats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.TotalCustomers)
	require.Empty(t, rec.types())
}

func TestCreateRental_ReusesCustomerByEmail(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	in := booking(t, itemID, 1)
	id1, err := e.CreateRental(ctx, in)
	require.NoError(t, err)
	in.Customer.Email = "  JANE@example.com "
	in.Customer.Name = "Jane D."
	id2, err := e.CreateRental(ctx, in)
	require.NoError(t, err)

	o1, _ := st.GetOrder(ctx, id1)
	o2, _ := st.GetOrder(ctx, id2)
	require.Equal(t, o1.CustomerID, o2.CustomerID)
}

func TestCreateRental_NoOversellUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 3, "10")

	in := booking(t, itemID, 2)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.CreateRental(ctx, in)
		}(i)
	}
	wg.Wait()

	ok, short := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, rental.ErrInsufficientInventory):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, short)
	require.Equal(t, 1, available(t, st, itemID))
	requireConsistent(t, st, itemID)
}

func TestCreateRental_ManyConcurrentSingleUnits(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	in := booking(t, itemID, 1)
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.CreateRental(ctx, in); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 5, succeeded)
	require.Zero(t, available(t, st, itemID))
	requireConsistent(t, st, itemID)
}

// failingDebit simulates a concurrent booking winning the conditional update
// after our availability read.
type failingDebit struct{ *memory.Store }

func (f failingDebit) AdjustAvailability(ctx context.Context, id int64, delta int) (int, error) {
	if delta < 0 {
		return 0, rental.ErrConstraintViolation
	}
	return f.Store.AdjustAvailability(ctx, id, delta)
}

func TestCreateRental_RollsBackOrderWhenDebitFails(t *testing.T) {
	ctx := context.Background()
	e, st, rec := newEngine(t)
	e.Items = failingDebit{st}
	itemID := seedItem(t, st, 5, "10")

	_, err := e.CreateRental(ctx, booking(t, itemID, 2))
	require.ErrorIs(t, err, rental.ErrInsufficientInventory)

	orders, err := st.ListOrders(ctx, rental.OrderFilter{})
	require.NoError(t, err)
	require.Empty(t, orders)
	require.Equal(t, 5, available(t, st, itemID))
	require.Empty(t, rec.types())
}

func TestCreateRental_CompletesAfterClientCancel(t *testing.T) {
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.CreateRental(ctx, booking(t, itemID, 1))
	require.NoError(t, err)
	require.Equal(t, 4, available(t, st, itemID))
}

func TestUpdateRentalStatus_ReturnCreditsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	e, st, rec := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	id, err := e.CreateRental(ctx, booking(t, itemID, 2))
	require.NoError(t, err)
	require.Equal(t, 3, available(t, st, itemID))

	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusConfirmed, nil))
	require.Equal(t, 3, available(t, st, itemID))
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusOngoing, nil))
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusReturned, nil))
	require.Equal(t, 5, available(t, st, itemID))

	// ulang: no-op
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusReturned, nil))
	require.Equal(t, 5, available(t, st, itemID))
	requireConsistent(t, st, itemID)

	o, err := st.GetOrder(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, o.ActualReturnDate)
	require.Equal(t, rental.DateOnly(today), *o.ActualReturnDate)

	require.Equal(t, []string{
		rental.EventRentalCreated,
		rental.EventRentalStatusChanged,
		rental.EventRentalStatusChanged,
		rental.EventRentalStatusChanged,
	}, rec.types())
}

func TestUpdateRentalStatus_ExplicitReturnDate(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")
	id, err := e.CreateRental(ctx, booking(t, itemID, 1))
	require.NoError(t, err)
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusConfirmed, nil))
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusOngoing, nil))

	before := day(t, "2026-02-27")
	err = e.UpdateRentalStatus(ctx, id, rental.StatusReturned, &before)
	require.ErrorIs(t, err, rental.ErrValidation)
	require.Equal(t, 4, available(t, st, itemID))

	when := day(t, "2026-03-05")
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusReturned, &when))
	o, _ := st.GetOrder(ctx, id)
	require.Equal(t, when, *o.ActualReturnDate)
	require.Equal(t, 5, available(t, st, itemID))
}

func TestUpdateRentalStatus_Rejections(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")
	id, err := e.CreateRental(ctx, booking(t, itemID, 1))
	require.NoError(t, err)

	require.ErrorIs(t, e.UpdateRentalStatus(ctx, id, rental.StatusOngoing, nil), rental.ErrInvalidTransition)
	require.ErrorIs(t, e.UpdateRentalStatus(ctx, id, rental.StatusReturned, nil), rental.ErrInvalidTransition)
	require.ErrorIs(t, e.UpdateRentalStatus(ctx, id, rental.Status("lost"), nil), rental.ErrValidation)
	require.ErrorIs(t, e.UpdateRentalStatus(ctx, 404, rental.StatusConfirmed, nil), rental.ErrNotFound)

	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusCancelled, nil))
	require.Equal(t, 5, available(t, st, itemID))
	for _, to := range []rental.Status{rental.StatusPending, rental.StatusConfirmed, rental.StatusOngoing, rental.StatusReturned} {
		require.ErrorIs(t, e.UpdateRentalStatus(ctx, id, to, nil), rental.ErrInvalidTransition)
	}
	require.Equal(t, 5, available(t, st, itemID))

	o, _ := st.GetOrder(ctx, id)
	require.Nil(t, o.ActualReturnDate)
}

func TestDeleteRental_RoundTripAndTerminal(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	id, err := e.CreateRental(ctx, booking(t, itemID, 3))
	require.NoError(t, err)
	require.Equal(t, 2, available(t, st, itemID))
	require.NoError(t, e.DeleteRental(ctx, id))
	require.Equal(t, 5, available(t, st, itemID))
	_, err = st.GetOrder(ctx, id)
	require.ErrorIs(t, err, rental.ErrNotFound)

	// cancelled: sudah di-credit, delete tidak credit lagi
	id, err = e.CreateRental(ctx, booking(t, itemID, 2))
	require.NoError(t, err)
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusCancelled, nil))
	require.NoError(t, e.DeleteRental(ctx, id))
	require.Equal(t, 5, available(t, st, itemID))
	requireConsistent(t, st, itemID)

	require.ErrorIs(t, e.DeleteRental(ctx, id), rental.ErrNotFound)
}

func TestDeleteItem_RefusedWhileActive(t *testing.T) {
	ctx := context.Background()
	e, st, rec := newEngine(t)
	itemID := seedItem(t, st, 5, "10")

	id, err := e.CreateRental(ctx, booking(t, itemID, 1))
	require.NoError(t, err)
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusConfirmed, nil))
	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusOngoing, nil))

	require.ErrorIs(t, e.DeleteItem(ctx, itemID), rental.ErrActiveRentalsExist)
	_, err = st.GetItem(ctx, itemID)
	require.NoError(t, err)

	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusCancelled, nil))
	require.NoError(t, e.DeleteItem(ctx, itemID))
	_, err = st.GetItem(ctx, itemID)
	require.ErrorIs(t, err, rental.ErrNotFound)
	// riwayat rental ikut terhapus (cascade)
	_, err = st.GetOrder(ctx, id)
	require.ErrorIs(t, err, rental.ErrNotFound)

	require.ErrorIs(t, e.DeleteItem(ctx, itemID), rental.ErrNotFound)
	require.Contains(t, rec.types(), rental.EventItemDeleted)
}

func TestEditItemTotals_Clamps(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")
	id, err := e.CreateRental(ctx, booking(t, itemID, 2))
	require.NoError(t, err)

	it, err := e.EditItemTotals(ctx, itemID, 8)
	require.NoError(t, err)
	require.Equal(t, 8, it.TotalQuantity)
	require.Equal(t, 6, it.AvailableQuantity)
	requireConsistent(t, st, itemID)

	it, err = e.EditItemTotals(ctx, itemID, 2)
	require.NoError(t, err)
	require.Equal(t, 0, it.AvailableQuantity)

	_, err = e.EditItemTotals(ctx, itemID, -1)
	require.ErrorIs(t, err, rental.ErrValidation)
	_, err = e.EditItemTotals(ctx, 404, 3)
	require.ErrorIs(t, err, rental.ErrNotFound)

	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusCancelled, nil))
	require.Equal(t, 2, available(t, st, itemID))
	requireConsistent(t, st, itemID)
}

func TestReturnAfterFleetShrunkBelowRentedCapsCredit(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	itemID := seedItem(t, st, 5, "10")
	id, err := e.CreateRental(ctx, booking(t, itemID, 2))
	require.NoError(t, err)

	_, err = e.EditItemTotals(ctx, itemID, 1)
	require.NoError(t, err)
	require.Equal(t, 0, available(t, st, itemID))

	require.NoError(t, e.UpdateRentalStatus(ctx, id, rental.StatusCancelled, nil))
	it, _ := st.GetItem(ctx, itemID)
	require.Equal(t, 1, it.AvailableQuantity)
	require.Equal(t, 1, it.TotalQuantity)
}

func TestCreateAndUpdateItem_RecomputeAvailable(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)

	id, err := e.CreateItem(ctx, rental.Item{
		Name: "Ladder", PricePerDay: decimal.RequireFromString("7.5"),
		TotalQuantity: 4, AvailableQuantity: 99,
	})
	require.NoError(t, err)
	require.Equal(t, 4, available(t, st, id))

	_, err = e.CreateRental(ctx, booking(t, id, 1))
	require.NoError(t, err)

	it, err := e.UpdateItem(ctx, rental.Item{
		ID: id, Name: "Ladder 3m", PricePerDay: decimal.RequireFromString("8"),
		TotalQuantity: 6, AvailableQuantity: 0,
	})
	require.NoError(t, err)
	require.Equal(t, "Ladder 3m", it.Name)
	require.Equal(t, 5, it.AvailableQuantity)
	requireConsistent(t, st, id)

	_, err = e.CreateItem(ctx, rental.Item{Name: "", TotalQuantity: 1})
	require.ErrorIs(t, err, rental.ErrValidation)
	_, err = e.CreateItem(ctx, rental.Item{Name: "X", PricePerDay: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, rental.ErrValidation)
	_, err = e.UpdateItem(ctx, rental.Item{ID: 404, Name: "Ghost"})
	require.ErrorIs(t, err, rental.ErrNotFound)
}

// Acak operasi; invariant harus tetap berlaku setelah setiap langkah.
func TestInvariantHoldsUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newEngine(t)
	items := []int64{seedItem(t, st, 4, "10"), seedItem(t, st, 7, "3.25")}
	rng := rand.New(rand.NewSource(42))
	statuses := []rental.Status{rental.StatusConfirmed, rental.StatusOngoing, rental.StatusReturned, rental.StatusCancelled}

	var rentals []int64
	for step := 0; step < 400; step++ {
		itemID := items[rng.Intn(len(items))]
		switch op := rng.Intn(10); {
		case op < 4:
			if id, err := e.CreateRental(ctx, booking(t, itemID, 1+rng.Intn(3))); err == nil {
				rentals = append(rentals, id)
			} else {
				require.ErrorIs(t, err, rental.ErrInsufficientInventory)
			}
		case op < 7 && len(rentals) > 0:
			id := rentals[rng.Intn(len(rentals))]
			err := e.UpdateRentalStatus(ctx, id, statuses[rng.Intn(len(statuses))], nil)
			if err != nil && !errors.Is(err, rental.ErrInvalidTransition) && !errors.Is(err, rental.ErrNotFound) {
				t.Fatalf("step %d: %v", step, err)
			}
		case op < 8 && len(rentals) > 0:
			i := rng.Intn(len(rentals))
			err := e.DeleteRental(ctx, rentals[i])
			if err != nil {
				require.ErrorIs(t, err, rental.ErrNotFound)
			}
			rentals = append(rentals[:i], rentals[i+1:]...)
		default:
			d, err := st.ItemDrift(ctx, itemID)
			require.NoError(t, err)
			// hanya tumbuh, atau menyusut selama masih >= yang sedang disewa
			rented := d.Total - d.Expected
			_, err = e.EditItemTotals(ctx, itemID, rented+rng.Intn(6))
			require.NoError(t, err)
		}
		for _, id := range items {
			requireConsistent(t, st, id)
		}
	}
}

func TestFeedbackDesk_Submit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	itemID := seedItem(t, st, 1, "10")
	desk := &rental.FeedbackDesk{Tx: st, Customers: st, Store: st}

	id, err := desk.Submit(ctx, rental.FeedbackInput{
		Customer: rental.CustomerInfo{Name: "Budi", Email: "budi@example.com"},
		ItemID:   &itemID,
		Rating:   5,
		Message:  "Great drill",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = desk.Submit(ctx, rental.FeedbackInput{
		Customer: rental.CustomerInfo{Name: "Budi", Email: "BUDI@example.com"},
		Rating:   3,
		Message:  "ok",
	})
	require.NoError(t, err)

	sum, err := st.FeedbackSummary(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, sum.TotalFeedback)
	require.InDelta(t, 4.0, sum.AvgRating, 0.001)

	stats, err := st.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalCustomers)

	_, err = desk.Submit(ctx, rental.FeedbackInput{Customer: rental.CustomerInfo{Name: "A", Email: "a@b.c"}, Rating: 6, Message: "x"})
	require.ErrorIs(t, err, rental.ErrValidation)

	missing := int64(999)
	_, err = desk.Submit(ctx, rental.FeedbackInput{Customer: rental.CustomerInfo{Name: "A", Email: "a@b.c"}, ItemID: &missing, Rating: 4, Message: "x"})
	require.ErrorIs(t, err, rental.ErrConstraintViolation)
	stats, _ = st.DashboardStats(ctx)
	require.Equal(t, 1, stats.TotalCustomers)
}
