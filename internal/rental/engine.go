package rental

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"strconv"
	"strings"
	"time"
)

const defaultTxTimeout = 5 * time.Second

// Engine pairs every rental state change with its inventory adjustment
// inside a single transaction.
type Engine struct {
	Items     ItemStore
	Ledger    Ledger
	Customers CustomerDirectory
	Tx        TxManager
	Events    EventPublisher // boleh nil
	Log       *zap.Logger
	Producer  string
	TxTimeout time.Duration
	Now       func() time.Time
}

type CreateRentalInput struct {
	Customer   CustomerInfo
	ItemID     int64
	RentalDate time.Time
	ReturnDate time.Time
	Quantity   int
}

func (e *Engine) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// run detaches from the caller's cancellation: a client that disconnects
// mid-request must not leave a transaction half-applied.
func (e *Engine) run(ctx context.Context, fn func(ctx context.Context) error) error {
	timeout := e.TxTimeout
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return e.Tx.WithTx(ctx, fn)
}

func (e *Engine) CreateRental(ctx context.Context, in CreateRentalInput) (int64, error) {
	if in.Quantity < 1 {
		return 0, validationf("quantity must be at least 1")
	}
	if in.ItemID <= 0 {
		return 0, validationf("item id is required")
	}
	rentalDate, returnDate := DateOnly(in.RentalDate), DateOnly(in.ReturnDate)
	if !returnDate.After(rentalDate) {
		return 0, validationf("return date must be after rental date")
	}
	email := strings.ToLower(strings.TrimSpace(in.Customer.Email))
	name := strings.TrimSpace(in.Customer.Name)
	if email == "" || name == "" {
		return 0, validationf("customer name and email are required")
	}

	var (
		order        Order
		availableNow int
	)
	err := e.run(ctx, func(ctx context.Context) error {
		customerID, err := e.Customers.FindOrCreateByEmail(ctx, email, name, strings.TrimSpace(in.Customer.Phone))
		if err != nil {
			return fmt.Errorf("resolve customer: %w", err)
		}

		item, err := e.Items.GetItemForUpdate(ctx, in.ItemID)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: item %d does not exist", ErrInsufficientInventory, in.ItemID)
		}
		if err != nil {
			return err
		}
		if item.AvailableQuantity < in.Quantity {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientInventory, in.Quantity, item.AvailableQuantity)
		}

		order = Order{
			CustomerID:  customerID,
			ItemID:      item.ID,
			RentalDate:  rentalDate,
			ReturnDate:  returnDate,
			Quantity:    in.Quantity,
			TotalAmount: TotalAmount(item.PricePerDay, RentalDays(rentalDate, returnDate), in.Quantity),
			Status:      StatusPending,
		}
		if order.ID, err = e.Ledger.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("insert rental: %w", err)
		}

		// debit kondisional: gagal -> seluruh transaksi di-rollback
		availableNow, err = e.Items.AdjustAvailability(ctx, item.ID, -in.Quantity)
		if errors.Is(err, ErrConstraintViolation) {
			return fmt.Errorf("%w: requested %d", ErrInsufficientInventory, in.Quantity)
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	e.logger().Info("rental created",
		zap.Int64("rental_id", order.ID), zap.Int64("item_id", order.ItemID),
		zap.Int("quantity", order.Quantity), zap.Int("available", availableNow))
	e.emit(ctx, EventRentalCreated, order.ItemID, order.ID, RentalCreatedPayload{
		RentalID:     order.ID,
		ItemID:       order.ItemID,
		CustomerID:   order.CustomerID,
		Quantity:     order.Quantity,
		TotalAmount:  order.TotalAmount.StringFixed(2),
		AvailableNow: availableNow,
	})
	return order.ID, nil
}

// UpdateRentalStatus moves a rental to status to. actualReturn is only used
// when to is returned; it defaults to today when nil.
func (e *Engine) UpdateRentalStatus(ctx context.Context, id int64, to Status, actualReturn *time.Time) error {
	if _, ok := ParseStatus(string(to)); !ok {
		return validationf("unknown status %q", to)
	}

	var (
		from         Status
		itemID       int64
		credited     int
		availableNow int
		noop         bool
	)
	err := e.run(ctx, func(ctx context.Context) error {
		o, err := e.Ledger.GetOrderForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("rental %d: %w", id, err)
		}
		from, itemID = o.Status, o.ItemID
		if o.Status == to {
			// status sama: no-op, tidak ada credit ulang
			noop = true
			return nil
		}
		if !CanTransition(o.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
		}

		var returnedAt *time.Time
		if to == StatusReturned {
			d := DateOnly(e.now())
			if actualReturn != nil {
				d = DateOnly(*actualReturn)
			}
			if d.Before(o.RentalDate) {
				return validationf("actual return date %s is before rental date %s",
					d.Format(DateLayout), o.RentalDate.Format(DateLayout))
			}
			returnedAt = &d
		}
		if err := e.Ledger.UpdateOrderStatus(ctx, id, o.Status, to, returnedAt); err != nil {
			return err
		}

		if o.Status.IsActive() && !to.IsActive() {
			credited, availableNow, err = e.credit(ctx, o.ItemID, o.Quantity)
			return err
		}
		return nil
	})
	if err != nil || noop {
		return err
	}

	e.logger().Info("rental status changed",
		zap.Int64("rental_id", id), zap.String("from", string(from)), zap.String("to", string(to)),
		zap.Int("credited", credited))
	e.emit(ctx, EventRentalStatusChanged, itemID, id, RentalStatusChangedPayload{
		RentalID:     id,
		ItemID:       itemID,
		From:         from,
		To:           to,
		Credited:     credited,
		AvailableNow: availableNow,
	})
	return nil
}

// DeleteRental removes a rental, crediting its item first when the rental
// was still holding stock.
func (e *Engine) DeleteRental(ctx context.Context, id int64) error {
	var (
		o            Order
		credited     int
		availableNow int
	)
	err := e.run(ctx, func(ctx context.Context) error {
		var err error
		o, err = e.Ledger.GetOrderForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("rental %d: %w", id, err)
		}
		if o.Status.IsActive() {
			if credited, availableNow, err = e.credit(ctx, o.ItemID, o.Quantity); err != nil {
				return err
			}
		}
		return e.Ledger.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}

	e.logger().Info("rental deleted",
		zap.Int64("rental_id", id), zap.String("status", string(o.Status)), zap.Int("credited", credited))
	e.emit(ctx, EventRentalDeleted, o.ItemID, id, RentalDeletedPayload{
		RentalID:     id,
		ItemID:       o.ItemID,
		Status:       o.Status,
		Credited:     credited,
		AvailableNow: availableNow,
	})
	return nil
}

// credit returns qty units to the item, capped at total_quantity for fleets
// shrunk below what is currently out on rent.
func (e *Engine) credit(ctx context.Context, itemID int64, qty int) (credited, available int, err error) {
	item, err := e.Items.GetItemForUpdate(ctx, itemID)
	if err != nil {
		return 0, 0, fmt.Errorf("item %d: %w", itemID, err)
	}
	credited = qty
	if room := item.TotalQuantity - item.AvailableQuantity; credited > room {
		e.logger().Warn("credit capped at total quantity",
			zap.Int64("item_id", itemID), zap.Int("requested", qty), zap.Int("credited", room))
		credited = room
	}
	if credited == 0 {
		return 0, item.AvailableQuantity, nil
	}
	available, err = e.Items.AdjustAvailability(ctx, itemID, credited)
	return credited, available, err
}

// DeleteItem refuses while any rental of the item is active. Historical
// rentals follow the storage cascade policy.
func (e *Engine) DeleteItem(ctx context.Context, id int64) error {
	err := e.run(ctx, func(ctx context.Context) error {
		if _, err := e.Items.GetItemForUpdate(ctx, id); err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		n, err := e.Ledger.CountActiveByItem(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: item %d has %d active rentals, complete or cancel them first",
				ErrActiveRentalsExist, id, n)
		}
		return e.Items.DeleteItem(ctx, id)
	})
	if err != nil {
		return err
	}

	e.logger().Info("item deleted", zap.Int64("item_id", id))
	e.emit(ctx, EventItemDeleted, id, 0, ItemDeletedPayload{ItemID: id})
	return nil
}

// EditItemTotals grows or shrinks the fleet without touching rentals in flight.
func (e *Engine) EditItemTotals(ctx context.Context, id int64, newTotal int) (Item, error) {
	if newTotal < 0 {
		return Item{}, validationf("total quantity must not be negative")
	}
	var (
		item     Item
		oldTotal int
	)
	err := e.run(ctx, func(ctx context.Context) error {
		cur, err := e.Items.GetItemForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		oldTotal = cur.TotalQuantity
		item, err = e.applyTotals(ctx, cur, newTotal)
		return err
	})
	if err != nil {
		return Item{}, err
	}
	e.totalsChanged(ctx, item, oldTotal)
	return item, nil
}

func (e *Engine) applyTotals(ctx context.Context, cur Item, newTotal int) (Item, error) {
	available := ClampAvailable(cur.AvailableQuantity, cur.TotalQuantity, newTotal)
	if err := e.Items.SetTotals(ctx, cur.ID, newTotal, available); err != nil {
		return Item{}, err
	}
	cur.TotalQuantity, cur.AvailableQuantity = newTotal, available
	return cur, nil
}

func (e *Engine) totalsChanged(ctx context.Context, item Item, oldTotal int) {
	if oldTotal == item.TotalQuantity {
		return
	}
	e.logger().Info("item totals changed",
		zap.Int64("item_id", item.ID), zap.Int("old_total", oldTotal),
		zap.Int("new_total", item.TotalQuantity), zap.Int("available", item.AvailableQuantity))
	e.emit(ctx, EventItemTotalsChanged, item.ID, 0, ItemTotalsPayload{
		ItemID:    item.ID,
		OldTotal:  oldTotal,
		NewTotal:  item.TotalQuantity,
		Available: item.AvailableQuantity,
	})
}

func validateItem(it Item) error {
	if strings.TrimSpace(it.Name) == "" {
		return validationf("item name is required")
	}
	if it.PricePerDay.IsNegative() {
		return validationf("price per day must not be negative")
	}
	if it.TotalQuantity < 0 {
		return validationf("total quantity must not be negative")
	}
	return nil
}

// CreateItem starts a new item fully available; any available count the
// caller supplied is ignored.
func (e *Engine) CreateItem(ctx context.Context, it Item) (int64, error) {
	if err := validateItem(it); err != nil {
		return 0, err
	}
	it.AvailableQuantity = it.TotalQuantity

	var id int64
	err := e.run(ctx, func(ctx context.Context) error {
		var err error
		id, err = e.Items.InsertItem(ctx, it)
		return err
	})
	if err != nil {
		return 0, err
	}
	e.logger().Info("item created", zap.Int64("item_id", id), zap.Int("total", it.TotalQuantity))
	e.emit(ctx, EventItemCreated, id, 0, ItemTotalsPayload{ItemID: id, NewTotal: it.TotalQuantity, Available: it.AvailableQuantity})
	return id, nil
}

// UpdateItem saves descriptive fields and applies the totals change in one
// transaction. it.AvailableQuantity is ignored and recomputed.
func (e *Engine) UpdateItem(ctx context.Context, it Item) (Item, error) {
	if err := validateItem(it); err != nil {
		return Item{}, err
	}
	var (
		item     Item
		oldTotal int
	)
	err := e.run(ctx, func(ctx context.Context) error {
		cur, err := e.Items.GetItemForUpdate(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("item %d: %w", it.ID, err)
		}
		oldTotal = cur.TotalQuantity
		if err := e.Items.UpdateItemDetails(ctx, it); err != nil {
			return err
		}
		cur.Name, cur.Description, cur.CategoryID = it.Name, it.Description, it.CategoryID
		cur.PricePerDay, cur.ImageURL, cur.Specifications = it.PricePerDay, it.ImageURL, it.Specifications
		item, err = e.applyTotals(ctx, cur, it.TotalQuantity)
		return err
	})
	if err != nil {
		return Item{}, err
	}
	e.totalsChanged(ctx, item, oldTotal)
	return item, nil
}

func (e *Engine) emit(ctx context.Context, eventType string, itemID, rentalID int64, payload any) {
	if e.Events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		e.logger().Error("marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   e.now().UTC(),
		Producer:     e.Producer,
		TraceID:      TraceID(ctx),
		ItemID:       itemID,
		Payload:      body,
	}
	if rentalID != 0 {
		env.CorrelationID = strconv.FormatInt(rentalID, 10)
	}
	// best effort: data sudah commit
	if err := e.Events.PublishEvent(ctx, env); err != nil {
		e.logger().Warn("publish event failed", zap.String("event_type", eventType), zap.Error(err))
	}
}
