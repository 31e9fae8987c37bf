package rental

import (
	"context"
	"github.com/shopspring/decimal"
	"time"
)

// ItemStore owns items. AvailableQuantity only changes through
// AdjustAvailability and SetTotals, both of which enforce
// 0 <= available_quantity <= total_quantity.
type ItemStore interface {
	GetItem(ctx context.Context, id int64) (Item, error)
	// GetItemForUpdate locks the row for the rest of the transaction.
	GetItemForUpdate(ctx context.Context, id int64) (Item, error)
	ListItemsWithCategory(ctx context.Context, f ItemFilter) ([]ItemView, error)
	// AdjustAvailability adds delta and returns the new value, or
	// ErrConstraintViolation when the result would leave [0, total].
	AdjustAvailability(ctx context.Context, id int64, delta int) (int, error)
	SetTotals(ctx context.Context, id int64, total, available int) error
	InsertItem(ctx context.Context, it Item) (int64, error)
	UpdateItemDetails(ctx context.Context, it Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// Ledger menyimpan rental order.
type Ledger interface {
	InsertOrder(ctx context.Context, o Order) (int64, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (Order, error)
	// UpdateOrderStatus only applies when the stored status still equals from.
	UpdateOrderStatus(ctx context.Context, id int64, from, to Status, actualReturn *time.Time) error
	DeleteOrder(ctx context.Context, id int64) error
	ListOrders(ctx context.Context, f OrderFilter) ([]OrderView, error)
	CountActiveByItem(ctx context.Context, itemID int64) (int, error)
}

type CustomerDirectory interface {
	// FindOrCreateByEmail is safe to call concurrently for the same email.
	FindOrCreateByEmail(ctx context.Context, email, fullName, phone string) (int64, error)
}

// TxManager runs fn in one transaction; stores called with the ctx passed
// to fn join that transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ItemFilter struct {
	CategoryID    *int64
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	AvailableOnly bool
}

type OrderFilter struct {
	Status     *Status
	ItemID     *int64
	CustomerID *int64
	Search     string
	Limit      int
	Offset     int
}

// Collaborators outside the engine: plain data access, no invariants.

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]Category, error)
	InsertCategory(ctx context.Context, c Category) (int64, error)
	UpdateCategory(ctx context.Context, c Category) error
	// DeleteCategory detaches its items (category_id set to NULL).
	DeleteCategory(ctx context.Context, id int64) error
}

type FeedbackStore interface {
	InsertFeedback(ctx context.Context, f Feedback) (int64, error)
	ListFeedback(ctx context.Context, limit int) ([]Feedback, error)
	FeedbackSummary(ctx context.Context) (FeedbackSummary, error)
	DeleteFeedback(ctx context.Context, id int64) error
}

type InquiryStore interface {
	InsertInquiry(ctx context.Context, q Inquiry) (int64, error)
	ListInquiries(ctx context.Context, status *InquiryStatus) ([]Inquiry, error)
	CountInquiries(ctx context.Context) (InquiryCounts, error)
	SetInquiryStatus(ctx context.Context, id int64, s InquiryStatus) error
	DeleteInquiry(ctx context.Context, id int64) error
}

type StatsStore interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
	ItemDrift(ctx context.Context, itemID int64) (ItemDrift, error)
}

type AdminStore interface {
	FindAdmin(ctx context.Context, username string) (Admin, error)
}
