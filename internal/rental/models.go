package rental

import (
	"github.com/shopspring/decimal"
	"time"
)

type Item struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	CategoryID        *int64          `json:"category_id"`
	PricePerDay       decimal.Decimal `json:"price_per_day"`
	ImageURL          string          `json:"image_url"`
	Specifications    string          `json:"specifications"`
	TotalQuantity     int             `json:"total_quantity"`
	AvailableQuantity int             `json:"available_quantity"` // hanya lewat AdjustAvailability / SetTotals
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ItemView adalah item + nama kategori (LEFT JOIN).
type ItemView struct {
	Item
	CategoryName *string `json:"category_name"`
}

type Order struct {
	ID               int64           `json:"id"`
	CustomerID       int64           `json:"customer_id"`
	ItemID           int64           `json:"item_id"`
	RentalDate       time.Time       `json:"rental_date"`
	ReturnDate       time.Time       `json:"return_date"`
	ActualReturnDate *time.Time      `json:"actual_return_date"`
	Quantity         int             `json:"quantity"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderView dipakai listing admin.
type OrderView struct {
	Order
	ItemName      string          `json:"item_name"`
	PricePerDay   decimal.Decimal `json:"price_per_day"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
}

type Customer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// CustomerInfo is what a public booking or feedback form carries.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Feedback struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customer_id"`
	ItemID        *int64    `json:"item_id"`
	Rating        int       `json:"rating"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	ItemName      *string   `json:"item_name,omitempty"`
}

type FeedbackSummary struct {
	AvgRating     float64 `json:"avg_rating"`
	TotalFeedback int     `json:"total_feedback"`
}

type InquiryStatus string

const (
	InquiryNew     InquiryStatus = "new"
	InquiryRead    InquiryStatus = "read"
	InquiryReplied InquiryStatus = "replied"
)

func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryNew, InquiryRead, InquiryReplied:
		return true
	}
	return false
}

type Inquiry struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    InquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type InquiryCounts struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Read    int `json:"read"`
	Replied int `json:"replied"`
}

type DashboardStats struct {
	TotalItems     int             `json:"total_items"`
	TotalRentals   int             `json:"total_rentals"`
	TotalCustomers int             `json:"total_customers"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	RecentRentals  []OrderView     `json:"recent_rentals"`
	RecentFeedback []Feedback      `json:"recent_feedback"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// ItemDrift membandingkan available_quantity tersimpan dengan hasil hitung ulang.
type ItemDrift struct {
	ItemID    int64 `json:"item_id"`
	Total     int   `json:"total_quantity"`
	Available int   `json:"available_quantity"`
	Expected  int   `json:"expected_available"`
}

func (d ItemDrift) Drifted() bool { return d.Available != d.Expected }

type Admin struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
}
