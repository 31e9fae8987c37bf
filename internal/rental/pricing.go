package rental

import (
	"github.com/shopspring/decimal"
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// DateOnly drops the clock part, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RentalDays = ceil(returnDate - rentalDate) dalam hari, minimal 1.
func RentalDays(rentalDate, returnDate time.Time) int {
	days := int(math.Ceil(returnDate.Sub(rentalDate).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

func TotalAmount(pricePerDay decimal.Decimal, days, qty int) decimal.Decimal {
	return pricePerDay.Mul(decimal.NewFromInt(int64(days))).Mul(decimal.NewFromInt(int64(qty)))
}

// ClampAvailable applies a fleet size change to the available counter,
// keeping the result within [0, newTotal].
func ClampAvailable(available, oldTotal, newTotal int) int {
	v := available + (newTotal - oldTotal)
	if v < 0 {
		return 0
	}
	if v > newTotal {
		return newTotal
	}
	return v
}
