package rental

import (
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestRentalDays(t *testing.T) {
	d := func(s string) time.Time {
		v, err := time.Parse(DateLayout, s)
		require.NoError(t, err)
		return v
	}
	require.Equal(t, 1, RentalDays(d("2026-03-01"), d("2026-03-02")))
	require.Equal(t, 3, RentalDays(d("2026-03-01"), d("2026-03-04")))
	require.Equal(t, 31, RentalDays(d("2026-03-01"), d("2026-04-01")))

	// partial day rounds up, never below one
	start := d("2026-03-01")
	require.Equal(t, 2, RentalDays(start, start.Add(25*time.Hour)))
	require.Equal(t, 1, RentalDays(start, start.Add(time.Hour)))
}

func TestTotalAmount(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	require.Equal(t, "75.00", TotalAmount(price, 3, 2).StringFixed(2))
	require.True(t, TotalAmount(decimal.Zero, 10, 3).IsZero())
}

func TestClampAvailable(t *testing.T) {
	require.Equal(t, 6, ClampAvailable(3, 5, 8))
	require.Equal(t, 0, ClampAvailable(3, 5, 2))
	require.Equal(t, 0, ClampAvailable(0, 5, 0))
	require.Equal(t, 4, ClampAvailable(4, 4, 4))
	require.Equal(t, 1, ClampAvailable(5, 5, 1))
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	got := DateOnly(time.Date(2026, 3, 1, 23, 30, 0, 0, loc))
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestCustomerHandle(t *testing.T) {
	h := CustomerHandle("  Jane   Doe ")
	require.Regexp(t, `^jane_doe_[0-9a-f]{8}$`, h)
	require.NotEqual(t, h, CustomerHandle("Jane Doe"))
	require.Regexp(t, `^customer_`, CustomerHandle(""))
}
