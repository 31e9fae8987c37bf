package store

import (
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%drill%", likePattern(" drill "))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestBuildItemListQuery(t *testing.T) {
	clause, args := buildItemListQuery(rental.ItemFilter{})
	assert.Equal(t, "ORDER BY i.name, i.id", clause)
	assert.Empty(t, args)

	cat := int64(3)
	lo, hi := decimal.NewFromInt(5), decimal.NewFromInt(50)
	clause, args = buildItemListQuery(rental.ItemFilter{
		CategoryID:    &cat,
		Search:        "saw",
		MinPrice:      &lo,
		MaxPrice:      &hi,
		AvailableOnly: true,
	})
	assert.Equal(t,
		"WHERE i.category_id = $1 AND (i.name ILIKE $2 OR i.description ILIKE $2) AND i.price_per_day >= $3 "+
			"AND i.price_per_day <= $4 AND i.available_quantity > 0 ORDER BY i.name, i.id",
		clause)
	assert.Equal(t, []any{int64(3), "%saw%", lo, hi}, args)
}

func TestBuildOrderListQuery(t *testing.T) {
	clause, args := buildOrderListQuery(rental.OrderFilter{})
	assert.Equal(t, "ORDER BY r.created_at DESC, r.id DESC", clause)
	assert.Empty(t, args)

	st := rental.StatusOngoing
	item := int64(7)
	clause, args = buildOrderListQuery(rental.OrderFilter{Status: &st, ItemID: &item, Search: "budi", Limit: 20, Offset: 40})
	assert.Equal(t,
		"WHERE r.status = $1 AND r.item_id = $2 AND (u.full_name ILIKE $3 OR i.name ILIKE $3) "+
			"ORDER BY r.created_at DESC, r.id DESC LIMIT $4 OFFSET $5",
		clause)
	assert.Equal(t, []any{"ongoing", int64(7), "%budi%", 20, 40}, args)

	// search kosong tidak menambah kondisi
	cust := int64(2)
	clause, args = buildOrderListQuery(rental.OrderFilter{CustomerID: &cust, Search: "   "})
	assert.Equal(t, "WHERE r.customer_id = $1 ORDER BY r.created_at DESC, r.id DESC", clause)
	assert.Equal(t, []any{int64(2)}, args)
}

func TestActiveStatuses(t *testing.T) {
	assert.Equal(t, []string{"pending", "confirmed", "ongoing"}, activeStatuses())
}
