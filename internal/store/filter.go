package store

import (
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"strings"
)

// likePattern escapes LIKE wildcards so user input only matches literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// buildItemListQuery builds WHERE + ORDER clause + args for ListItemsWithCategory.
func buildItemListQuery(f rental.ItemFilter) (string, []any) {
	var parts []string
	var conditions []string
	var args []any
	idx := 1

	if f.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("i.category_id = $%d", idx))
		args = append(args, *f.CategoryID)
		idx++
	}
	if strings.TrimSpace(f.Search) != "" {
		conditions = append(conditions, fmt.Sprintf("(i.name ILIKE $%d OR i.description ILIKE $%d)", idx, idx))
		args = append(args, likePattern(f.Search))
		idx++
	}
	if f.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("i.price_per_day >= $%d", idx))
		args = append(args, *f.MinPrice)
		idx++
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("i.price_per_day <= $%d", idx))
		args = append(args, *f.MaxPrice)
		idx++
	}
	if f.AvailableOnly {
		conditions = append(conditions, "i.available_quantity > 0")
	}

	if len(conditions) > 0 {
		parts = append(parts, "WHERE "+strings.Join(conditions, " AND "))
	}
	parts = append(parts, "ORDER BY i.name, i.id")
	return strings.Join(parts, " "), args
}

// buildOrderListQuery builds WHERE + ORDER + LIMIT + OFFSET clause for ListOrders.
func buildOrderListQuery(f rental.OrderFilter) (string, []any) {
	var parts []string
	var conditions []string
	var args []any
	idx := 1

	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", idx))
		args = append(args, string(*f.Status))
		idx++
	}
	if f.ItemID != nil {
		conditions = append(conditions, fmt.Sprintf("r.item_id = $%d", idx))
		args = append(args, *f.ItemID)
		idx++
	}
	if f.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("r.customer_id = $%d", idx))
		args = append(args, *f.CustomerID)
		idx++
	}
	if strings.TrimSpace(f.Search) != "" {
		conditions = append(conditions, fmt.Sprintf("(u.full_name ILIKE $%d OR i.name ILIKE $%d)", idx, idx))
		args = append(args, likePattern(f.Search))
		idx++
	}

	if len(conditions) > 0 {
		parts = append(parts, "WHERE "+strings.Join(conditions, " AND "))
	}
	parts = append(parts, "ORDER BY r.created_at DESC, r.id DESC")

	if f.Limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT $%d", idx))
		args = append(args, f.Limit)
		idx++
	}
	if f.Offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET $%d", idx))
		args = append(args, f.Offset)
	}
	return strings.Join(parts, " "), args
}
