package rental

import (
	"context"
	"fmt"
	"strings"
)

// FeedbackDesk records customer feedback, creating the customer on first contact.
type FeedbackDesk struct {
	Tx        TxManager
	Customers CustomerDirectory
	Store     FeedbackStore
}

type FeedbackInput struct {
	Customer CustomerInfo
	ItemID   *int64
	Rating   int
	Message  string
}

func (d *FeedbackDesk) Submit(ctx context.Context, in FeedbackInput) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(in.Customer.Email))
	name := strings.TrimSpace(in.Customer.Name)
	if email == "" || name == "" {
		return 0, validationf("name and email are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return 0, validationf("rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.Message) == "" {
		return 0, validationf("message is required")
	}

	var id int64
	err := d.Tx.WithTx(ctx, func(ctx context.Context) error {
		customerID, err := d.Customers.FindOrCreateByEmail(ctx, email, name, strings.TrimSpace(in.Customer.Phone))
		if err != nil {
			return fmt.Errorf("resolve customer: %w", err)
		}
		id, err = d.Store.InsertFeedback(ctx, Feedback{
			CustomerID: customerID,
			ItemID:     in.ItemID,
			Rating:     in.Rating,
			Message:    strings.TrimSpace(in.Message),
		})
		return err
	})
	return id, err
}
