package kafka

import (
	"encoding/json"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestUnwrapPayload(t *testing.T) {
	p, err := UnwrapPayload[rental.RentalStatusChangedPayload](json.RawMessage(
		`{"rental_id":3,"item_id":5,"from":"ongoing","to":"returned","credited":2,"available_now":4}`))
	require.NoError(t, err)
	require.Equal(t, int64(3), p.RentalID)
	require.Equal(t, rental.StatusReturned, p.To)

	_, err = UnwrapPayload[rental.RentalStatusChangedPayload](json.RawMessage(`[1,2]`))
	require.ErrorContains(t, err, "decode payload")
}
