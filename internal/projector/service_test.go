package projector

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/ariefcatur/go-tool-rental/internal/store/memory"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"testing"
)

func message(t *testing.T, eventType string, itemID int64, payload any) kafkago.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	env, err := json.Marshal(rental.Envelope{EventID: "evt-1", EventType: eventType, EventVersion: 1, ItemID: itemID, Payload: body})
	require.NoError(t, err)
	return kafkago.Message{Key: rental.PartitionKey(itemID), Value: env}
}

func newService(t *testing.T, stats rental.StatsStore) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	return &Service{Stats: stats, Log: zap.New(core), Name: "projector-test"}, logs
}

func seedItem(t *testing.T, st *memory.Store) int64 {
	t.Helper()
	id, err := st.InsertItem(context.Background(), rental.Item{
		Name: "Pressure Washer", PricePerDay: decimal.NewFromInt(25), TotalQuantity: 4, AvailableQuantity: 4,
	})
	require.NoError(t, err)
	return id
}

func TestHandleRentalEvent_WarnsOnDrift(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	itemID := seedItem(t, st)
	// stok dikurangi tanpa rental: drift
	_, err := st.AdjustAvailability(ctx, itemID, -1)
	require.NoError(t, err)

	svc, logs := newService(t, st)
	err = svc.HandleRentalEvent(ctx, message(t, rental.EventItemTotalsChanged, itemID, rental.ItemTotalsPayload{ItemID: itemID}))
	require.NoError(t, err)

	drift := logs.FilterMessage("availability drift").All()
	require.Len(t, drift, 1)
	fields := drift[0].ContextMap()
	require.EqualValues(t, itemID, fields["item_id"])
	require.EqualValues(t, 3, fields["available"])
	require.EqualValues(t, 4, fields["expected"])
}

func TestHandleRentalEvent_ConsistentItemIsQuiet(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	itemID := seedItem(t, st)
	svc, logs := newService(t, st)

	err := svc.HandleRentalEvent(ctx, message(t, rental.EventRentalStatusChanged, itemID, rental.RentalStatusChangedPayload{
		RentalID: 9, ItemID: itemID, From: rental.StatusOngoing, To: rental.StatusReturned, Credited: 1,
	}))
	require.NoError(t, err)
	require.Zero(t, logs.Len())
}

func TestHandleRentalEvent_DeletedItemIsNotAnError(t *testing.T) {
	svc, _ := newService(t, memory.New())
	err := svc.HandleRentalEvent(context.Background(), message(t, rental.EventRentalCreated, 404, rental.RentalCreatedPayload{ItemID: 404}))
	require.NoError(t, err)
}

func TestHandleRentalEvent_DropsUndecodable(t *testing.T) {
	svc, logs := newService(t, memory.New())
	err := svc.HandleRentalEvent(context.Background(), kafkago.Message{Value: []byte("{not json"), Offset: 7})
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("drop undecodable event").Len())
}

func TestHandleRentalEvent_BadPayloadIsRetried(t *testing.T) {
	svc, _ := newService(t, memory.New())
	env, err := json.Marshal(rental.Envelope{EventID: "e", EventType: rental.EventRentalDeleted, Payload: json.RawMessage(`"oops"`)})
	require.NoError(t, err)
	err = svc.HandleRentalEvent(context.Background(), kafkago.Message{Value: env})
	require.Error(t, err)
}

type brokenStats struct{ rental.StatsStore }

func (brokenStats) DashboardStats(context.Context) (rental.DashboardStats, error) {
	return rental.DashboardStats{}, errors.New("db down")
}

func (brokenStats) ItemDrift(_ context.Context, id int64) (rental.ItemDrift, error) {
	return rental.ItemDrift{ItemID: id}, nil
}

func TestHandleRentalEvent_StatsFailureIsReturned(t *testing.T) {
	svc, _ := newService(t, brokenStats{})
	err := svc.HandleRentalEvent(context.Background(), message(t, rental.EventItemCreated, 1, rental.ItemTotalsPayload{ItemID: 1}))
	require.ErrorContains(t, err, "db down")
}
