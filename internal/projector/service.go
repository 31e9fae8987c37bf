package projector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	kafkax "github.com/ariefcatur/go-tool-rental/internal/kafka"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Service projects rental events into Redis read models: the dashboard
// stats snapshot and per-item availability. Every touched item is also
// checked for drift between available_quantity and the active rentals.
type Service struct {
	Stats rental.StatsStore
	Cache *redisx.Cache
	Log   *zap.Logger
	Name  string // namespace dedup
}

// HandleRentalEvent dipasang sebagai handler consumer.
func (s *Service) HandleRentalEvent(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env rental.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah sukses; commit saja
		s.Log.Warn("drop undecodable event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}

	// 2) dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	if s.Cache.Seen(ctx, dkey) {
		return nil
	}

	// 3) proyeksi
	switch env.EventType {
	case rental.EventRentalStatusChanged:
		p, err := kafkax.UnwrapPayload[rental.RentalStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Cache.Del(ctx, fmt.Sprintf(redisx.KeyRentalStatus, p.RentalID))
		if err := s.checkItem(ctx, env.ItemID); err != nil {
			return err
		}
	case rental.EventRentalDeleted:
		p, err := kafkax.UnwrapPayload[rental.RentalDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Cache.Del(ctx, fmt.Sprintf(redisx.KeyRentalStatus, p.RentalID))
		if err := s.checkItem(ctx, env.ItemID); err != nil {
			return err
		}
	case rental.EventRentalCreated, rental.EventItemCreated, rental.EventItemTotalsChanged:
		if err := s.checkItem(ctx, env.ItemID); err != nil {
			return err
		}
	case rental.EventItemDeleted:
		s.Cache.Del(ctx, fmt.Sprintf(redisx.KeyItemAvailability, env.ItemID))
	default:
		return nil // ignore
	}
	s.Cache.Bump(ctx, redisx.KeyCatalogVersion)

	if err := s.RefreshStats(ctx); err != nil {
		return err
	}
	s.Cache.Set(ctx, dkey, "1", redisx.TTLDedup)
	return nil
}

// RefreshStats recomputes the dashboard snapshot from Postgres.
func (s *Service) RefreshStats(ctx context.Context) error {
	st, err := s.Stats.DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("dashboard stats: %w", err)
	}
	s.Cache.SetJSON(ctx, redisx.KeyDashboardStats, st, redisx.TTLStatsCache)
	return nil
}

func (s *Service) checkItem(ctx context.Context, itemID int64) error {
	key := fmt.Sprintf(redisx.KeyItemAvailability, itemID)
	d, err := s.Stats.ItemDrift(ctx, itemID)
	if errors.Is(err, rental.ErrNotFound) {
		// item sudah dihapus setelah event ini
		s.Cache.Del(ctx, key)
		return nil
	}
	if err != nil {
		return err
	}
	s.Cache.SetJSON(ctx, key, d, redisx.TTLAvailability)
	if d.Drifted() {
		s.Log.Warn("availability drift",
			zap.Int64("item_id", d.ItemID), zap.Int("total", d.Total),
			zap.Int("available", d.Available), zap.Int("expected", d.Expected))
	}
	return nil
}
