package redisx

import "time"

const (
	// Idempotency booking: idem:rental:create:{Idempotency-Key} -> rental_id
	KeyIdemRentalCreate = "idem:rental:create:%s"

	// Cache rental: rental_status:{rental_id} -> JSON rental
	KeyRentalStatus = "rental_status:%d"

	// Katalog item publik: catalog:items:v{version}:{filter}; version di-INCR tiap mutasi item
	KeyCatalogVersion = "catalog:version"
	KeyCatalogItems   = "catalog:items:v%d:%s"

	// Snapshot dashboard (ditulis projector)
	KeyDashboardStats = "dashboard:stats"

	// Snapshot availability per item (ditulis projector)
	KeyItemAvailability = "item_avail:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency  = 24 * time.Hour
	TTLIdemPending  = 30 * time.Second // marker "pending" selama booking diproses
	TTLStatusCache  = 5 * time.Minute
	TTLCatalogCache = 2 * time.Minute
	TTLStatsCache   = 10 * time.Minute
	TTLAvailability = 30 * time.Minute
	TTLDedup        = 48 * time.Hour
)
