package rental

import "strconv"

const TopicRentalEvents = "rental.events"

// Partition key = item_id, supaya semua event untuk 1 item tetap berurutan.
func PartitionKey(itemID int64) []byte { return []byte(strconv.FormatInt(itemID, 10)) }
