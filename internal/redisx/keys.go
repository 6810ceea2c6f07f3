package redisx

import "time"

const (
	// Submission idempotency: idem:order:submit:{submission_token} -> order_id
	KeyIdemSubmit = "idem:order:submit:%s"

	// Order status cache: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Event dedup per consumer: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
