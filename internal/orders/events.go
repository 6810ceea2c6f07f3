package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderSubmitted = "OrderSubmitted"
	EventOrderUpdated   = "OrderUpdated"
	EventOrderApproved  = "OrderApproved"
)

// Envelope is the wire frame for every order event. Payload holds the
// event-specific body.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type LineQty struct {
	ItemCode string `json:"itemCode"`
	Quantity int    `json:"quantity"`
}

type OrderSubmittedPayload struct {
	OrderID         string    `json:"order_id"`
	SubmissionToken string    `json:"submission_token,omitempty"`
	AgentCode       string    `json:"agentCode"`
	Route           string    `json:"route"`
	Lines           []LineQty `json:"items"`
	TotalOrder      float64   `json:"TotalOrder"`
}

type OrderUpdatedPayload struct {
	OrderID    string  `json:"order_id"`
	Status     Status  `json:"status"`
	TotalOrder float64 `json:"TotalOrder"`
}

type OrderApprovedPayload struct {
	OrderIDs []string `json:"order_ids"`
}
