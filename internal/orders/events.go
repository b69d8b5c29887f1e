package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated      = "OrderCreated"
	EventOrderCompleted    = "OrderCompleted"
	EventFulfillmentFailed = "FulfillmentFailed"
	EventOrderCancelled    = "OrderCancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "store-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	ProductType string `json:"product_type"`
	CustomerID  string `json:"customer_id"`
	Amount      int64  `json:"amount"`
}

type OrderCompletedPayload struct {
	OrderID      string       `json:"order_id"`
	DeliveryID   string       `json:"delivery_id"`
	DeliveryKind DeliveryKind `json:"delivery_kind"`
}

type FulfillmentFailedPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type OrderCancelledPayload struct {
	OrderID string `json:"order_id"`
}
