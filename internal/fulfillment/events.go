package fulfillment

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/aririzq/panelstore/internal/kafka"
	"github.com/aririzq/panelstore/internal/orders"
)

// Publisher dipenuhi kafkax.Producer. Satu producer per topic, ikut pola
// producer terpisah per event keluaran.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Events: stream lifecycle order utk rekonsiliasi/audit. Semua field boleh
// nil — publish jadi no-op, penemuan settlement tetap murni pull-based.
type Events struct {
	Created   Publisher
	Completed Publisher
	Failed    Publisher
	Cancelled Publisher
	Service   string
}

func (e *Events) publish(p Publisher, eventType, orderID string, payload any) {
	if e == nil || p == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (e *Events) OrderCreated(o *orders.Order) {
	if e == nil {
		return
	}
	pid := ""
	if o.ProductID != nil {
		pid = *o.ProductID
	}
	e.publish(e.Created, orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
		OrderID:     o.ID,
		ProductID:   pid,
		ProductType: string(o.Snapshot.Type),
		CustomerID:  o.CustomerID,
		Amount:      o.Amount,
	})
}

func (e *Events) OrderCompleted(orderID string, d *orders.Delivery) {
	if e == nil {
		return
	}
	e.publish(e.Completed, orders.EventOrderCompleted, orderID, orders.OrderCompletedPayload{
		OrderID:      orderID,
		DeliveryID:   d.ID,
		DeliveryKind: d.Kind,
	})
}

func (e *Events) FulfillmentFailed(orderID, reason string) {
	if e == nil {
		return
	}
	e.publish(e.Failed, orders.EventFulfillmentFailed, orderID, orders.FulfillmentFailedPayload{
		OrderID: orderID,
		Reason:  reason,
	})
}

func (e *Events) OrderCancelled(orderID string) {
	if e == nil {
		return
	}
	e.publish(e.Cancelled, orders.EventOrderCancelled, orderID, orders.OrderCancelledPayload{
		OrderID: orderID,
	})
}
