package orders

const (
	TopicOrderCreated      = "store.order.created"
	TopicOrderCompleted    = "store.order.completed"
	TopicFulfillmentFailed = "store.order.fulfill_failed"
	TopicOrderCancelled    = "store.order.cancelled"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
