package orders

const (
	TopicOrderSubmitted = "order.submitted"
	TopicOrderUpdated   = "order.updated"
)

// Partition key = order id so all events for one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
