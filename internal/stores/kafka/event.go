package kafka

import "time"

const (
	TopicOrderPlaced    = `order-service.order-placed`
	TopicOrderCancelled = `order-service.order-cancelled`
	TopicOrderPaid      = `order-service.order-paid`
)

// Events published after a transaction commits. Consumers (notifications,
// analytics) treat them as fire-and-forget signals.

type OrderPlacedEvent struct {
	OrderId     string    `json:"order_id"`
	UserId      string    `json:"user_id"`
	StoreId     string    `json:"store_id"`
	TotalAmount int64     `json:"total_amount"`
	TotalItems  int       `json:"total_items"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderCancelledEvent struct {
	OrderId   string    `json:"order_id"`
	UserId    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderPaidEvent struct {
	OrderId     string    `json:"order_id"`
	ProviderRef string    `json:"provider_ref"`
	CreatedAt   time.Time `json:"created_at"`
}
