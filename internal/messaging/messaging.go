// Package messaging publishes domain events to a broker.
package messaging

import (
	"context"
	"encoding/json"
	"time"
)

const (
	StreamOrders        = "ORDERS"
	SubjectOrdersPlaced = "orders.placed"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// OrderPlaced is emitted after an order and the matching cart clear have committed.
type OrderPlaced struct {
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	TotalPrice     int64     `json:"total_price"`
	ItemCount      int       `json:"item_count"`
	PaymentMethod  string    `json:"payment_method"`
	ShippingMethod string    `json:"shipping_method"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e OrderPlaced) Subject() string {
	return SubjectOrdersPlaced
}

func (e OrderPlaced) Payload() ([]byte, error) {
	return json.Marshal(e)
}
