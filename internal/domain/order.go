package domain

import "time"

const OrderStatusPending = "pending"

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Status          string      `json:"status"`
	PaymentMethod   string      `json:"paymentMethod"`
	ShippingMethod  string      `json:"shippingMethod"`
	ShippingAddress string      `json:"shippingAddress,omitempty"`
	Subtotal        int64       `json:"subtotal"`
	ShippingFee     int64       `json:"shippingFee"`
	TotalPrice      int64       `json:"totalPrice"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem freezes the product name and price at the time of purchase.
type OrderItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"lineTotal"`
}
