package cart

import (
	"context"
	"time"
)

// Item is one persisted cart row. Product data is joined by the service.
type Item struct {
	ProductID string
	Quantity  int
	CreatedAt time.Time
}

// Repository persists signed-in users' carts, one row per user and product.
type Repository interface {
	ListItems(ctx context.Context, userID string) ([]Item, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	AddItems(ctx context.Context, userID string, items []Item) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}
