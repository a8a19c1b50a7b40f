package order

import (
	"context"

	"fixiestore/internal/domain"
)

type Repository interface {
	// PlaceFromCart stores the order with its items, takes the ordered units out of
	// stock and out of the user's cart, all in one transaction.
	PlaceFromCart(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Order, error)
}
