package category

import (
	"context"

	"fixiestore/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Exists(ctx context.Context, key string) (bool, error)
}
