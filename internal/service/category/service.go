package category

import (
	"context"

	"fixiestore/internal/domain"
)

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type Service struct {
	repo categoryRepo
}

func New(repo categoryRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Category{}
	}
	return list, nil
}

func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, key)
}
