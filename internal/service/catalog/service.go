package catalog

import (
	"context"
	"strings"

	"fixiestore/internal/domain"

	"github.com/google/uuid"
)

// relatedFallback caps the same-category suggestions shown when a product names no related products.
const relatedFallback = 4

type productRepo interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

type Service struct {
	repo productRepo
}

func New(repo productRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.Search = strings.TrimSpace(filter.Search)
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Related returns the products listed on the product itself, in listed order, or
// other products from its category when it lists none.
func (s *Service) Related(ctx context.Context, id string) ([]domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(p.RelatedProducts) > 0 {
		found, err := s.repo.GetByIDs(ctx, p.RelatedProducts)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]domain.Product, len(found))
		for _, r := range found {
			byID[r.ID] = r
		}
		out := make([]domain.Product, 0, len(found))
		for _, rid := range p.RelatedProducts {
			if r, ok := byID[rid]; ok && rid != p.ID {
				out = append(out, r)
				delete(byID, rid)
			}
		}
		return out, nil
	}

	out := []domain.Product{}
	if p.Category == "" {
		return out, nil
	}
	sameCategory, err := s.repo.List(ctx, domain.ProductFilter{Category: p.Category})
	if err != nil {
		return nil, err
	}
	for _, r := range sameCategory {
		if r.ID == p.ID {
			continue
		}
		out = append(out, r)
		if len(out) == relatedFallback {
			break
		}
	}
	return out, nil
}
