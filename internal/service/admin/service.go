// Package admin manages the product catalog on behalf of administrators.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"fixiestore/internal/domain"

	"github.com/google/uuid"
)

var ErrForbidden = errors.New("admin access required")

type productRepo interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type categoryChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

type Service struct {
	products   productRepo
	categories categoryChecker
	logger     *log.Logger
}

func New(products productRepo, categories categoryChecker, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{products: products, categories: categories, logger: logger}
}

// Authorize returns ErrForbidden unless u is an administrator.
func Authorize(u *domain.User) error {
	if u == nil || !u.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// List returns every product, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	list, err := s.products.List(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Product{}
	}
	return list, nil
}

func (s *Service) Create(ctx context.Context, form ProductForm) (*domain.Product, error) {
	if err := s.check(ctx, "", form); err != nil {
		return nil, err
	}
	p, err := s.products.Create(ctx, form.product(""))
	if err != nil {
		return nil, err
	}
	s.logger.Printf("admin: created product id=%s name=%q", p.ID, p.Name)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, form ProductForm) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	if err := s.check(ctx, id, form); err != nil {
		return nil, err
	}
	p, err := s.products.Update(ctx, form.product(id))
	if err != nil {
		return nil, err
	}
	s.logger.Printf("admin: updated product id=%s", p.ID)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("admin: deleted product id=%s", id)
	return nil
}

// check applies the rules that need the store: a known category and related
// products that exist and are not the product itself.
func (s *Service) check(ctx context.Context, id string, form ProductForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	ferr := &FormError{}
	if form.Category != "" {
		ok, err := s.categories.Exists(ctx, form.Category)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			ferr.Fields = append(ferr.Fields, FieldError{Field: "category", Message: "unknown category " + form.Category})
		}
	}
	for i, rid := range form.RelatedProducts {
		field := fmt.Sprintf("relatedProducts[%d]", i)
		if rid == id {
			ferr.Fields = append(ferr.Fields, FieldError{Field: field, Message: "cannot reference the product itself"})
			continue
		}
		if _, err := s.products.GetByID(ctx, rid); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				ferr.Fields = append(ferr.Fields, FieldError{Field: field, Message: "product does not exist"})
				continue
			}
			return fmt.Errorf("check related product: %w", err)
		}
	}
	if len(ferr.Fields) > 0 {
		return ferr
	}
	return nil
}
