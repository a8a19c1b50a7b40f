// Package cart applies cart operations for signed-in users, whose carts are
// persisted, and for guests, whose carts live in process memory.
package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"fixiestore/internal/domain"
	"fixiestore/internal/identity"
	cartrepo "fixiestore/internal/repository/cart"

	"github.com/google/uuid"
)

var (
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNoOwner         = errors.New("cart owner required")
)

type cartRepo interface {
	ListItems(ctx context.Context, userID string) ([]cartrepo.Item, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	AddItems(ctx context.Context, userID string, items []cartrepo.Item) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

type recorder interface {
	CartMutation(op string, guest bool)
}

// Owner identifies whose cart an operation targets. Exactly one field is set.
type Owner struct {
	UserID  string
	GuestID string
}

func UserOwner(id string) Owner  { return Owner{UserID: id} }
func GuestOwner(id string) Owner { return Owner{GuestID: id} }

func (o Owner) IsGuest() bool { return o.UserID == "" && o.GuestID != "" }

func (o Owner) valid() bool { return o.UserID != "" || o.GuestID != "" }

type Service struct {
	repo     cartRepo
	products productRepo
	guests   *guestStore
	metrics  recorder
	logger   *log.Logger
}

func New(repo cartRepo, products productRepo, metrics recorder, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:     repo,
		products: products,
		guests:   newGuestStore(),
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *Service) Get(ctx context.Context, owner Owner) (domain.Cart, error) {
	if !owner.valid() {
		return domain.Cart{}, ErrNoOwner
	}
	if owner.IsGuest() {
		return s.guests.get(owner.GuestID), nil
	}
	return s.load(ctx, owner.UserID)
}

// Add puts quantity units of a product into the cart, merging with an existing line.
func (s *Service) Add(ctx context.Context, owner Owner, productID string, quantity int) (domain.Cart, error) {
	if !owner.valid() {
		return domain.Cart{}, ErrNoOwner
	}
	if quantity < 1 {
		return domain.Cart{}, ErrInvalidQuantity
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !product.InStock() {
		return domain.Cart{}, ErrOutOfStock
	}

	if owner.IsGuest() {
		next := s.guests.update(owner.GuestID, func(c domain.Cart) domain.Cart {
			return c.AddLine(*product, quantity)
		})
		s.record("add", owner)
		return next, nil
	}
	if err := s.repo.AddItem(ctx, owner.UserID, product.ID, quantity); err != nil {
		return domain.Cart{}, fmt.Errorf("add cart item: %w", err)
	}
	s.record("add", owner)
	return s.load(ctx, owner.UserID)
}

// SetQuantity replaces a line's quantity. Zero removes the line; a product that is
// not in the cart is left alone.
func (s *Service) SetQuantity(ctx context.Context, owner Owner, productID string, quantity int) (domain.Cart, error) {
	if !owner.valid() {
		return domain.Cart{}, ErrNoOwner
	}
	if quantity < 0 {
		return domain.Cart{}, ErrInvalidQuantity
	}
	if _, err := uuid.Parse(productID); err != nil {
		return s.Get(ctx, owner)
	}

	if owner.IsGuest() {
		next := s.guests.update(owner.GuestID, func(c domain.Cart) domain.Cart {
			return c.SetQuantity(productID, quantity)
		})
		s.record("set_quantity", owner)
		return next, nil
	}
	if err := s.repo.SetQuantity(ctx, owner.UserID, productID, quantity); err != nil {
		return domain.Cart{}, fmt.Errorf("set cart quantity: %w", err)
	}
	s.record("set_quantity", owner)
	return s.load(ctx, owner.UserID)
}

func (s *Service) Remove(ctx context.Context, owner Owner, productID string) (domain.Cart, error) {
	if !owner.valid() {
		return domain.Cart{}, ErrNoOwner
	}
	if _, err := uuid.Parse(productID); err != nil {
		return s.Get(ctx, owner)
	}

	if owner.IsGuest() {
		next := s.guests.update(owner.GuestID, func(c domain.Cart) domain.Cart {
			return c.RemoveLine(productID)
		})
		s.record("remove", owner)
		return next, nil
	}
	if err := s.repo.RemoveItem(ctx, owner.UserID, productID); err != nil {
		return domain.Cart{}, fmt.Errorf("remove cart item: %w", err)
	}
	s.record("remove", owner)
	return s.load(ctx, owner.UserID)
}

func (s *Service) Clear(ctx context.Context, owner Owner) (domain.Cart, error) {
	if !owner.valid() {
		return domain.Cart{}, ErrNoOwner
	}

	if owner.IsGuest() {
		next := s.guests.update(owner.GuestID, domain.Cart.Clear)
		s.record("clear", owner)
		return next, nil
	}
	if err := s.repo.Clear(ctx, owner.UserID); err != nil {
		return domain.Cart{}, fmt.Errorf("clear cart: %w", err)
	}
	s.record("clear", owner)
	return domain.EmptyCart(), nil
}

// MergeGuest moves a guest cart into the user's persisted cart. Quantities of
// products present in both are added together. The guest cart is restored when the
// write fails.
func (s *Service) MergeGuest(ctx context.Context, guestID, userID string) error {
	guestCart := s.guests.take(guestID)
	if guestCart.IsEmpty() {
		return nil
	}
	items := make([]cartrepo.Item, 0, len(guestCart.Lines))
	for _, line := range guestCart.Lines {
		items = append(items, cartrepo.Item{ProductID: line.Product.ID, Quantity: line.Quantity})
	}
	if err := s.repo.AddItems(ctx, userID, items); err != nil {
		s.guests.put(guestID, guestCart)
		return fmt.Errorf("merge guest cart: %w", err)
	}
	s.record("merge", UserOwner(userID))
	s.logger.Printf("cart: merged guest=%s into user=%s lines=%d", guestID, userID, len(items))
	return nil
}

// HandleIdentity reacts to identity events. Subscribe it on the identity hub.
func (s *Service) HandleIdentity(ctx context.Context, ev identity.Event) error {
	if ev.Kind == identity.SignedIn && ev.GuestID != "" && ev.UserID != "" {
		return s.MergeGuest(ctx, ev.GuestID, ev.UserID)
	}
	return nil
}

// ForgetGuests drops the carts of expired guest sessions.
func (s *Service) ForgetGuests(guestIDs []string) {
	for _, id := range guestIDs {
		s.guests.take(id)
	}
}

// load rebuilds a user's cart from its rows. Rows whose product has disappeared are skipped.
func (s *Service) load(ctx context.Context, userID string) (domain.Cart, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list cart items: %w", err)
	}
	if len(items) == 0 {
		return domain.EmptyCart(), nil
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		if p, ok := byID[it.ProductID]; ok {
			lines = append(lines, domain.CartLine{Product: p, Quantity: it.Quantity})
		}
	}
	return domain.NewCart(lines), nil
}

func (s *Service) product(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.products.GetByID(ctx, id)
}

func (s *Service) record(op string, owner Owner) {
	if s.metrics != nil {
		s.metrics.CartMutation(op, owner.IsGuest())
	}
}
