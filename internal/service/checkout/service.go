// Package checkout prices a signed-in user's cart with the chosen shipping method
// and turns it into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"fixiestore/internal/domain"
	"fixiestore/internal/messaging"
	cartsvc "fixiestore/internal/service/cart"

	"github.com/go-playground/validator/v10"
)

const (
	ShippingRegular = "regular"
	ShippingExpress = "express"

	PaymentTransfer = "transfer"
	PaymentEWallet  = "ewallet"
	PaymentCOD      = "cod"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrUnauthorized = errors.New("sign in to check out")
)

type cartReader interface {
	Get(ctx context.Context, owner cartsvc.Owner) (domain.Cart, error)
}

type orderRepo interface {
	PlaceFromCart(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Order, error)
}

type recorder interface {
	OrderPlaced(total int64)
	EventPublished(subject string, err error)
}

// Fees are the shipping charges in IDR. Regular is a flat rate, usually zero.
type Fees struct {
	Regular int64
	Express int64
}

type Address struct {
	Recipient  string `json:"recipient" validate:"omitempty,max=120"`
	Phone      string `json:"phone" validate:"omitempty,max=20,numeric"`
	Street     string `json:"street" validate:"required_with=City PostalCode,max=300"`
	City       string `json:"city" validate:"required_with=Street,max=120"`
	PostalCode string `json:"postalCode" validate:"omitempty,numeric,len=5"`
}

func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Recipient, a.Phone, a.Street, a.City, a.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Input is the shopper's selection. Empty methods fall back to regular shipping
// and bank transfer.
type Input struct {
	ShippingMethod string  `json:"shippingMethod" validate:"oneof=regular express"`
	PaymentMethod  string  `json:"paymentMethod" validate:"oneof=transfer ewallet cod"`
	Address        Address `json:"address"`
}

type Quote struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shippingFee"`
	Total       int64 `json:"total"`
	ItemCount   int   `json:"itemCount"`
}

type Option struct {
	Method      string `json:"method"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Fee         int64  `json:"fee"`
}

type Service struct {
	carts     cartReader
	orders    orderRepo
	publisher messaging.Publisher
	metrics   recorder
	logger    *log.Logger
	fees      Fees
	validate  *validator.Validate
}

func New(carts cartReader, orders orderRepo, publisher messaging.Publisher, metrics recorder, fees Fees, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		fees:      fees,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) ShippingOptions() []Option {
	return []Option{
		{Method: ShippingRegular, Label: "Regular", Description: "5-7 hari kerja", Fee: s.fees.Regular},
		{Method: ShippingExpress, Label: "Express", Description: "1-2 hari kerja", Fee: s.fees.Express},
	}
}

func (s *Service) PaymentOptions() []Option {
	return []Option{
		{Method: PaymentTransfer, Label: "Transfer Bank", Description: "BCA, Mandiri, BNI, BRI"},
		{Method: PaymentEWallet, Label: "E-Wallet", Description: "GoPay, OVO, DANA, ShopeePay"},
		{Method: PaymentCOD, Label: "COD", Description: "Bayar saat barang diterima"},
	}
}

// ShippingFee returns the fee for method. Unknown methods are rejected.
func (s *Service) ShippingFee(method string) (int64, error) {
	switch method {
	case ShippingRegular:
		return s.fees.Regular, nil
	case ShippingExpress:
		return s.fees.Express, nil
	}
	return 0, fmt.Errorf("%w: unknown shipping method %q", domain.ErrInvalid, method)
}

// Quote prices the user's current cart. An empty cart quotes zero plus the fee.
func (s *Service) Quote(ctx context.Context, userID, shippingMethod string) (Quote, error) {
	if userID == "" {
		return Quote{}, ErrUnauthorized
	}
	if shippingMethod == "" {
		shippingMethod = ShippingRegular
	}
	fee, err := s.ShippingFee(shippingMethod)
	if err != nil {
		return Quote{}, err
	}
	cart, err := s.carts.Get(ctx, cartsvc.UserOwner(userID))
	if err != nil {
		return Quote{}, err
	}
	return quote(cart, fee), nil
}

// Submit places an order for the user's cart. The order rows and the cart clear
// commit together; the order event afterwards is best effort.
func (s *Service) Submit(ctx context.Context, userID string, in Input) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	in = normalize(in)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, describe(err))
	}
	fee, err := s.ShippingFee(in.ShippingMethod)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, cartsvc.UserOwner(userID))
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	q := quote(cart, fee)

	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, domain.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
			LineTotal:   line.Product.Price * int64(line.Quantity),
		})
	}

	order, err := s.orders.PlaceFromCart(ctx, domain.Order{
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		PaymentMethod:   in.PaymentMethod,
		ShippingMethod:  in.ShippingMethod,
		ShippingAddress: in.Address.String(),
		Subtotal:        q.Subtotal,
		ShippingFee:     q.ShippingFee,
		TotalPrice:      q.Total,
		Items:           items,
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	if s.metrics != nil {
		s.metrics.OrderPlaced(order.TotalPrice)
	}
	s.logger.Printf("checkout: order=%s user=%s total=%d", order.ID, userID, order.TotalPrice)

	s.announce(ctx, order, cart.ItemCount)
	return order, nil
}

// Orders returns the user's order history, newest first.
func (s *Service) Orders(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) Order(ctx context.Context, userID, id string) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.orders.GetByID(ctx, userID, id)
}

func (s *Service) announce(ctx context.Context, order *domain.Order, itemCount int) {
	if s.publisher == nil {
		return
	}
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	ev := messaging.OrderPlaced{
		OrderID:        order.ID,
		UserID:         order.UserID,
		TotalPrice:     order.TotalPrice,
		ItemCount:      itemCount,
		PaymentMethod:  order.PaymentMethod,
		ShippingMethod: order.ShippingMethod,
		CreatedAt:      createdAt,
	}
	err := s.publisher.Publish(ctx, ev)
	if s.metrics != nil {
		s.metrics.EventPublished(ev.Subject(), err)
	}
	if err != nil {
		s.logger.Printf("checkout: publish order=%s error=%v", order.ID, err)
	}
}

func quote(cart domain.Cart, fee int64) Quote {
	return Quote{
		Subtotal:    cart.Total,
		ShippingFee: fee,
		Total:       cart.Total + fee,
		ItemCount:   cart.ItemCount,
	}
}

func normalize(in Input) Input {
	in.ShippingMethod = strings.ToLower(strings.TrimSpace(in.ShippingMethod))
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if in.ShippingMethod == "" {
		in.ShippingMethod = ShippingRegular
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentTransfer
	}
	in.Address.Recipient = strings.TrimSpace(in.Address.Recipient)
	in.Address.Phone = strings.TrimSpace(in.Address.Phone)
	in.Address.Street = strings.TrimSpace(in.Address.Street)
	in.Address.City = strings.TrimSpace(in.Address.City)
	in.Address.PostalCode = strings.TrimSpace(in.Address.PostalCode)
	return in
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
