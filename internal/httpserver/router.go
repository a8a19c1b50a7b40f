package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"fixiestore/internal/domain"
	"fixiestore/internal/metrics"
	adminsvc "fixiestore/internal/service/admin"
	authsvc "fixiestore/internal/service/auth"
	cartsvc "fixiestore/internal/service/cart"
	checkoutsvc "fixiestore/internal/service/checkout"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthService interface {
	SignUp(ctx context.Context, in authsvc.SignupInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password, guestID string) (*authsvc.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	SessionTTLSeconds() int
}

type GuestService interface {
	Issue(ctx context.Context) (token, guestID string, err error)
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string)
	TTLSeconds() int
}

type CatalogService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Related(ctx context.Context, id string) ([]domain.Product, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type CartService interface {
	Get(ctx context.Context, owner cartsvc.Owner) (domain.Cart, error)
	Add(ctx context.Context, owner cartsvc.Owner, productID string, quantity int) (domain.Cart, error)
	SetQuantity(ctx context.Context, owner cartsvc.Owner, productID string, quantity int) (domain.Cart, error)
	Remove(ctx context.Context, owner cartsvc.Owner, productID string) (domain.Cart, error)
	Clear(ctx context.Context, owner cartsvc.Owner) (domain.Cart, error)
}

type CheckoutService interface {
	ShippingOptions() []checkoutsvc.Option
	PaymentOptions() []checkoutsvc.Option
	Quote(ctx context.Context, userID, shippingMethod string) (checkoutsvc.Quote, error)
	Submit(ctx context.Context, userID string, in checkoutsvc.Input) (*domain.Order, error)
	Orders(ctx context.Context, userID string) ([]domain.Order, error)
	Order(ctx context.Context, userID, id string) (*domain.Order, error)
}

type AdminService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, form adminsvc.ProductForm) (*domain.Product, error)
	Update(ctx context.Context, id string, form adminsvc.ProductForm) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Deps carries the services behind the API. Metrics may be nil.
type Deps struct {
	AuthSvc        AuthService
	GuestSvc       GuestService
	CatalogSvc     CatalogService
	CategorySvc    CategoryService
	CartSvc        CartService
	CheckoutSvc    CheckoutService
	AdminSvc       AdminService
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.AuthSvc == nil:
		return errors.New("httpserver: auth service is required")
	case d.GuestSvc == nil:
		return errors.New("httpserver: guest service is required")
	case d.CatalogSvc == nil:
		return errors.New("httpserver: catalog service is required")
	case d.CategorySvc == nil:
		return errors.New("httpserver: category service is required")
	case d.CartSvc == nil:
		return errors.New("httpserver: cart service is required")
	case d.CheckoutSvc == nil:
		return errors.New("httpserver: checkout service is required")
	case d.AdminSvc == nil:
		return errors.New("httpserver: admin service is required")
	}
	return nil
}

type handler struct {
	deps   Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", guestHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handler{deps: deps, logger: logger}
	signedIn := requireUser(deps.AuthSvc, logger)

	auth := router.Group("/auth")
	auth.POST("/guest", h.issueGuest)
	auth.POST("/signup", h.signup)
	auth.POST("/login", h.login)
	auth.POST("/logout", signedIn, h.logout)
	router.GET("/me", signedIn, h.me)

	router.GET("/categories", h.listCategories)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/products/:id/related", h.relatedProducts)

	cart := router.Group("/cart", cartOwner(deps.AuthSvc, deps.GuestSvc, logger))
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/lines", h.addLine)
	cart.PUT("/lines/:productId", h.setLineQuantity)
	cart.DELETE("/lines/:productId", h.removeLine)

	router.GET("/checkout/options", h.checkoutOptions)
	checkout := router.Group("/checkout", signedIn)
	checkout.POST("/quote", h.quote)
	checkout.POST("", h.submitOrder)

	orders := router.Group("/orders", signedIn)
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)

	admin := router.Group("/admin", signedIn, requireAdmin(logger))
	admin.GET("/products", h.adminListProducts)
	admin.POST("/products", h.adminCreateProduct)
	admin.PUT("/products/:id", h.adminUpdateProduct)
	admin.DELETE("/products/:id", h.adminDeleteProduct)

	return router, nil
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
