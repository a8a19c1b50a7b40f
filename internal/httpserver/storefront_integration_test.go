package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"fixiestore/internal/dbtest"
	"fixiestore/internal/domain"
	"fixiestore/internal/identity"
	"fixiestore/internal/messaging"
	cartrepo "fixiestore/internal/repository/cart"
	categoryrepo "fixiestore/internal/repository/category"
	orderrepo "fixiestore/internal/repository/order"
	productrepo "fixiestore/internal/repository/product"
	sessionrepo "fixiestore/internal/repository/session"
	userrepo "fixiestore/internal/repository/user"
	adminsvc "fixiestore/internal/service/admin"
	authsvc "fixiestore/internal/service/auth"
	cartsvc "fixiestore/internal/service/cart"
	catalogsvc "fixiestore/internal/service/catalog"
	categorysvc "fixiestore/internal/service/category"
	checkoutsvc "fixiestore/internal/service/checkout"
	guestsvc "fixiestore/internal/service/guest"

	"github.com/gin-gonic/gin"
)

func integrationEnv(t *testing.T) (*testEnv, productrepo.Repository) {
	t.Helper()
	pool := dbtest.Pool(t)
	logger := logDiscard()

	products := productrepo.NewPostgres(pool, logger)
	categories := categorysvc.New(categoryrepo.NewPostgres(pool))
	hub := identity.NewHub()
	carts := cartsvc.New(cartrepo.NewPostgres(pool, logger), products, nil, logger)
	t.Cleanup(hub.Subscribe(carts.HandleIdentity))

	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logger, pool, Deps{
		AuthSvc: authsvc.New(userrepo.NewPostgres(pool, logger), sessionrepo.NewPostgres(pool), hub, authsvc.Options{
			SessionTTL:  time.Hour,
			PasswordMin: 8,
			Logger:      logger,
		}),
		GuestSvc:    guestsvc.New(time.Hour),
		CatalogSvc:  catalogsvc.New(products),
		CategorySvc: categories,
		CartSvc:     carts,
		CheckoutSvc: checkoutsvc.New(carts, orderrepo.NewPostgres(pool, logger), messaging.NewLogPublisher(logger), nil,
			checkoutsvc.Fees{Regular: 0, Express: 25000}, logger),
		AdminSvc: adminsvc.New(products, categories, logger),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router}, products
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
	return v
}

func TestStorefront_IntegrationGuestToOrder(t *testing.T) {
	env, products := integrationEnv(t)
	ctx := context.Background()

	bike, err := products.Create(ctx, domain.Product{Name: "FixGear Pro Single Speed", Price: 2500000, Stock: 5, Category: "fixie", Brand: "FixGear"})
	if err != nil {
		t.Fatalf("create bike: %v", err)
	}
	tyre, err := products.Create(ctx, domain.Product{Name: "Ban Slick 700x25c", Price: 180000, Stock: 10, Category: "ban"})
	if err != nil {
		t.Fatalf("create tyre: %v", err)
	}

	rec := env.do(http.MethodGet, "/products?category=ban", "", nil)
	listed := decode[struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
	}](t, rec.Body.String())
	if rec.Code != http.StatusOK || listed.Total != 1 || listed.Products[0].ID != tyre.ID {
		t.Fatalf("unexpected category listing %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodPost, "/auth/guest", "", nil)
	guest := decode[guestResponse](t, rec.Body.String())
	guestHeaders := map[string]string{guestHeader: guest.Token}

	env.do(http.MethodPost, "/cart/lines", `{"productId":"`+bike.ID+`"}`, guestHeaders)
	rec = env.do(http.MethodPost, "/cart/lines", `{"productId":"`+tyre.ID+`","quantity":3}`, guestHeaders)
	guestCart := decode[cartResponse](t, rec.Body.String()).Cart
	if guestCart.Total != 2500000+3*180000 || guestCart.ItemCount != 4 {
		t.Fatalf("unexpected guest cart %+v", guestCart)
	}

	rec = env.do(http.MethodPost, "/auth/signup", `{"email":"rider@example.com","password":"Sepeda123","fullName":"Rider"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = env.do(http.MethodPost, "/auth/login", `{"email":"rider@example.com","password":"Sepeda123"}`, guestHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	session := decode[sessionResponse](t, rec.Body.String())
	user := bearer(session.Token)

	rec = env.do(http.MethodGet, "/cart", "", user)
	userCart := decode[cartResponse](t, rec.Body.String()).Cart
	if userCart.Total != guestCart.Total || len(userCart.Lines) != 2 {
		t.Fatalf("guest cart not merged: %+v", userCart)
	}
	if rec := env.do(http.MethodGet, "/cart", "", guestHeaders); rec.Code != http.StatusUnauthorized {
		t.Fatalf("guest session should end at sign-in, got %d", rec.Code)
	}

	rec = env.do(http.MethodPut, "/cart/lines/"+bike.ID, `{"quantity":0}`, user)
	afterSet := decode[cartResponse](t, rec.Body.String()).Cart
	if afterSet.Total != 3*180000 || afterSet.ItemCount != 3 {
		t.Fatalf("unexpected cart after setQuantity 0: %+v", afterSet)
	}

	rec = env.do(http.MethodPost, "/checkout", `{"shippingMethod":"express","paymentMethod":"ewallet"}`, user)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	placed := decode[struct {
		Order domain.Order `json:"order"`
	}](t, rec.Body.String()).Order
	if placed.TotalPrice != 3*180000+25000 || len(placed.Items) != 1 {
		t.Fatalf("unexpected order %+v", placed)
	}

	rec = env.do(http.MethodGet, "/cart", "", user)
	if cart := decode[cartResponse](t, rec.Body.String()).Cart; !cart.IsEmpty() || cart.Total != 0 {
		t.Fatalf("cart not cleared after checkout: %+v", cart)
	}
	rec = env.do(http.MethodGet, "/orders/"+placed.ID, "", user)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Ban Slick 700x25c") {
		t.Fatalf("order lookup: %d %s", rec.Code, rec.Body.String())
	}
	left, err := products.GetByID(ctx, tyre.ID)
	if err != nil || left.Stock != 7 {
		t.Fatalf("expected stock 7, got %+v err=%v", left, err)
	}
}

func TestCategories_IntegrationListsSeededNavigation(t *testing.T) {
	env, _ := integrationEnv(t)

	rec := env.do(http.MethodGet, "/categories", "", nil)
	got := decode[struct {
		Categories []domain.Category `json:"categories"`
	}](t, rec.Body.String())
	if rec.Code != http.StatusOK || len(got.Categories) != 7 || got.Categories[0].Key != "fixie" {
		t.Fatalf("unexpected categories %d %s", rec.Code, rec.Body.String())
	}
}
