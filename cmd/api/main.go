package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixiestore/internal/config"
	"fixiestore/internal/db"
	"fixiestore/internal/httpserver"
	"fixiestore/internal/identity"
	"fixiestore/internal/messaging"
	"fixiestore/internal/messaging/natspub"
	"fixiestore/internal/metrics"
	"fixiestore/internal/migrate"
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

	"github.com/sony/gobreaker/v2"
)

const sweepInterval = time.Minute

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	logger.Printf("config: %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	version, err := migrate.Apply(ctx, dbpool)
	if err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	logger.Printf("schema version %d", version)

	m := metrics.New()

	publisher, closePublisher := newPublisher(ctx, cfg, logger)
	defer closePublisher()

	hub := identity.NewHub()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger), productRepo, m, logger)
	authService := authsvc.New(userrepo.NewPostgres(dbpool, logger), sessionrepo.NewPostgres(dbpool), hub, authsvc.Options{
		SessionTTL:  cfg.SessionTTL,
		PasswordMin: cfg.PasswordMin,
		Logger:      logger,
	})
	guestService := guestsvc.New(cfg.GuestTTL)
	checkoutService := checkoutsvc.New(cartService, orderrepo.NewPostgres(dbpool, logger), publisher, m,
		checkoutsvc.Fees{Regular: cfg.RegularFee, Express: cfg.ExpressFee}, logger)

	unsubscribeCart := hub.Subscribe(cartService.HandleIdentity)
	defer unsubscribeCart()
	unsubscribeLog := hub.Subscribe(func(_ context.Context, ev identity.Event) error {
		logger.Printf("identity: %s user=%s guest=%s", ev.Kind, ev.UserID, ev.GuestID)
		return nil
	})
	defer unsubscribeLog()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AuthSvc:        authService,
		GuestSvc:       guestService,
		CatalogSvc:     catalogsvc.New(productRepo),
		CategorySvc:    categoryService,
		CartSvc:        cartService,
		CheckoutSvc:    checkoutService,
		AdminSvc:       adminsvc.New(productRepo, categoryService, logger),
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins(),
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	go sweep(ctx, logger, guestService, cartService, authService)

	if err := srv.Serve(ctx, cfg.ShutdownTimeout); err != nil {
		logger.Printf("server: %v", err)
	}
}

// newPublisher returns the order event publisher: JetStream when NATS_URL is set,
// otherwise a logger. Either way it sits behind a circuit breaker.
func newPublisher(ctx context.Context, cfg config.Config, logger *log.Logger) (messaging.Publisher, func()) {
	var (
		next    messaging.Publisher = messaging.NewLogPublisher(logger)
		closeFn                     = func() {}
	)
	if cfg.NATSURL != "" {
		nc, err := natspub.Connect(cfg.NATSURL, cfg.NATSTimeout)
		if err != nil {
			logger.Fatalf("connect nats: %v", err)
		}
		js, err := natspub.NewJetStream(ctx, nc)
		if err != nil {
			nc.Close()
			logger.Fatalf("init jetstream: %v", err)
		}
		next = natspub.NewPublisher(js)
		closeFn = func() {
			if err := nc.Drain(); err != nil {
				logger.Printf("drain nats: %v", err)
			}
		}
		logger.Printf("publishing order events to %s", cfg.NATSURL)
	}

	return messaging.NewBreakerPublisher(next, messaging.BreakerSettings{
		Name:                "order-events",
		ConsecutiveFailures: cfg.BreakerTrips,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("breaker %s: %s -> %s", name, from, to)
		},
	}), closeFn
}

// sweep expires idle guest sessions along with their carts and purges ended
// user sessions until ctx is cancelled.
func sweep(ctx context.Context, logger *log.Logger, guests *guestsvc.Service, carts *cartsvc.Service, auth *authsvc.Service) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if expired := guests.Sweep(ctx); len(expired) > 0 {
			carts.ForgetGuests(expired)
			logger.Printf("sweep: dropped %d guest sessions", len(expired))
		}
		if n, err := auth.PurgeExpired(ctx); err != nil {
			logger.Printf("sweep: purge sessions: %v", err)
		} else if n > 0 {
			logger.Printf("sweep: purged %d sessions", n)
		}
	}
}
