package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Server is the storefront HTTP front end.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a Server serving the storefront API on addr. db backs the readiness
// probe only; handlers reach the store through deps.
func New(addr string, logger *log.Logger, db *pgxpool.Pool, deps Deps) (*Server, error) {
	router, err := buildRouter(logger, db, deps)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// Serve accepts requests until ctx is cancelled or the listener fails, then gives
// in-flight requests up to grace to finish. A clean stop returns nil.
func (s *Server) Serve(ctx context.Context, grace time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		s.logger.Printf("storefront listening on %s", s.httpServer.Addr)
		listenErr <- s.httpServer.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Printf("storefront shutdown requested")
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		runErr = fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Printf("storefront shutdown cut short: %v", err)
		if runErr == nil {
			runErr = fmt.Errorf("shutdown: %w", err)
		}
		return runErr
	}
	if runErr == nil {
		s.logger.Printf("storefront stopped, open requests drained")
	}
	return runErr
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "fixiestore"})
}

// readyHandler reports whether the catalog store answers.
func readyHandler(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "store not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "store not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
