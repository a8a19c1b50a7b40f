package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"fixiestore/internal/domain"
	adminsvc "fixiestore/internal/service/admin"
	authsvc "fixiestore/internal/service/auth"
	cartsvc "fixiestore/internal/service/cart"

	"github.com/gin-gonic/gin"
)

// guestHeader carries a guest session token alongside, or instead of, a bearer token.
const guestHeader = "X-Guest-Token"

type ctxKey string

const (
	userCtxKey  ctxKey = "user"
	tokenCtxKey ctxKey = "token"
	ownerCtxKey ctxKey = "cartOwner"
)

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// requireUser resolves the bearer token to a user or answers 401.
func requireUser(auth AuthService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		user, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			respondError(c, logger, err)
			c.Abort()
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, user)
		ctx = context.WithValue(ctx, tokenCtxKey, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requireAdmin(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := adminsvc.Authorize(currentUser(c)); err != nil {
			respondError(c, logger, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// cartOwner picks whose cart a request touches: the signed-in user when the bearer
// token is a session, otherwise the guest named by X-Guest-Token or by the bearer
// token itself.
func cartOwner(auth AuthService, guests GuestService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		owner, err := resolveOwner(ctx, c, auth, guests)
		if err != nil {
			respondError(c, logger, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(ctx, ownerCtxKey, owner))
		c.Next()
	}
}

func resolveOwner(ctx context.Context, c *gin.Context, auth AuthService, guests GuestService) (cartsvc.Owner, error) {
	if token := bearerToken(c); token != "" {
		user, err := auth.CurrentUser(ctx, token)
		if err == nil {
			return cartsvc.UserOwner(user.ID), nil
		}
		if !errors.Is(err, authsvc.ErrInvalidToken) {
			return cartsvc.Owner{}, err
		}
		if c.GetHeader(guestHeader) == "" {
			guestID, gerr := guests.Lookup(ctx, token)
			if gerr != nil {
				return cartsvc.Owner{}, authsvc.ErrInvalidToken
			}
			return cartsvc.GuestOwner(guestID), nil
		}
	}
	if token := strings.TrimSpace(c.GetHeader(guestHeader)); token != "" {
		guestID, err := guests.Lookup(ctx, token)
		if err != nil {
			return cartsvc.Owner{}, err
		}
		return cartsvc.GuestOwner(guestID), nil
	}
	return cartsvc.Owner{}, cartsvc.ErrNoOwner
}

func currentUser(c *gin.Context) *domain.User {
	u, _ := c.Request.Context().Value(userCtxKey).(*domain.User)
	return u
}

func currentToken(c *gin.Context) string {
	t, _ := c.Request.Context().Value(tokenCtxKey).(string)
	return t
}

func currentOwner(c *gin.Context) cartsvc.Owner {
	o, _ := c.Request.Context().Value(ownerCtxKey).(cartsvc.Owner)
	return o
}
