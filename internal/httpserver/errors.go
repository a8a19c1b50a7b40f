package httpserver

import (
	"errors"
	"log"
	"net/http"

	"fixiestore/internal/domain"
	adminsvc "fixiestore/internal/service/admin"
	authsvc "fixiestore/internal/service/auth"
	cartsvc "fixiestore/internal/service/cart"
	checkoutsvc "fixiestore/internal/service/checkout"
	guestsvc "fixiestore/internal/service/guest"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to a status and a {"error": ...} body. Anything
// unrecognised is logged and answered with 500.
func respondError(c *gin.Context, logger *log.Logger, err error) {
	var formErr *adminsvc.FormError
	if errors.As(err, &formErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": formErr.Error(), "fields": formErr.Fields})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalid),
		errors.Is(err, cartsvc.ErrInvalidQuantity),
		errors.Is(err, checkoutsvc.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, cartsvc.ErrOutOfStock),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrInvalidToken),
		errors.Is(err, guestsvc.ErrInvalidToken),
		errors.Is(err, checkoutsvc.ErrUnauthorized),
		errors.Is(err, cartsvc.ErrNoOwner):
		return http.StatusUnauthorized
	case errors.Is(err, adminsvc.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
