package httpserver

import (
	"context"
	"net/http"
	"strings"

	"fixiestore/internal/domain"
	authsvc "fixiestore/internal/service/auth"
	cartsvc "fixiestore/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"`
	User      *domain.User `json:"user"`
}

type guestResponse struct {
	Token     string `json:"token"`
	GuestID   string `json:"guestId"`
	ExpiresIn int    `json:"expiresIn"`
}

func (h *handler) issueGuest(c *gin.Context) {
	token, guestID, err := h.deps.GuestSvc.Issue(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, guestResponse{Token: token, GuestID: guestID, ExpiresIn: h.deps.GuestSvc.TTLSeconds()})
}

func (h *handler) signup(c *gin.Context) {
	var req authsvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid signup body")
		return
	}
	user, err := h.deps.AuthSvc.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// login opens a session. A valid X-Guest-Token hands the guest cart over to the
// user and ends the guest session once the hand-over went through.
func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	ctx := c.Request.Context()

	guestToken := strings.TrimSpace(c.GetHeader(guestHeader))
	guestID := ""
	if guestToken != "" {
		if id, err := h.deps.GuestSvc.Lookup(ctx, guestToken); err == nil {
			guestID = id
		}
	}

	session, err := h.deps.AuthSvc.SignIn(ctx, req.Email, req.Password, guestID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if guestID != "" {
		h.endGuestSession(ctx, guestToken, guestID)
	}
	c.JSON(http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresIn: h.deps.AuthSvc.SessionTTLSeconds(),
		User:      session.User,
	})
}

func (h *handler) logout(c *gin.Context) {
	if err := h.deps.AuthSvc.SignOut(c.Request.Context(), currentToken(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// endGuestSession revokes the guest token when the guest cart is gone. A cart that
// is still there failed to merge; the token stays so the shopper can retry and the
// sweeper drops both on expiry.
func (h *handler) endGuestSession(ctx context.Context, token, guestID string) {
	left, err := h.deps.CartSvc.Get(ctx, cartsvc.GuestOwner(guestID))
	if err != nil {
		h.logger.Printf("login: read guest cart %s: %v", guestID, err)
		return
	}
	if !left.IsEmpty() {
		h.logger.Printf("login: guest cart %s not merged, keeping guest session", guestID)
		return
	}
	h.deps.GuestSvc.Revoke(ctx, token)
}
