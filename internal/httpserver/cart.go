package httpserver

import (
	"net/http"

	"fixiestore/internal/domain"

	"github.com/gin-gonic/gin"
)

type addLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type cartResponse struct {
	Cart domain.Cart `json:"cart"`
}

func (h *handler) getCart(c *gin.Context) {
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), currentOwner(c))
	h.writeCart(c, cart, err)
}

func (h *handler) addLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	cart, err := h.deps.CartSvc.Add(c.Request.Context(), currentOwner(c), req.ProductID, quantity)
	h.writeCart(c, cart, err)
}

func (h *handler) setLineQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	cart, err := h.deps.CartSvc.SetQuantity(c.Request.Context(), currentOwner(c), c.Param("productId"), *req.Quantity)
	h.writeCart(c, cart, err)
}

func (h *handler) removeLine(c *gin.Context) {
	cart, err := h.deps.CartSvc.Remove(c.Request.Context(), currentOwner(c), c.Param("productId"))
	h.writeCart(c, cart, err)
}

func (h *handler) clearCart(c *gin.Context) {
	cart, err := h.deps.CartSvc.Clear(c.Request.Context(), currentOwner(c))
	h.writeCart(c, cart, err)
}

func (h *handler) writeCart(c *gin.Context, cart domain.Cart, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	c.JSON(http.StatusOK, cartResponse{Cart: cart})
}
