package httpserver

import (
	"net/http"

	checkoutsvc "fixiestore/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	ShippingMethod string `json:"shippingMethod"`
}

func (h *handler) checkoutOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"shipping": h.deps.CheckoutSvc.ShippingOptions(),
		"payment":  h.deps.CheckoutSvc.PaymentOptions(),
	})
}

func (h *handler) quote(c *gin.Context) {
	var req quoteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid quote body")
			return
		}
	}
	q, err := h.deps.CheckoutSvc.Quote(c.Request.Context(), currentUser(c).ID, req.ShippingMethod)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *handler) submitOrder(c *gin.Context) {
	var in checkoutsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid checkout body")
		return
	}
	order, err := h.deps.CheckoutSvc.Submit(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *handler) listOrders(c *gin.Context) {
	orders, err := h.deps.CheckoutSvc.Orders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handler) getOrder(c *gin.Context) {
	order, err := h.deps.CheckoutSvc.Order(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
