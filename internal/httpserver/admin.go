package httpserver

import (
	"net/http"

	adminsvc "fixiestore/internal/service/admin"

	"github.com/gin-gonic/gin"
)

func (h *handler) adminListProducts(c *gin.Context) {
	products, err := h.deps.AdminSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *handler) adminCreateProduct(c *gin.Context) {
	form, err := adminsvc.ParseProductForm(c.Request.Body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	product, err := h.deps.AdminSvc.Create(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *handler) adminUpdateProduct(c *gin.Context) {
	form, err := adminsvc.ParseProductForm(c.Request.Body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	product, err := h.deps.AdminSvc.Update(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handler) adminDeleteProduct(c *gin.Context) {
	if err := h.deps.AdminSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
