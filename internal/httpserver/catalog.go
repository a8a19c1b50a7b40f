package httpserver

import (
	"net/http"
	"strconv"

	"fixiestore/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *handler) listCategories(c *gin.Context) {
	categories, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// listProducts serves GET /products?category=&q=&featured=.
func (h *handler) listProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("q"),
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "featured must be true or false")
			return
		}
		filter.FeaturedOnly = featured
	}
	products, err := h.deps.CatalogSvc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

func (h *handler) getProduct(c *gin.Context) {
	product, err := h.deps.CatalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handler) relatedProducts(c *gin.Context) {
	products, err := h.deps.CatalogSvc.Related(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
