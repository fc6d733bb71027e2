package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

func dealsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 20)
		deals, err := svc.Deals(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deals"})
			return
		}
		if deals == nil {
			deals = []domain.Product{}
		}
		c.JSON(http.StatusOK, deals)
	}
}

func productsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 20)
		products, err := svc.List(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, products)
	}
}

func productBySKUHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sku := strings.TrimSpace(c.Param("sku"))
		if sku == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sku required"})
			return
		}
		product, err := svc.GetBySKU(c.Request.Context(), sku)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
