package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"storefront-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

func getCartHandler(repo CartRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := strings.TrimSpace(c.Param("customerID"))
		if customerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer id required"})
			return
		}
		cart, err := repo.GetByCustomer(c.Request.Context(), customerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
			return
		}
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		c.JSON(http.StatusOK, cart)
	}
}

// putCartHandler replaces the whole cart document for the customer. The path
// identifier wins over any id in the body.
func putCartHandler(repo CartRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := strings.TrimSpace(c.Param("customerID"))
		if customerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer id required"})
			return
		}

		var cart domain.Cart
		if err := c.ShouldBindJSON(&cart); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart document"})
			return
		}
		cart.CustomerID = customerID

		// One line per SKU: duplicate SKUs in the body merge their quantities,
		// same as adding to an existing line.
		merged := make([]domain.CartItem, 0, len(cart.Items))
		index := make(map[string]int, len(cart.Items))
		for _, item := range cart.Items {
			sku := strings.TrimSpace(item.SKU)
			if sku == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "item sku required"})
				return
			}
			if pos, ok := index[sku]; ok {
				merged[pos].Quantity += item.Quantity
				continue
			}
			index[sku] = len(merged)
			merged = append(merged, item)
		}
		cart.Items = merged

		updated, err := repo.Upsert(c.Request.Context(), cart)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store cart"})
			return
		}
		if updated.Items == nil {
			updated.Items = []domain.CartItem{}
		}
		c.JSON(http.StatusOK, updated)
	}
}
