package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/service/search"

	"github.com/gin-gonic/gin"
)

func searchHandler(svc SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := search.Params{
			Query:    c.Query("query"),
			Category: c.Query("category"),
			Limit:    intQuery(c, "limit", search.DefaultLimit),
			Offset:   offsetQuery(c),
		}

		var parseErr error
		params.MinPriceCents, parseErr = priceQuery(c, "minPrice")
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minPrice must be an integer"})
			return
		}
		params.MaxPriceCents, parseErr = priceQuery(c, "maxPrice")
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice must be an integer"})
			return
		}

		result, err := svc.Search(c.Request.Context(), params)
		if err != nil {
			if errors.Is(err, search.ErrMissingQuery) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		if result.Hits == nil {
			result.Hits = []search.Hit{}
		}
		c.JSON(http.StatusOK, result)
	}
}

func suggestHandler(svc SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		suggestions, err := svc.Suggest(c.Request.Context(), c.Query("query"), intQuery(c, "limit", search.DefaultSuggestLimit))
		if err != nil {
			if errors.Is(err, search.ErrQueryTooShort) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "suggest failed"})
			return
		}
		if suggestions == nil {
			suggestions = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
	}
}

func popularHandler(svc SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.Popular(c.Request.Context(), intQuery(c, "limit", search.DefaultLimit))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load popular products"})
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, products)
	}
}

func initHandler(seeder func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if seeder == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "init not available"})
			return
		}
		if err := seeder(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "seed failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "initialized"})
	}
}

func priceQuery(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func offsetQuery(c *gin.Context) int {
	raw := c.Query("offset")
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
