package httpserver

import (
	"context"
	"errors"
	"log"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/service/search"
	customersvc "storefront-backend/internal/service/customer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService is the catalog surface the handlers consume.
type CatalogService interface {
	List(ctx context.Context, limit int) ([]domain.Product, error)
	Deals(ctx context.Context, limit int) ([]domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

// SearchService is the search surface the handlers consume.
type SearchService interface {
	Search(ctx context.Context, p search.Params) (*search.Result, error)
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
	Popular(ctx context.Context, limit int) ([]domain.Product, error)
}

// CartRepository stores cart documents by customer identifier.
type CartRepository interface {
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
}

// CustomerService is the auth surface the handlers consume.
type CustomerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	AccessTTLSeconds() int
}

// Deps bundles the dependencies the router wires into handlers.
type Deps struct {
	CatalogSvc  CatalogService
	SearchSvc   SearchService
	CartRepo    CartRepository
	CustomerSvc CustomerService
	// Seeder backs POST /api/init; nil disables the endpoint.
	Seeder func(ctx context.Context) error
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.CatalogSvc == nil || deps.SearchSvc == nil || deps.CartRepo == nil || deps.CustomerSvc == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(corsOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = corsOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		router.Use(cors.New(corsCfg))
	}

	router.GET("/health", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/deals", dealsHandler(deps.CatalogSvc))
	router.GET("/products", productsHandler(deps.CatalogSvc))
	router.GET("/products/sku/:sku", productBySKUHandler(deps.CatalogSvc))

	api := router.Group("/api")
	api.GET("/search", searchHandler(deps.SearchSvc))
	api.GET("/suggest", suggestHandler(deps.SearchSvc))
	api.GET("/popular", popularHandler(deps.SearchSvc))
	api.POST("/init", initHandler(deps.Seeder))

	router.GET("/carts/:customerID", getCartHandler(deps.CartRepo))
	router.PUT("/carts/:customerID", putCartHandler(deps.CartRepo))

	auth := router.Group("/auth")
	auth.POST("/token", tokenHandler(deps.CustomerSvc))
	auth.POST("/signup", signupHandler(deps.CustomerSvc))
	auth.GET("/me", meHandler(deps.CustomerSvc))

	return router, nil
}
