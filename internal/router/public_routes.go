package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/handler"
	"github.com/rewear/rewear-exchange/internal/middleware"
)

// RegisterPublic registers the unauthenticated browse endpoints. The
// catalog is readable by guests so visitors can browse before signing
// up; only approved items are ever exposed there. The extra middleware
// is usually the Redis response cache and rate limiter, passed in so
// deployments without Redis can omit them.
//
// The item detail route takes optional auth instead: owners see their
// own pending and rejected listings, so the response varies by viewer
// and must stay out of the shared cache.
func RegisterPublic(e *echo.Echo, catalog *handler.CatalogHandler, items *handler.ItemHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/catalog", catalog.ListCatalog)
	g.POST("/catalog/search", catalog.NaturalSearch)

	e.GET("/v1/items/:id", items.GetItem, middleware.JWTOptional(jwtSecret))
}
