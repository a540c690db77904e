// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/handler"
	"github.com/rewear/rewear-exchange/internal/middleware"
	"github.com/rewear/rewear-exchange/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers to
// verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations live under /v1/auth; the profile endpoint lives under /v1
// behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, not the access token,
	// so it stays outside the protected group.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	auth.GET("/me", a.Me)
}
