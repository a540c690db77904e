package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/handler"
	"github.com/rewear/rewear-exchange/internal/middleware"
	"github.com/rewear/rewear-exchange/internal/model"
)

// RegisterAdmin registers the moderation endpoints under /v1/admin.
// Every route requires the admin role; the handlers themselves do no
// further role checks.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/items/pending", a.ListPendingItems)
	g.PATCH("/items/:id/status", a.SetItemStatus)
	g.DELETE("/items/:id", a.DeleteItem)
	g.GET("/stats", a.Stats)
}
