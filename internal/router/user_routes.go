package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/handler"
	"github.com/rewear/rewear-exchange/internal/middleware"
	"github.com/rewear/rewear-exchange/internal/model"
)

// RegisterUser registers the member-scoped endpoints under /v1. All
// routes require a valid JWT; admins pass too since moderation staff
// also list and exchange garments.
func RegisterUser(e *echo.Echo, items *handler.ItemHandler, requests *handler.RequestHandler, ledger *handler.LedgerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)

	g.POST("/items", items.CreateItem)
	g.GET("/my-items", items.MyItems)
	g.DELETE("/my-items/:id", items.DeleteMyItem)
	g.POST("/items/suggest", items.SuggestDetails)

	g.POST("/requests", requests.CreateRequest)
	g.POST("/requests/:id/approve", requests.ApproveRequest)
	g.POST("/requests/:id/reject", requests.RejectRequest)
	g.GET("/requests/incoming", requests.ListIncoming)
	g.GET("/requests/outgoing", requests.ListOutgoing)

	g.GET("/points/balance", ledger.Balance)
	g.GET("/points/history", ledger.History)
}
