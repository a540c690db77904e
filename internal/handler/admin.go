package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/model"
	"github.com/rewear/rewear-exchange/internal/repository"
)

// AdminHandler serves the moderation surface. All routes here run
// behind the admin role middleware; handlers do not re-check the role.
type AdminHandler struct {
	Users    *repository.UserRepo
	Items    *repository.ItemRepo
	Requests *repository.RequestRepo
}

func NewAdminHandler(users *repository.UserRepo, items *repository.ItemRepo, requests *repository.RequestRepo) *AdminHandler {
	if users == nil || items == nil || requests == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users, Items: items, Requests: requests}
}

// ListPendingItems handles GET /v1/admin/items/pending, the moderation
// queue, oldest submissions last.
func (h *AdminHandler) ListPendingItems(c echo.Context) error {
	q := repository.CatalogQuery{
		Status:   model.ItemStatusPending,
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	rows, total, err := h.Items.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load pending items"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows, "total": total})
}

type setStatusReq struct {
	Status string `json:"status"`
}

// SetItemStatus handles PATCH /v1/admin/items/:id/status. Moderation
// can only approve or reject; pending and swapped are states the
// system sets on its own.
func (h *AdminHandler) SetItemStatus(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Status != model.ItemStatusApproved && req.Status != model.ItemStatusRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be approved or rejected"})
	}
	if err := h.Items.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update item"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item " + req.Status})
}

// DeleteItem handles DELETE /v1/admin/items/:id. Items with pending
// exchange requests cannot be removed; the requests must settle or be
// rejected first.
func (h *AdminHandler) DeleteItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	err := h.Items.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "item has pending exchange requests"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete item"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /v1/admin/stats with platform-wide counts.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.Users.CountAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	items, err := h.Items.CountAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	requests, err := h.Requests.CountAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":    users,
		"items":    items,
		"requests": requests,
	})
}
