package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/ai"
	"github.com/rewear/rewear-exchange/internal/model"
	"github.com/rewear/rewear-exchange/internal/repository"
)

// ItemHandler groups dependencies for item submission and retrieval.
// Image upload is handled by an external collaborator: the submission
// payload carries opaque image URIs, never file contents.
type ItemHandler struct {
	Items     *repository.ItemRepo
	Assistant ai.Assistant
}

// NewItemHandler constructs a new ItemHandler. The assistant may be
// nil when AI features are not configured.
func NewItemHandler(items *repository.ItemRepo, assistant ai.Assistant) *ItemHandler {
	if items == nil {
		panic("nil repository passed to NewItemHandler")
	}
	return &ItemHandler{Items: items, Assistant: assistant}
}

type createItemReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	Points      int64    `json:"points"`
}

type itemResp struct {
	ID          uint64   `json:"id"`
	OwnerID     uint64   `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	Points      int64    `json:"points"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
}

func itemToResp(it *model.Item) itemResp {
	return itemResp{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		Type:        it.Type,
		Size:        it.Size,
		Condition:   it.Condition,
		Tags:        it.Tags,
		Images:      it.Images,
		Points:      it.Points,
		Status:      it.Status,
		CreatedAt:   it.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

// CreateItem handles POST /v1/items. The item enters the moderation
// queue with status pending and only becomes requestable once an
// admin approves it.
func (h *ItemHandler) CreateItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and description are required"})
	}
	if !model.ValidCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	if !model.ValidItemType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid type"})
	}
	if !model.ValidSize(req.Size) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid size"})
	}
	if !model.ValidCondition(req.Condition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid condition"})
	}
	if req.Points <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "points must be positive"})
	}
	if len(req.Images) > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at most 5 images"})
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	if req.Images == nil {
		req.Images = []string{}
	}

	it := &model.Item{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Size:        req.Size,
		Condition:   req.Condition,
		Tags:        req.Tags,
		Images:      req.Images,
		Points:      req.Points,
	}
	if err := h.Items.Create(c.Request().Context(), it); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create item"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": itemToResp(it)})
}

// GetItem handles GET /v1/items/:id. Pending and rejected listings are
// only visible to their owner; anyone may view approved and swapped
// items.
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	it, err := h.Items.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch item"})
	}
	if it.Status != model.ItemStatusApproved && it.Status != model.ItemStatusSwapped {
		viewer, err := getUserID(c)
		if err != nil || viewer != it.OwnerID {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"item": itemToResp(it)})
}

// MyItems handles GET /v1/my-items. Without a status filter it returns
// the caller's listings in every status, newest first, paginated like
// the public catalog.
func (h *ItemHandler) MyItems(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	q := repository.CatalogQuery{
		OwnerID:  userID,
		Status:   strings.TrimSpace(c.QueryParam("status")),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	rows, total, err := h.Items.Search(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load items"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows, "total": total})
}

// DeleteMyItem handles DELETE /v1/my-items/:id. Members may remove
// their own listings as long as no pending exchange request references
// them.
func (h *ItemHandler) DeleteMyItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	err = h.Items.DeleteOwned(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "item is not yours"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "item has pending exchange requests"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete item"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SuggestDetails handles POST /v1/items/suggest. It forwards the title
// to the AI collaborator and returns generated listing details. The
// suggested condition is dropped when it is not one of the enumerated
// values; the collaborator's output is untrusted.
func (h *ItemHandler) SuggestDetails(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if h.Assistant == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "suggestions unavailable"})
	}
	sug, err := h.Assistant.SuggestItemDetails(c.Request().Context(), strings.TrimSpace(req.Title))
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "suggestions unavailable"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "suggestion service failed"})
	}
	if !model.ValidCondition(sug.Condition) {
		sug.Condition = ""
	}
	return c.JSON(http.StatusOK, echo.Map{"suggestion": sug})
}
