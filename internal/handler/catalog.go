package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/ai"
	"github.com/rewear/rewear-exchange/internal/repository"
)

// CatalogHandler serves the public browse surface. Only approved
// items are ever returned here.
type CatalogHandler struct {
	Items     *repository.ItemRepo
	Assistant ai.Assistant
}

func NewCatalogHandler(items *repository.ItemRepo, assistant ai.Assistant) *CatalogHandler {
	if items == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Items: items, Assistant: assistant}
}

func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}

// ListCatalog handles GET /v1/catalog. Filters combine with AND; an
// empty filter matches everything.
func (h *CatalogHandler) ListCatalog(c echo.Context) error {
	q := repository.CatalogQuery{
		Category:  strings.TrimSpace(c.QueryParam("category")),
		Size:      strings.TrimSpace(c.QueryParam("size")),
		Condition: strings.TrimSpace(c.QueryParam("condition")),
		Search:    strings.TrimSpace(c.QueryParam("search")),
		Page:      queryInt(c, "page"),
		PageSize:  queryInt(c, "page_size"),
	}
	rows, total, err := h.Items.Search(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filter value"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load catalog"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": rows,
		"total": total,
	})
}

// NaturalSearch handles POST /v1/catalog/search. A free-text query is
// parsed into structured filters by the AI collaborator, then run
// through the same catalog search as ListCatalog. Filters the parser
// returns that are not valid enum values cause a plain text search
// instead of an error.
func (h *CatalogHandler) NaturalSearch(c echo.Context) error {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query is required"})
	}
	if h.Assistant == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "natural search unavailable"})
	}
	filters, err := h.Assistant.ParseNaturalSearch(c.Request().Context(), strings.TrimSpace(req.Query))
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "natural search unavailable"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "search parser failed"})
	}
	q := repository.CatalogQuery{
		Category:  filters.Category,
		Size:      filters.Size,
		Condition: filters.Condition,
		Search:    filters.Search,
	}
	rows, total, err := h.Items.Search(c.Request().Context(), q)
	if errors.Is(err, repository.ErrInvalidRequest) {
		// Parser hallucinated an enum value. Fall back to text search.
		q = repository.CatalogQuery{Search: strings.TrimSpace(req.Query)}
		rows, total, err = h.Items.Search(c.Request().Context(), q)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load catalog"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":   rows,
		"total":   total,
		"filters": filters,
	})
}
