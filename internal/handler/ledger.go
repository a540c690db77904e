package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/repository"
)

// LedgerHandler exposes a user's point balance and transaction history.
type LedgerHandler struct {
	Ledger *repository.LedgerRepo
}

func NewLedgerHandler(ledger *repository.LedgerRepo) *LedgerHandler {
	if ledger == nil {
		panic("nil repository passed to NewLedgerHandler")
	}
	return &LedgerHandler{Ledger: ledger}
}

type ledgerEntryResp struct {
	ID          uint64  `json:"id"`
	Amount      int64   `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	RequestID   *uint64 `json:"request_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// Balance handles GET /v1/points/balance.
func (h *LedgerHandler) Balance(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	balance, err := h.Ledger.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load balance"})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": balance})
}

// History handles GET /v1/points/history, newest entries first. The
// running balance is not reconstructed here; each entry carries only
// its signed amount.
func (h *LedgerHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entries, err := h.Ledger.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load history"})
	}
	out := make([]ledgerEntryResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryResp{
			ID:          e.ID,
			Amount:      e.Amount,
			Type:        e.Type,
			Description: e.Description,
			RequestID:   e.RequestID,
			CreatedAt:   e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": out})
}
