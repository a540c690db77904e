package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rewear/rewear-exchange/internal/model"
	"github.com/rewear/rewear-exchange/internal/queue"
	"github.com/rewear/rewear-exchange/internal/repository"
	queuepub "github.com/rewear/rewear-exchange/internal/service"
)

// RequestHandler owns the exchange request lifecycle. Approval is the
// only place in the system where points move between users or items
// change owners, and it runs as a single database transaction: the
// status flip, the balance updates, the ledger rows and the item
// mutations either all commit or none do.
type RequestHandler struct {
	Requests *repository.RequestRepo
	Items    *repository.ItemRepo
	Ledger   *repository.LedgerRepo
	// Publish sends the post-commit settlement event. Overridable in
	// tests; failures are logged, never surfaced to the client.
	Publish func(ctx echo.Context, ev queue.SwapSettledEvent)
}

// NewRequestHandler constructs a RequestHandler over the given
// repositories.
func NewRequestHandler(requests *repository.RequestRepo, items *repository.ItemRepo, ledger *repository.LedgerRepo) *RequestHandler {
	if requests == nil || items == nil || ledger == nil {
		panic("nil repository passed to NewRequestHandler")
	}
	h := &RequestHandler{Requests: requests, Items: items, Ledger: ledger}
	h.Publish = func(c echo.Context, ev queue.SwapSettledEvent) {
		if err := queuepub.PublishSwapSettled(c.Request().Context(), ev); err != nil {
			log.Printf("settlement event for request %d not published: %v", ev.RequestID, err)
		}
	}
	return h
}

type createRequestReq struct {
	ItemID        uint64  `json:"item_id"`
	Kind          string  `json:"kind"`
	OfferedItemID *uint64 `json:"offered_item_id"`
	OfferedPoints int64   `json:"offered_points"`
}

// CreateRequest handles POST /v1/requests. The target item must be
// approved and owned by someone else. A swap request must offer one of
// the requester's own approved items; a points request must offer a
// positive amount. Affordability is not enforced here: the balance is
// only checked at approval time, inside the settlement transaction.
func (h *RequestHandler) CreateRequest(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Kind != model.RequestKindSwap && req.Kind != model.RequestKindPoints {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be swap or points"})
	}

	ctx := c.Request().Context()
	item, err := h.Items.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch item"})
	}
	if item.Status != model.ItemStatusApproved {
		return c.JSON(http.StatusConflict, echo.Map{"error": "item is not available"})
	}
	if item.OwnerID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot request your own item"})
	}

	record := &model.ExchangeRequest{
		ItemID:      item.ID,
		RequesterID: userID,
		OwnerID:     item.OwnerID,
		Kind:        req.Kind,
	}
	switch req.Kind {
	case model.RequestKindSwap:
		// The offered item is optional. Without one the settlement is a
		// one-way transfer of the requested garment.
		if req.OfferedItemID != nil {
			offered, err := h.Items.GetByID(ctx, *req.OfferedItemID)
			if err != nil {
				if errors.Is(err, repository.ErrItemNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "offered item not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch offered item"})
			}
			if offered.OwnerID != userID {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "offered item is not yours"})
			}
			if offered.Status != model.ItemStatusApproved {
				return c.JSON(http.StatusConflict, echo.Map{"error": "offered item is not available"})
			}
			record.OfferedItemID = req.OfferedItemID
		}
	case model.RequestKindPoints:
		if req.OfferedPoints <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "offered_points must be positive"})
		}
		record.OfferedPoints = req.OfferedPoints
	}

	if err := h.Requests.Create(ctx, record); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create request"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": record})
}

// ApproveRequest handles POST /v1/requests/:id/approve. Only the owner
// of the requested item may approve. The transition out of pending is
// a compare-and-swap, so two concurrent approvals of the same request
// settle exactly once; the loser gets 409.
func (h *RequestHandler) ApproveRequest(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start settlement"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := h.Requests.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load request"})
	}
	if req.OwnerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the item owner may approve"})
	}
	if err := h.Requests.TransitionStatusTx(ctx, tx, req.ID, model.RequestStatusPending, model.RequestStatusApproved); err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already settled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to approve request"})
	}

	// Lock and re-check the target item inside the transaction; its
	// catalog-time status may be stale by now.
	itemOwner, itemStatus, err := h.Items.GetForSettlementTx(ctx, tx, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "item no longer exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load item"})
	}
	if itemStatus != model.ItemStatusApproved || itemOwner != req.OwnerID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "item is no longer available"})
	}

	// The helpers return domain errors only. Nothing is committed on a
	// non-nil return; the deferred rollback undoes the status flip and
	// any partial balance or item writes.
	switch req.Kind {
	case model.RequestKindSwap:
		err = h.settleSwap(ctx, tx, req)
	case model.RequestKindPoints:
		err = h.settlePoints(ctx, tx, req)
	default:
		err = repository.ErrInvalidRequest
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientPoints):
			return c.JSON(http.StatusConflict, echo.Map{"error": "requester has insufficient points"})
		case errors.Is(err, repository.ErrItemNotFound):
			return c.JSON(http.StatusConflict, echo.Map{"error": "offered item no longer exists"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "offered item is no longer available"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit settlement"})
	}
	committed = true

	ev := queue.SwapSettledEvent{
		EventID:     uuid.NewString(),
		RequestID:   req.ID,
		Kind:        req.Kind,
		ItemID:      req.ItemID,
		RequesterID: req.RequesterID,
		OwnerID:     req.OwnerID,
		PointsMoved: req.OfferedPoints,
		SettledAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if req.OfferedItemID != nil {
		ev.OfferedItemID = *req.OfferedItemID
	}
	if it, err := h.Items.GetByID(ctx, req.ItemID); err == nil {
		ev.ItemTitle = it.Title
	}
	h.Publish(c, ev)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "request approved",
		"request": echo.Map{"id": req.ID, "status": model.RequestStatusApproved},
	})
}

// settleSwap transfers the requested garment to the requester and, when
// an offered item exists, trades it back to the owner. Both garments are
// marked swapped. Runs inside the settlement transaction and returns
// domain errors only; the caller maps them to HTTP and must not commit
// on a non-nil return.
func (h *RequestHandler) settleSwap(ctx context.Context, tx *sql.Tx, req *model.ExchangeRequest) error {
	if req.OfferedItemID != nil {
		offeredOwner, offeredStatus, err := h.Items.GetForSettlementTx(ctx, tx, *req.OfferedItemID)
		if err != nil {
			return err
		}
		if offeredOwner != req.RequesterID || offeredStatus != model.ItemStatusApproved {
			return repository.ErrConflict
		}
	}
	if err := h.Items.TransferOwnerTx(ctx, tx, req.ItemID, req.RequesterID); err != nil {
		return err
	}
	if req.OfferedItemID != nil {
		if err := h.Items.TransferOwnerTx(ctx, tx, *req.OfferedItemID, req.OwnerID); err != nil {
			return err
		}
	}
	if err := h.Items.MarkSwappedTx(ctx, tx, req.ItemID); err != nil {
		return err
	}
	if req.OfferedItemID != nil {
		if err := h.Items.MarkSwappedTx(ctx, tx, *req.OfferedItemID); err != nil {
			return err
		}
	}
	return nil
}

// settlePoints moves the offered points from requester to owner, writes
// the two ledger rows and marks the garment swapped. Runs inside the
// settlement transaction; error semantics as settleSwap.
func (h *RequestHandler) settlePoints(ctx context.Context, tx *sql.Tx, req *model.ExchangeRequest) error {
	if err := h.Ledger.DebitTx(ctx, tx, req.RequesterID, req.OfferedPoints); err != nil {
		return err
	}
	if err := h.Ledger.CreditTx(ctx, tx, req.OwnerID, req.OfferedPoints); err != nil {
		return err
	}
	reqID := req.ID
	debit := &model.PointTransaction{
		UserID:      req.RequesterID,
		Amount:      -req.OfferedPoints,
		Type:        model.TxTypeDebit,
		Description: fmt.Sprintf("Points redeemed for item #%d", req.ItemID),
		RequestID:   &reqID,
	}
	credit := &model.PointTransaction{
		UserID:      req.OwnerID,
		Amount:      req.OfferedPoints,
		Type:        model.TxTypeCredit,
		Description: fmt.Sprintf("Points received for item #%d", req.ItemID),
		RequestID:   &reqID,
	}
	if err := h.Ledger.AppendTransactionTx(ctx, tx, debit); err != nil {
		return err
	}
	if err := h.Ledger.AppendTransactionTx(ctx, tx, credit); err != nil {
		return err
	}
	if err := h.Items.TransferOwnerTx(ctx, tx, req.ItemID, req.RequesterID); err != nil {
		return err
	}
	return h.Items.MarkSwappedTx(ctx, tx, req.ItemID)
}

// RejectRequest handles POST /v1/requests/:id/reject. Rejection flips
// the status and nothing else; no balances or items are touched.
func (h *RequestHandler) RejectRequest(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := h.Requests.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load request"})
	}
	if req.OwnerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the item owner may reject"})
	}
	if err := h.Requests.TransitionStatusTx(ctx, tx, req.ID, model.RequestStatusPending, model.RequestStatusRejected); err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already settled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject request"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"message": "request rejected",
		"request": echo.Map{"id": req.ID, "status": model.RequestStatusRejected},
	})
}

// ListIncoming handles GET /v1/requests/incoming: requests targeting
// the caller's items.
func (h *RequestHandler) ListIncoming(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Requests.ListForOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load requests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": details})
}

// ListOutgoing handles GET /v1/requests/outgoing: requests the caller
// created.
func (h *RequestHandler) ListOutgoing(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Requests.ListForRequester(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load requests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": details})
}
