package repository

import (
	"context"
	"database/sql"

	"github.com/rewear/rewear-exchange/internal/model"
)

// RequestRepo provides persistence for exchange requests. The status
// transition is a conditional update guarded on the current status:
// zero rows affected means the request already left pending, which is
// how at-most-once settlement is enforced under concurrent approvals.
type RequestRepo struct {
	db *sql.DB
}

// NewRequestRepo returns a new RequestRepo bound to the given database.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *RequestRepo) DB() *sql.DB { return r.db }

// Create persists a new pending request and populates the generated ID
// and timestamps on the passed record. OwnerID must already carry the
// item's owner at request time; the handler validates all
// preconditions before calling.
func (r *RequestRepo) Create(ctx context.Context, req *model.ExchangeRequest) error {
	const q = `INSERT INTO exchange_requests (item_id, requester_id, owner_id, kind, offered_item_id, offered_points, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var offered interface{}
	if req.OfferedItemID != nil {
		offered = *req.OfferedItemID
	}
	res, err := r.db.ExecContext(ctx, q, req.ItemID, req.RequesterID, req.OwnerID,
		req.Kind, offered, req.OfferedPoints, model.RequestStatusPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	req.Status = model.RequestStatusPending
	const sel = `SELECT created_at, updated_at FROM exchange_requests WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, req.ID).Scan(&req.CreatedAt, &req.UpdatedAt)
}

// GetByIDTx loads a request within tx, locking the row for the
// duration of the settlement. ErrRequestNotFound is returned when no
// row matches.
func (r *RequestRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ExchangeRequest, error) {
	const q = `SELECT id, item_id, requester_id, owner_id, kind, offered_item_id, offered_points, status, created_at, updated_at
	           FROM exchange_requests WHERE id = ? FOR UPDATE`
	var req model.ExchangeRequest
	var offered sql.NullInt64
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&req.ID, &req.ItemID, &req.RequesterID, &req.OwnerID, &req.Kind,
		&offered, &req.OfferedPoints, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if offered.Valid {
		v := uint64(offered.Int64)
		req.OfferedItemID = &v
	}
	return &req, nil
}

// TransitionStatusTx moves a request from one status to another within
// tx using a compare-and-swap on the current status. Zero rows
// affected means the request was not in the expected status any more
// and ErrAlreadySettled is returned; the caller must roll back and
// perform no side effects.
func (r *RequestRepo) TransitionStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
	const q = `UPDATE exchange_requests SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadySettled
	}
	return nil
}

// RequestDetail is an exchange request with its item joined, as
// returned by the incoming/outgoing listing endpoints.
type RequestDetail struct {
	ID            uint64  `json:"id"`
	Kind          string  `json:"kind"`
	Status        string  `json:"status"`
	ItemID        uint64  `json:"item_id"`
	ItemTitle     string  `json:"item_title"`
	ItemPoints    int64   `json:"item_points"`
	ItemStatus    string  `json:"item_status"`
	RequesterID   uint64  `json:"requester_id"`
	OwnerID       uint64  `json:"owner_id"`
	OfferedItemID *uint64 `json:"offered_item_id,omitempty"`
	OfferedPoints int64   `json:"offered_points"`
	CreatedAt     string  `json:"created_at"`
}

const requestDetailSelect = `SELECT r.id, r.kind, r.status,
		r.item_id, i.title, i.points, i.status,
		r.requester_id, r.owner_id, r.offered_item_id, r.offered_points,
		DATE_FORMAT(r.created_at, '%Y-%m-%d %T')
	FROM exchange_requests r
	JOIN items i ON i.id = r.item_id`

// ListForOwner returns requests targeting items the user owned at
// request time, newest first. Owners use this view to approve or
// reject incoming asks.
func (r *RequestRepo) ListForOwner(ctx context.Context, ownerID uint64) ([]RequestDetail, error) {
	return r.listDetails(ctx, requestDetailSelect+`
	WHERE r.owner_id = ?
	ORDER BY r.created_at DESC, r.id DESC`, ownerID)
}

// ListForRequester returns requests the user created, newest first.
func (r *RequestRepo) ListForRequester(ctx context.Context, requesterID uint64) ([]RequestDetail, error) {
	return r.listDetails(ctx, requestDetailSelect+`
	WHERE r.requester_id = ?
	ORDER BY r.created_at DESC, r.id DESC`, requesterID)
}

func (r *RequestRepo) listDetails(ctx context.Context, query string, args ...any) ([]RequestDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]RequestDetail, 0)
	for rows.Next() {
		var d RequestDetail
		var offered sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.Kind, &d.Status,
			&d.ItemID, &d.ItemTitle, &d.ItemPoints, &d.ItemStatus,
			&d.RequesterID, &d.OwnerID, &offered, &d.OfferedPoints,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if offered.Valid {
			v := uint64(offered.Int64)
			d.OfferedItemID = &v
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// CountAll returns the total number of exchange requests. Used by the
// admin stats endpoint.
func (r *RequestRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchange_requests`).Scan(&n)
	return n, err
}
