package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rewear/rewear-exchange/internal/model"
)

// ItemRepo provides CRUD operations for listed garments. Tag and
// image lists are stored as JSON array columns. Ownership and status
// mutations used by settlement are exposed as Tx variants so the
// request lifecycle handler can apply them atomically together with
// the request status transition.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo returns a new ItemRepo bound to the given database.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *ItemRepo) DB() *sql.DB { return r.db }

// Create inserts a new item with status pending and populates the
// generated ID and timestamps on the passed record.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	tags, err := json.Marshal(it.Tags)
	if err != nil {
		return err
	}
	images, err := json.Marshal(it.Images)
	if err != nil {
		return err
	}
	const q = `INSERT INTO items (owner_id, title, description, category, type, size, item_condition, tags, images, points, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, it.OwnerID, it.Title, it.Description, it.Category,
		it.Type, it.Size, it.Condition, tags, images, it.Points, model.ItemStatusPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	it.Status = model.ItemStatusPending
	const sel = `SELECT created_at, updated_at FROM items WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, it.ID).Scan(&it.CreatedAt, &it.UpdatedAt)
}

// GetByID returns a single item. ErrItemNotFound is returned when no
// row matches.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (*model.Item, error) {
	const q = `SELECT id, owner_id, title, description, category, type, size, item_condition, tags, images, points, status, created_at, updated_at
	           FROM items WHERE id = ?`
	var it model.Item
	var tags, images []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category, &it.Type,
		&it.Size, &it.Condition, &tags, &images, &it.Points, &it.Status,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeStringList(tags, &it.Tags); err != nil {
		return nil, err
	}
	if err := decodeStringList(images, &it.Images); err != nil {
		return nil, err
	}
	return &it, nil
}

// GetForSettlementTx loads the owner and status of an item within tx,
// locking the row so concurrent settlements touching the same garment
// serialize. ErrItemNotFound is returned when no row matches.
func (r *ItemRepo) GetForSettlementTx(ctx context.Context, tx *sql.Tx, id uint64) (ownerID uint64, status string, err error) {
	const q = `SELECT owner_id, status FROM items WHERE id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, id).Scan(&ownerID, &status)
	if err == sql.ErrNoRows {
		return 0, "", ErrItemNotFound
	}
	return ownerID, status, err
}

// TransferOwnerTx reassigns an item to a new owner within tx. Zero
// rows affected means the item vanished mid-settlement and the caller
// must roll back.
func (r *ItemRepo) TransferOwnerTx(ctx context.Context, tx *sql.Tx, itemID, newOwnerID uint64) error {
	const q = `UPDATE items SET owner_id = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, newOwnerID, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// MarkSwappedTx marks an item as swapped within tx. Swapped items
// leave the catalog but are retained for history.
func (r *ItemRepo) MarkSwappedTx(ctx context.Context, tx *sql.Tx, itemID uint64) error {
	const q = `UPDATE items SET status = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, model.ItemStatusSwapped, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// UpdateStatus sets an item's moderation status. Setting the same
// status twice is a no-op, not an error, so the affected-row count is
// deliberately not checked; existence is verified first.
func (r *ItemRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrItemNotFound
	}
	_, err := r.db.ExecContext(ctx, `UPDATE items SET status = ? WHERE id = ?`, status, id)
	return err
}

// Delete hard-removes an item. The delete is refused with ErrConflict
// while pending exchange requests still reference the item; the check
// and the delete run in one transaction so a request created in
// between cannot orphan itself.
func (r *ItemRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var pending int64
	const checkQ = `SELECT COUNT(*) FROM exchange_requests WHERE (item_id = ? OR offered_item_id = ?) AND status = ?`
	if err := tx.QueryRowContext(ctx, checkQ, id, id, model.RequestStatusPending).Scan(&pending); err != nil {
		return err
	}
	if pending > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteOwned removes an item on behalf of its owner. ErrForbidden is
// returned when the item belongs to someone else, ErrConflict while
// pending exchange requests still reference it. The ownership check
// holds a row lock so a settlement transferring the item away cannot
// race the delete.
func (r *ItemRepo) DeleteOwned(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var owner uint64
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM items WHERE id = ? FOR UPDATE`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrItemNotFound
	}
	if err != nil {
		return err
	}
	if owner != ownerID {
		return ErrForbidden
	}
	var pending int64
	const checkQ = `SELECT COUNT(*) FROM exchange_requests WHERE (item_id = ? OR offered_item_id = ?) AND status = ?`
	if err := tx.QueryRowContext(ctx, checkQ, id, id, model.RequestStatusPending).Scan(&pending); err != nil {
		return err
	}
	if pending > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CountAll returns the total number of items. Used by the admin stats
// endpoint.
func (r *ItemRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

// decodeStringList unmarshals a JSON array column into dst, treating
// NULL as an empty list.
func decodeStringList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}
