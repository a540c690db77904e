package repository

import (
	"context"
	"database/sql"

	"github.com/rewear/rewear-exchange/internal/model"
)

// LedgerRepo owns point balances and the append-only transaction
// ledger backing them. Balance writes are conditional single-statement
// updates so concurrent debits on the same user serialize inside the
// database and can never drive the balance below zero; there is no
// read-modify-write anywhere in this repository.
//
// The Tx variants operate inside a caller-provided transaction so a
// settlement can combine the request status flip, both balance
// changes and both ledger rows into one atomic unit.
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo returns a new LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// DebitTx subtracts amount from the user's balance within tx. The
// update only matches when the balance covers the amount; zero rows
// affected means the balance is too low and ErrInsufficientPoints is
// returned. amount must be positive.
func (r *LedgerRepo) DebitTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidRequest
	}
	const q = `UPDATE users SET points = points - ? WHERE id = ? AND points >= ?`
	res, err := tx.ExecContext(ctx, q, amount, userID, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

// CreditTx adds amount to the user's balance within tx. amount must be
// positive. Zero rows affected means the user does not exist.
func (r *LedgerRepo) CreditTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidRequest
	}
	const q = `UPDATE users SET points = points + ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, amount, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AppendTransactionTx inserts one immutable ledger entry within tx and
// populates the generated ID on the passed record. Entries are never
// updated or deleted afterwards.
func (r *LedgerRepo) AppendTransactionTx(ctx context.Context, tx *sql.Tx, entry *model.PointTransaction) error {
	const q = `INSERT INTO point_transactions (user_id, amount, type, description, request_id) VALUES (?, ?, ?, ?, ?)`
	var reqID interface{}
	if entry.RequestID != nil {
		reqID = *entry.RequestID
	}
	res, err := tx.ExecContext(ctx, q, entry.UserID, entry.Amount, entry.Type, entry.Description, reqID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = uint64(id)
	return nil
}

// Credit adds amount to a user's balance and records a ledger entry as
// one transaction. Used outside settlement, e.g. for the signup bonus.
func (r *LedgerRepo) Credit(ctx context.Context, userID uint64, amount int64, txType, description string) error {
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
	if err := r.CreditTx(ctx, tx, userID, amount); err != nil {
		return err
	}
	entry := &model.PointTransaction{UserID: userID, Amount: amount, Type: txType, Description: description}
	if err := r.AppendTransactionTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetBalance returns the user's current point balance.
func (r *LedgerRepo) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, userID).Scan(&balance)
	return balance, err
}

// ListByUser returns the user's ledger entries, newest first. When no
// entries exist an empty slice is returned.
func (r *LedgerRepo) ListByUser(ctx context.Context, userID uint64) ([]model.PointTransaction, error) {
	const q = `SELECT id, user_id, amount, type, description, request_id, created_at
	           FROM point_transactions
	           WHERE user_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.PointTransaction, 0)
	for rows.Next() {
		var e model.PointTransaction
		var reqID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Type, &e.Description, &reqID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if reqID.Valid {
			v := uint64(reqID.Int64)
			e.RequestID = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
