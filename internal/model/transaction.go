package model

import "time"

// Point transaction types.  debit/credit pairs are written by exchange
// settlement; earned/spent cover other balance changes; bonus marks the
// signup grant.
const (
	TxTypeEarned = "earned"
	TxTypeSpent  = "spent"
	TxTypeDebit  = "debit"
	TxTypeCredit = "credit"
	TxTypeBonus  = "bonus"
)

// PointTransaction is an immutable ledger entry in the
// `point_transactions` table.  Rows are append-only: they are never
// updated or deleted.  A settled points-type request always produces
// exactly two rows referencing it, a debit on the requester and a
// credit on the owner, with amounts that are exact negatives.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user whose balance the entry changed.
//  Amount      – signed amount; positive credits, negative debits.
//  Type        – entry type (see constants above).
//  Description – human-readable description.
//  RequestID   – related exchange request (nullable).
//  CreatedAt   – creation timestamp.
type PointTransaction struct {
	ID          uint64    // point_transactions.id
	UserID      uint64    // point_transactions.user_id
	Amount      int64     // point_transactions.amount
	Type        string    // point_transactions.type
	Description string    // point_transactions.description
	RequestID   *uint64   // point_transactions.request_id (nullable)
	CreatedAt   time.Time // point_transactions.created_at
}
