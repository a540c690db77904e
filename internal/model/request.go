package model

import "time"

// Exchange request kinds.  A swap request offers another garment in
// trade; a points request offers a point payment.
const (
	RequestKindSwap   = "swap"
	RequestKindPoints = "points"
)

// Exchange request statuses.  pending is the only non-terminal state;
// approval and rejection are both irreversible.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// ExchangeRequest records one user's ask to acquire an item from its
// current owner, stored in the `exchange_requests` table.  OwnerID is a
// denormalized copy of the item's owner taken at request time so the
// approval authorization check does not depend on later ownership
// changes.  The requester is never the owner.
//
// Exactly one of OfferedItemID (swap kind, optional) and OfferedPoints
// (points kind, required positive) is meaningful depending on Kind.
//
// Fields:
//  ID            – primary key identifier.
//  ItemID        – requested item.
//  RequesterID   – user asking to acquire the item.
//  OwnerID       – item owner at request time.
//  Kind          – "swap" or "points".
//  OfferedItemID – garment offered in trade (nullable, swap kind only).
//  OfferedPoints – points offered (points kind only).
//  Status        – pending, approved or rejected.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type ExchangeRequest struct {
	ID            uint64    // exchange_requests.id
	ItemID        uint64    // exchange_requests.item_id
	RequesterID   uint64    // exchange_requests.requester_id
	OwnerID       uint64    // exchange_requests.owner_id
	Kind          string    // exchange_requests.kind
	OfferedItemID *uint64   // exchange_requests.offered_item_id (nullable)
	OfferedPoints int64     // exchange_requests.offered_points
	Status        string    // exchange_requests.status
	CreatedAt     time.Time // exchange_requests.created_at
	UpdatedAt     time.Time // exchange_requests.updated_at
}
