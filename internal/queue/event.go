// Package queue defines message payloads exchanged over the message broker.
package queue

// SwapSettledEvent is published when an exchange request settles
// successfully. It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database. EventID is a random UUID so consumers can
// deduplicate redeliveries.
type SwapSettledEvent struct {
	EventID       string `json:"event_id"`
	RequestID     uint64 `json:"request_id"`
	Kind          string `json:"kind"`
	ItemID        uint64 `json:"item_id"`
	ItemTitle     string `json:"item_title"`
	RequesterID   uint64 `json:"requester_id"`
	OwnerID       uint64 `json:"owner_id"`
	OfferedItemID uint64 `json:"offered_item_id,omitempty"`
	PointsMoved   int64  `json:"points_moved"`
	SettledAt     string `json:"settled_at"`
}
