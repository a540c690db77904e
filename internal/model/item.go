package model

import "time"

// Item lifecycle statuses.  Submitted items start as pending and only
// become visible in the catalog once an admin approves them.  A points
// settlement marks the traded item as swapped; the row is kept for
// history rather than deleted.
const (
	ItemStatusPending  = "pending"
	ItemStatusApproved = "approved"
	ItemStatusRejected = "rejected"
	ItemStatusSwapped  = "swapped"
)

// Item represents a listed garment in the `items` table.  Ownership is
// mutable: it changes when a swap-type exchange request settles.  The
// point price is fixed at creation; there is no edit flow.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – current owning user; reassigned on swap settlement.
//  Title       – short listing title.
//  Description – free-text description.
//  Category    – enumerated category (men, women, kids).
//  Type        – enumerated garment type (shirt, pants, ...).
//  Size        – enumerated size (XS..XXL).
//  Condition   – enumerated condition (like-new, excellent, good, fair).
//  Tags        – free-form tag set, stored as a JSON array.
//  Images      – ordered opaque image URIs, stored as a JSON array.
//  Points      – redemption price in points.
//  Status      – lifecycle status (see constants above).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Item struct {
	ID          uint64    // items.id
	OwnerID     uint64    // items.owner_id
	Title       string    // items.title
	Description string    // items.description
	Category    string    // items.category
	Type        string    // items.type
	Size        string    // items.size
	Condition   string    // items.item_condition
	Tags        []string  // items.tags (JSON array column)
	Images      []string  // items.images (JSON array column)
	Points      int64     // items.points
	Status      string    // items.status
	CreatedAt   time.Time // items.created_at
	UpdatedAt   time.Time // items.updated_at
}

// Enumerated attribute values accepted for item submission and catalog
// filters.  Filter input from the natural-language search collaborator
// passes through the same validation as manually selected filters.
var (
	itemCategories = map[string]bool{"men": true, "women": true, "kids": true}
	itemTypes      = map[string]bool{"shirt": true, "pants": true, "dress": true, "jacket": true, "shoes": true, "accessories": true}
	itemSizes      = map[string]bool{"XS": true, "S": true, "M": true, "L": true, "XL": true, "XXL": true}
	itemConditions = map[string]bool{"like-new": true, "excellent": true, "good": true, "fair": true}
	itemStatuses   = map[string]bool{ItemStatusPending: true, ItemStatusApproved: true, ItemStatusRejected: true, ItemStatusSwapped: true}
)

// ValidCategory reports whether v is an accepted item category.
func ValidCategory(v string) bool { return itemCategories[v] }

// ValidItemType reports whether v is an accepted garment type.
func ValidItemType(v string) bool { return itemTypes[v] }

// ValidSize reports whether v is an accepted size label.
func ValidSize(v string) bool { return itemSizes[v] }

// ValidCondition reports whether v is an accepted condition label.
func ValidCondition(v string) bool { return itemConditions[v] }

// ValidItemStatus reports whether v is a known lifecycle status.
func ValidItemStatus(v string) bool { return itemStatuses[v] }
