// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrAlreadySettled signals that an exchange
// request has already left the pending state and must not be
// settled a second time.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete an item that still has pending exchange requests.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrItemNotFound is returned when no item row matches the
// requested identifier.
var ErrItemNotFound = errors.New("item not found")

// ErrRequestNotFound is returned when no exchange request row
// matches the requested identifier.
var ErrRequestNotFound = errors.New("request not found")

// ErrAlreadySettled is returned when a status transition on an
// exchange request affects zero rows because the request is no
// longer pending. It is the guard that makes settlement
// at-most-once: of two concurrent approvals exactly one observes
// the pending row.
var ErrAlreadySettled = errors.New("request already settled")

// ErrInsufficientPoints is returned when a conditional debit affects
// zero rows because the user's balance is below the debit amount.
// The surrounding transaction must be rolled back so no partial
// settlement is ever visible.
var ErrInsufficientPoints = errors.New("insufficient points")

// ErrInvalidRequest is returned for malformed exchange requests,
// such as a requester asking for their own item or a non-positive
// points offer.
var ErrInvalidRequest = errors.New("invalid request")
