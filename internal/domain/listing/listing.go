// Package listing is the payment core's view of the inventory ledger.
package listing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

//go:generate mockgen -source listing.go -destination mock_ledger.go -package listing

var (
	ErrNotFound = errors.New("listing not found")
	// ErrUnavailable means the listing is not in active status.
	ErrUnavailable = errors.New("listing unavailable")
	// ErrInsufficientInventory means a conditional reservation lost the race
	// or asked for more units than remain.
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

type Status string

const (
	StatusActive Status = "active"
	StatusSold   Status = "sold"
)

type Listing struct {
	ID       uuid.UUID `json:"listing_id"`
	SellerID uuid.UUID `json:"seller_id"`
	// UnitPrice in minor currency units, snapshotted by the transaction at
	// creation time.
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Status    Status `json:"status"`
}

// Ledger exposes the inventory collaborator. All quantity mutation goes
// through the atomic Reserve/Restore operations; the payment core never
// read-then-writes inventory.
type Ledger interface {
	GetByID(ctx context.Context, id uuid.UUID) (Listing, error)
	// Reserve atomically decrements qty units. Fails with
	// ErrInsufficientInventory when fewer units remain, ErrUnavailable when
	// the listing is not active. The listing flips to sold when quantity
	// reaches zero.
	Reserve(ctx context.Context, id uuid.UUID, qty int) error
	// Restore atomically returns qty units and flips a sold listing back to
	// active.
	Restore(ctx context.Context, id uuid.UUID, qty int) error
}
