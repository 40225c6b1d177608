// Package escrow manages funds held between buyer payment and seller payout.
package escrow

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHoldNotFound = errors.New("escrow hold not found")
	// ErrHoldExists is returned by the repo when a hold already exists for
	// the transaction. CreateHold treats it as an idempotent no-op.
	ErrHoldExists = errors.New("escrow hold already exists")
	// ErrAlreadyReleased means the hold was claimed by an earlier release.
	// Release treats it as success without side effects.
	ErrAlreadyReleased = errors.New("escrow hold already released")
	// ErrHoldRefunded means the hold went down the refund path and can never
	// be released to the seller.
	ErrHoldRefunded = errors.New("escrow hold refunded")
	// ErrAlreadyRefunded means the refund was applied by an earlier call.
	ErrAlreadyRefunded = errors.New("escrow hold already refunded")
)

type HoldStatus string

const (
	HoldHeld     HoldStatus = "held"
	HoldReleased HoldStatus = "released"
	HoldRefunded HoldStatus = "refunded"
)

// Hold is the funds collected from the buyer and not yet paid out. A hold
// leaves the held status exactly once, to released or refunded.
type Hold struct {
	ID            uuid.UUID  `json:"hold_id"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	Amount        int64      `json:"amount"`
	SellerPayout  *int64     `json:"seller_payout,omitempty"`
	Status        HoldStatus `json:"status"`
	ReleaseAt     time.Time  `json:"release_at"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
