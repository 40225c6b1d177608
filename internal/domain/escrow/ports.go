package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source ports.go -destination mock_ports.go -package escrow

// HoldRepo persists escrow holds. Claim operations are single conditional
// updates so concurrent releases cannot double-pay.
type HoldRepo interface {
	// Create inserts a hold in held status. Returns ErrHoldExists when the
	// transaction already has one.
	Create(ctx context.Context, hold Hold) error
	GetByTransactionID(ctx context.Context, txID uuid.UUID) (Hold, error)
	// ReleasePayout claims the hold and applies the payout in one database
	// transaction: held -> released, the seller credited, the transaction
	// advanced to completed. Nothing commits unless all of it does, so a
	// failed payout leaves the hold held for the sweep to retry. Returns
	// ErrAlreadyReleased, ErrHoldRefunded or ErrHoldNotFound when the claim
	// loses.
	ReleasePayout(ctx context.Context, cand Candidate, payout int64) error
	// ClaimRefund transitions held -> refunded. Returns ErrAlreadyRefunded,
	// ErrAlreadyReleased or ErrHoldNotFound accordingly.
	ClaimRefund(ctx context.Context, txID uuid.UUID) error
	// ExtendRelease pushes the release date of a held hold.
	ExtendRelease(ctx context.Context, txID uuid.UUID, releaseAt time.Time) error
}

// Candidate is the slice of a transaction the escrow manager needs to
// release its hold.
type Candidate struct {
	TransactionID uuid.UUID
	SellerID      uuid.UUID
	TotalAmount   int64
	PlatformFee   int64
	// Confirmed is true once the buyer confirmed receipt; false for
	// timed-out releases still in paid status.
	Confirmed bool
}

// Ledger is the escrow manager's view of the transaction ledger.
type Ledger interface {
	GetForRelease(ctx context.Context, txID uuid.UUID) (Candidate, error)
	// ListReleaseDue returns transactions whose hold is due for release:
	// paid ones past their release date, plus confirmed ones whose
	// confirm-time release did not finish.
	ListReleaseDue(ctx context.Context, now time.Time) ([]Candidate, error)
}
