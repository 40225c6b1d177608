package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
)

//go:generate mockgen -source ports.go -destination mock_ports.go -package transaction

// Repo persists transactions. Status mutation goes through conditional
// updates (UPDATE ... WHERE status = expected); that row-level guard is the
// only concurrency-control primitive the core relies on.
type Repo interface {
	// CreateWithReservation inserts the transaction in pending status and
	// atomically reserves its quantity from the listing in the same database
	// transaction. Returns ErrInsufficientInventory when the conditional
	// decrement loses a race, ErrListingUnavailable when the listing is not
	// active.
	CreateWithReservation(ctx context.Context, t Transaction) error

	GetTransactions(ctx context.Context, query *TransactionsQuery) ([]Transaction, error)
	GetByGatewayRef(ctx context.Context, ref string) (Transaction, error)
	SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error

	// UpdateStatus conditionally moves id from one status to another.
	// Returns ErrInvalidStateTransition when the row is no longer in the
	// expected status (another caller won, or the transition was stale).
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error

	SetDisputeReason(ctx context.Context, id uuid.UUID, reason string) error
	SetResolutionNotes(ctx context.Context, id uuid.UUID, notes string) error
	// ExtendEscrowRelease pushes the release date during a dispute. The date
	// never moves implicitly.
	ExtendEscrowRelease(ctx context.Context, id uuid.UUID, until time.Time) error
}

// EscrowManager is the slice of the escrow manager the payment flow needs.
type EscrowManager interface {
	CreateHold(ctx context.Context, txID uuid.UUID, amount int64, releaseAt time.Time) error
	Release(ctx context.Context, txID uuid.UUID) (escrow.ReleaseResult, error)
}
