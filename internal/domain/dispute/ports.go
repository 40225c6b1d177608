package dispute

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=dispute

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
)

type Repo interface {
	CreateCase(ctx context.Context, c Case) error
	GetCaseByTransactionID(ctx context.Context, txID uuid.UUID) (Case, error)
	// ResolveCase flips an unresolved case to resolved with the moderator's
	// notes. ErrCaseResolved when another moderator got there first.
	ResolveCase(ctx context.Context, caseID uuid.UUID, notes string, resolvedAt time.Time) error

	CreateRefundRequest(ctx context.Context, r RefundRequest) error
	GetRefundByTransactionID(ctx context.Context, txID uuid.UUID) (RefundRequest, error)
	// SetRefundStatus applies a conditional status change on a refund request.
	SetRefundStatus(ctx context.Context, refundID uuid.UUID, from, to RefundStatus, processedAt *time.Time) error
}

// Escrow is the slice of hold management the dispute flow needs.
type Escrow interface {
	Release(ctx context.Context, txID uuid.UUID) (escrow.ReleaseResult, error)
	Refund(ctx context.Context, txID uuid.UUID) error
	ExtendRelease(ctx context.Context, txID uuid.UUID, until time.Time) error
}
