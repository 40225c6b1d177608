package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-marketplace/payments/pkg/logger"
	"github.com/ticket-marketplace/payments/pkg/metrics"
)

// Manager creates, releases and refunds escrow holds. Every mutation is a
// conditional update in the storage layer, so all operations are safe under
// concurrent invocation.
type Manager struct {
	holds  HoldRepo
	ledger Ledger
	l      *logger.Logger
}

func NewManager(holds HoldRepo, ledger Ledger, l *logger.Logger) *Manager {
	return &Manager{
		holds:  holds,
		ledger: ledger,
		l:      l,
	}
}

// CreateHold persists a hold for the full transaction amount. Creating the
// same hold twice is a no-op.
func (m *Manager) CreateHold(ctx context.Context, txID uuid.UUID, amount int64, releaseAt time.Time) error {
	hold := Hold{
		ID:            uuid.New(),
		TransactionID: txID,
		Amount:        amount,
		Status:        HoldHeld,
		ReleaseAt:     releaseAt,
		CreatedAt:     time.Now().UTC(),
	}

	if err := m.holds.Create(ctx, hold); err != nil {
		if errors.Is(err, ErrHoldExists) {
			return nil
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

// ReleaseResult reports what a release did.
type ReleaseResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	SellerPayout  int64     `json:"seller_payout"`
	// AlreadyReleased is true when an earlier release claimed the hold and
	// this call was a no-op.
	AlreadyReleased bool `json:"already_released"`
}

// Release pays the seller out of a held hold and completes the transaction.
// Idempotent: the conditional claim in the hold repo guarantees exactly one
// caller computes the payout; later callers get AlreadyReleased.
func (m *Manager) Release(ctx context.Context, txID uuid.UUID) (ReleaseResult, error) {
	cand, err := m.ledger.GetForRelease(ctx, txID)
	if err != nil {
		return ReleaseResult{}, fmt.Errorf("load release candidate: %w", err)
	}

	payout := cand.TotalAmount - cand.PlatformFee

	// The claim, the seller credit and the status advances commit together.
	// A failed payout rolls the claim back, leaving the hold held so the
	// sweep retries the whole release.
	if err := m.holds.ReleasePayout(ctx, cand, payout); err != nil {
		if errors.Is(err, ErrAlreadyReleased) {
			return ReleaseResult{TransactionID: txID, AlreadyReleased: true}, nil
		}
		return ReleaseResult{}, fmt.Errorf("release payout: %w", err)
	}

	metrics.EscrowReleases.Inc()
	metrics.EscrowReleasedAmount.Add(float64(payout))
	m.l.Info("escrow released: transaction_id=%s payout=%d", txID, payout)

	return ReleaseResult{TransactionID: txID, SellerPayout: payout}, nil
}

// GetHold fetches the hold backing a transaction, if one exists.
func (m *Manager) GetHold(ctx context.Context, txID uuid.UUID) (Hold, error) {
	return m.holds.GetByTransactionID(ctx, txID)
}

// Refund sends a held hold down the refund path. Idempotent like Release.
func (m *Manager) Refund(ctx context.Context, txID uuid.UUID) error {
	if err := m.holds.ClaimRefund(ctx, txID); err != nil {
		if errors.Is(err, ErrAlreadyRefunded) {
			return nil
		}
		return fmt.Errorf("claim refund: %w", err)
	}
	m.l.Info("escrow refunded: transaction_id=%s", txID)
	return nil
}

// ExtendRelease pushes the hold's release date, used when a dispute opens so
// the sweep cannot pay out a contested transaction.
func (m *Manager) ExtendRelease(ctx context.Context, txID uuid.UUID, until time.Time) error {
	if err := m.holds.ExtendRelease(ctx, txID, until); err != nil {
		return fmt.Errorf("extend release: %w", err)
	}
	return nil
}

// SweepResult is the per-transaction outcome of one sweep pass.
type SweepResult struct {
	TransactionID  uuid.UUID `json:"transaction_id"`
	Success        bool      `json:"success"`
	AmountReleased int64     `json:"amount_released,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Sweep releases every hold whose release date has passed. Individual
// failures are recorded per item and never abort the remaining work; two
// overlapping sweeps cannot double-pay because each release claims its hold.
func (m *Manager) Sweep(ctx context.Context) ([]SweepResult, error) {
	due, err := m.ledger.ListReleaseDue(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list release due: %w", err)
	}

	results := make([]SweepResult, 0, len(due))
	for _, cand := range due {
		res, err := m.Release(ctx, cand.TransactionID)
		if err != nil {
			m.l.Error("sweep release failed: transaction_id=%s error=%v", cand.TransactionID, err)
			results = append(results, SweepResult{
				TransactionID: cand.TransactionID,
				Error:         err.Error(),
			})
			continue
		}
		if res.AlreadyReleased {
			continue
		}
		results = append(results, SweepResult{
			TransactionID:  cand.TransactionID,
			Success:        true,
			AmountReleased: res.SellerPayout,
		})
	}

	return results, nil
}
