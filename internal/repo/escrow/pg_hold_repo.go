package escrow_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
	"github.com/ticket-marketplace/payments/pkg/postgres"
)

const holdColumns = "id, transaction_id, amount, seller_payout, status, release_at, released_at, refunded_at, created_at"

// PgHoldRepo persists escrow holds. The claim methods are single conditional
// updates on the held status; whichever caller claims the row wins and every
// other caller learns the hold's actual terminal state.
type PgHoldRepo struct {
	pg *postgres.Postgres
	repo
}

var _ escrow.HoldRepo = (*PgHoldRepo)(nil)

func NewPgHoldRepo(pg *postgres.Postgres) *PgHoldRepo {
	return &PgHoldRepo{
		pg:   pg,
		repo: repo{db: pg.Pool, builder: pg.Builder},
	}
}

type repo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func (r *repo) Create(ctx context.Context, hold escrow.Hold) error {
	query, args, err := r.builder.Insert("escrow_holds").
		Columns("id", "transaction_id", "amount", "status", "release_at", "created_at").
		Values(hold.ID, hold.TransactionID, hold.Amount, hold.Status, hold.ReleaseAt, hold.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return escrow.ErrHoldExists
		}
		return fmt.Errorf("insert hold: %w", err)
	}
	return nil
}

func (r *repo) GetByTransactionID(ctx context.Context, txID uuid.UUID) (escrow.Hold, error) {
	query, args, err := r.builder.Select(holdColumns).
		From("escrow_holds").
		Where(squirrel.Eq{"transaction_id": txID}).
		ToSql()
	if err != nil {
		return escrow.Hold{}, fmt.Errorf("build query: %w", err)
	}

	var h escrow.Hold
	var rawStatus string
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&h.ID, &h.TransactionID, &h.Amount, &h.SellerPayout, &rawStatus,
		&h.ReleaseAt, &h.ReleasedAt, &h.RefundedAt, &h.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return escrow.Hold{}, escrow.ErrHoldNotFound
		}
		return escrow.Hold{}, fmt.Errorf("query hold: %w", err)
	}
	h.Status = escrow.HoldStatus(rawStatus)
	return h, nil
}

// ReleasePayout pays one hold out. The claim, the seller credit and the
// transaction status advances run in a single database transaction, so a
// failure in any statement rolls the claim back and the hold stays held for
// the sweep to retry.
func (r *PgHoldRepo) ReleasePayout(ctx context.Context, cand escrow.Candidate, payout int64) error {
	return r.pg.InTransaction(ctx, func(tx postgres.Executor) error {
		txRepo := &repo{db: tx, builder: r.builder}

		if err := txRepo.claimRelease(ctx, cand.TransactionID, payout); err != nil {
			return err
		}
		if !cand.Confirmed {
			if err := txRepo.advanceTransaction(ctx, cand.TransactionID, transaction.StatusPaid, transaction.StatusConfirmed); err != nil {
				return err
			}
		}
		if err := txRepo.creditSeller(ctx, cand.SellerID, payout); err != nil {
			return err
		}
		return txRepo.advanceTransaction(ctx, cand.TransactionID, transaction.StatusConfirmed, transaction.StatusCompleted)
	})
}

// claimRelease transitions held -> released. When the conditional update
// claims nothing, the hold's current status decides which sentinel error the
// caller sees.
func (r *repo) claimRelease(ctx context.Context, txID uuid.UUID, payout int64) error {
	now := time.Now().UTC()
	query, args, err := r.builder.Update("escrow_holds").
		Set("status", escrow.HoldReleased).
		Set("seller_payout", payout).
		Set("released_at", now).
		Where(squirrel.Eq{"transaction_id": txID, "status": escrow.HoldHeld}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build claim query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("claim release: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyClaimFailure(ctx, txID, escrow.ErrAlreadyReleased, escrow.ErrHoldRefunded)
	}
	return nil
}

// advanceTransaction conditionally moves the transaction between release
// phases. Zero affected rows means a concurrent writer already advanced it;
// the hold claim decided the winner, so that is not an error.
func (r *repo) advanceTransaction(ctx context.Context, txID uuid.UUID, from, to transaction.Status) error {
	query, args, err := r.builder.Update("transactions").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": txID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark %s: %w", to, err)
	}
	return nil
}

func (r *repo) creditSeller(ctx context.Context, sellerID uuid.UUID, payout int64) error {
	query, args, err := r.builder.Update("accounts").
		Set("balance", squirrel.Expr("balance + ?", payout)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": sellerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit seller: no account %s", sellerID)
	}
	return nil
}

// ClaimRefund transitions held -> refunded.
func (r *repo) ClaimRefund(ctx context.Context, txID uuid.UUID) error {
	now := time.Now().UTC()
	query, args, err := r.builder.Update("escrow_holds").
		Set("status", escrow.HoldRefunded).
		Set("refunded_at", now).
		Where(squirrel.Eq{"transaction_id": txID, "status": escrow.HoldHeld}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build claim query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("claim refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyClaimFailure(ctx, txID, escrow.ErrAlreadyReleased, escrow.ErrAlreadyRefunded)
	}
	return nil
}

func (r *repo) classifyClaimFailure(ctx context.Context, txID uuid.UUID, onReleased, onRefunded error) error {
	h, err := r.GetByTransactionID(ctx, txID)
	if err != nil {
		return err
	}
	switch h.Status {
	case escrow.HoldReleased:
		return onReleased
	case escrow.HoldRefunded:
		return onRefunded
	default:
		return fmt.Errorf("hold claim lost with status %s", h.Status)
	}
}

func (r *repo) ExtendRelease(ctx context.Context, txID uuid.UUID, releaseAt time.Time) error {
	query, args, err := r.builder.Update("escrow_holds").
		Set("release_at", releaseAt).
		Where(squirrel.Eq{"transaction_id": txID, "status": escrow.HoldHeld}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("extend release: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return escrow.ErrHoldNotFound
	}
	return nil
}
