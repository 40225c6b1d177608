package escrow_repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
	"github.com/ticket-marketplace/payments/pkg/pointers"
)

func holdRepo(t *testing.T) (*PgHoldRepo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PgHoldRepo{
		repo: repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)},
	}, mock
}

// testPgHoldRepo wraps the mock pool to exercise the payout flow that
// normally runs inside a pool-level transaction.
type testPgHoldRepo struct {
	repo
	pool pgxmock.PgxPoolIface
}

func (r *testPgHoldRepo) ReleasePayout(ctx context.Context, cand escrow.Candidate, payout int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &repo{db: tx, builder: r.builder}
	if err := txRepo.claimRelease(ctx, cand.TransactionID, payout); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if !cand.Confirmed {
		if err := txRepo.advanceTransaction(ctx, cand.TransactionID, transaction.StatusPaid, transaction.StatusConfirmed); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}
	if err := txRepo.creditSeller(ctx, cand.SellerID, payout); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := txRepo.advanceTransaction(ctx, cand.TransactionID, transaction.StatusConfirmed, transaction.StatusCompleted); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func heldRow(mock pgxmock.PgxPoolIface, h escrow.Hold) *pgxmock.Rows {
	return mock.NewRows([]string{
		"id", "transaction_id", "amount", "seller_payout", "status",
		"release_at", "released_at", "refunded_at", "created_at",
	}).AddRow(
		h.ID, h.TransactionID, h.Amount, h.SellerPayout, string(h.Status),
		h.ReleaseAt, h.ReleasedAt, h.RefundedAt, h.CreatedAt,
	)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	hold := escrow.Hold{
		ID:            uuid.New(),
		TransactionID: uuid.New(),
		Amount:        2_000,
		Status:        escrow.HoldHeld,
		ReleaseAt:     time.Now().UTC().Add(72 * time.Hour),
		CreatedAt:     time.Now().UTC(),
	}

	insertSQL := `INSERT INTO escrow_holds \(id,transaction_id,amount,status,release_at,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\)`

	t.Run("should insert a held hold", func(t *testing.T) {
		repo, mock := holdRepo(t)
		mock.ExpectExec(insertSQL).
			WithArgs(hold.ID, hold.TransactionID, hold.Amount, hold.Status, hold.ReleaseAt, hold.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, hold)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should map a duplicate transaction to hold exists", func(t *testing.T) {
		repo, mock := holdRepo(t)
		mock.ExpectExec(insertSQL).
			WithArgs(hold.ID, hold.TransactionID, hold.Amount, hold.Status, hold.ReleaseAt, hold.CreatedAt).
			WillReturnError(assertDuplicateKeyError{})

		err := repo.Create(ctx, hold)

		assert.ErrorIs(t, err, escrow.ErrHoldExists)
	})
}

// assertDuplicateKeyError mimics the driver's unique violation message.
type assertDuplicateKeyError struct{}

func (assertDuplicateKeyError) Error() string {
	return `ERROR: duplicate key value violates unique constraint "escrow_holds_transaction_id_key" (SQLSTATE 23505)`
}

func TestGetByTransactionID(t *testing.T) {
	ctx := context.Background()

	selectSQL := `SELECT id, transaction_id, amount, seller_payout, status, release_at, released_at, refunded_at, created_at FROM escrow_holds WHERE transaction_id = \$1`

	t.Run("should return the hold", func(t *testing.T) {
		repo, mock := holdRepo(t)
		hold := escrow.Hold{
			ID:            uuid.New(),
			TransactionID: uuid.New(),
			Amount:        2_000,
			Status:        escrow.HoldHeld,
			ReleaseAt:     time.Now().UTC(),
			CreatedAt:     time.Now().UTC(),
		}

		mock.ExpectQuery(selectSQL).
			WithArgs(hold.TransactionID.String()).
			WillReturnRows(heldRow(mock, hold))

		got, err := repo.GetByTransactionID(ctx, hold.TransactionID)

		require.NoError(t, err)
		assert.Equal(t, hold.ID, got.ID)
		assert.Equal(t, escrow.HoldHeld, got.Status)
	})

	t.Run("should return hold not found", func(t *testing.T) {
		repo, mock := holdRepo(t)
		txID := uuid.New()

		mock.ExpectQuery(selectSQL).
			WithArgs(txID.String()).
			WillReturnRows(mock.NewRows([]string{
				"id", "transaction_id", "amount", "seller_payout", "status",
				"release_at", "released_at", "refunded_at", "created_at",
			}))

		_, err := repo.GetByTransactionID(ctx, txID)

		assert.ErrorIs(t, err, escrow.ErrHoldNotFound)
	})
}

func TestReleasePayout(t *testing.T) {
	ctx := context.Background()
	txID := uuid.New()
	sellerID := uuid.New()

	cand := escrow.Candidate{
		TransactionID: txID,
		SellerID:      sellerID,
		TotalAmount:   2_000,
		PlatformFee:   200,
	}

	claimSQL := `UPDATE escrow_holds SET status = \$1, seller_payout = \$2, released_at = \$3 WHERE status = \$4 AND transaction_id = \$5`
	advanceSQL := `UPDATE transactions SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`
	creditSQL := `UPDATE accounts SET balance = balance \+ \$1, updated_at = \$2 WHERE id = \$3`

	newRepo := func(t *testing.T) (*testPgHoldRepo, pgxmock.PgxPoolIface) {
		t.Helper()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		t.Cleanup(mock.Close)
		return &testPgHoldRepo{
			repo: repo{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)},
			pool: mock,
		}, mock
	}

	t.Run("should claim, advance and credit in one transaction", func(t *testing.T) {
		// given
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec(claimSQL).
			WithArgs(escrow.HoldReleased, int64(1_800), pgxmock.AnyArg(), escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(advanceSQL).
			WithArgs(transaction.StatusConfirmed, pgxmock.AnyArg(), txID.String(), transaction.StatusPaid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(creditSQL).
			WithArgs(int64(1_800), pgxmock.AnyArg(), sellerID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(advanceSQL).
			WithArgs(transaction.StatusCompleted, pgxmock.AnyArg(), txID.String(), transaction.StatusConfirmed).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		// when
		err := repo.ReleasePayout(ctx, cand, 1_800)

		// then
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should skip the confirm advance for a confirmed transaction", func(t *testing.T) {
		repo, mock := newRepo(t)
		confirmed := cand
		confirmed.Confirmed = true

		mock.ExpectBegin()
		mock.ExpectExec(claimSQL).
			WithArgs(escrow.HoldReleased, int64(1_800), pgxmock.AnyArg(), escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(creditSQL).
			WithArgs(int64(1_800), pgxmock.AnyArg(), sellerID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(advanceSQL).
			WithArgs(transaction.StatusCompleted, pgxmock.AnyArg(), txID.String(), transaction.StatusConfirmed).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := repo.ReleasePayout(ctx, confirmed, 1_800)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report an already released hold", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec(claimSQL).
			WithArgs(escrow.HoldReleased, int64(1_800), pgxmock.AnyArg(), escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT .+ FROM escrow_holds WHERE transaction_id = \$1`).
			WithArgs(txID.String()).
			WillReturnRows(heldRow(mock, escrow.Hold{
				TransactionID: txID,
				Status:        escrow.HoldReleased,
				SellerPayout:  pointers.Ptr(int64(1_800)),
			}))
		mock.ExpectRollback()

		err := repo.ReleasePayout(ctx, cand, 1_800)

		assert.ErrorIs(t, err, escrow.ErrAlreadyReleased)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report a refunded hold", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec(claimSQL).
			WithArgs(escrow.HoldReleased, int64(1_800), pgxmock.AnyArg(), escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT .+ FROM escrow_holds WHERE transaction_id = \$1`).
			WithArgs(txID.String()).
			WillReturnRows(heldRow(mock, escrow.Hold{TransactionID: txID, Status: escrow.HoldRefunded}))
		mock.ExpectRollback()

		err := repo.ReleasePayout(ctx, cand, 1_800)

		assert.ErrorIs(t, err, escrow.ErrHoldRefunded)
	})

	t.Run("should roll the claim back when the credit fails", func(t *testing.T) {
		// given: the claim lands but the seller credit errors out
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec(claimSQL).
			WithArgs(escrow.HoldReleased, int64(1_800), pgxmock.AnyArg(), escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(advanceSQL).
			WithArgs(transaction.StatusConfirmed, pgxmock.AnyArg(), txID.String(), transaction.StatusPaid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(creditSQL).
			WithArgs(int64(1_800), pgxmock.AnyArg(), sellerID.String()).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		// when
		err := repo.ReleasePayout(ctx, cand, 1_800)

		// then: nothing committed, the hold stays held for the sweep
		assert.ErrorContains(t, err, "credit seller")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRefund(t *testing.T) {
	ctx := context.Background()
	txID := uuid.New()

	claimSQL := `UPDATE escrow_holds SET status = \$1, refunded_at = \$2 WHERE status = \$3 AND transaction_id = \$4`

	t.Run("should claim a held hold", func(t *testing.T) {
		repo, mock := holdRepo(t)
		mock.ExpectExec(claimSQL).
			WithArgs(escrow.HoldRefunded, pgxmock.AnyArg(), escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.ClaimRefund(ctx, txID)

		assert.NoError(t, err)
	})

	t.Run("should report a released hold", func(t *testing.T) {
		repo, mock := holdRepo(t)
		mock.ExpectExec(claimSQL).
			WithArgs(escrow.HoldRefunded, pgxmock.AnyArg(), escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT .+ FROM escrow_holds WHERE transaction_id = \$1`).
			WithArgs(txID.String()).
			WillReturnRows(heldRow(mock, escrow.Hold{TransactionID: txID, Status: escrow.HoldReleased}))

		err := repo.ClaimRefund(ctx, txID)

		assert.ErrorIs(t, err, escrow.ErrAlreadyReleased)
	})
}

func TestExtendRelease(t *testing.T) {
	ctx := context.Background()
	txID := uuid.New()
	until := time.Now().UTC().Add(168 * time.Hour)

	extendSQL := `UPDATE escrow_holds SET release_at = \$1 WHERE status = \$2 AND transaction_id = \$3`

	t.Run("should move the release date of a held hold", func(t *testing.T) {
		repo, mock := holdRepo(t)
		mock.ExpectExec(extendSQL).
			WithArgs(until, escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.ExtendRelease(ctx, txID, until)

		assert.NoError(t, err)
	})

	t.Run("should report a missing or claimed hold", func(t *testing.T) {
		repo, mock := holdRepo(t)
		mock.ExpectExec(extendSQL).
			WithArgs(until, escrow.HoldHeld, txID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.ExtendRelease(ctx, txID, until)

		assert.ErrorIs(t, err, escrow.ErrHoldNotFound)
	})
}
