package transaction_repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticket-marketplace/payments/internal/domain/transaction"
	"github.com/ticket-marketplace/payments/pkg/pointers"
)

var testBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// testPgTransactionRepo wraps the mock pool to exercise the reservation flow
// that normally runs inside a pool-level transaction.
type testPgTransactionRepo struct {
	repo
	pool pgxmock.PgxPoolIface
}

func (r *testPgTransactionRepo) CreateWithReservation(ctx context.Context, t transaction.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &repo{db: tx, builder: r.builder}
	if err := txRepo.reserveListing(ctx, t.ListingID, t.Quantity); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := txRepo.insertTransaction(ctx, t); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func transactionRow(mock pgxmock.PgxPoolIface, t transaction.Transaction) *pgxmock.Rows {
	return mock.NewRows([]string{
		"id", "listing_id", "buyer_id", "seller_id", "quantity", "total_amount", "platform_fee",
		"gateway_ref", "status", "escrow_release_at", "dispute_reason", "resolution_notes",
		"created_at", "updated_at",
	}).AddRow(
		t.ID, t.ListingID, t.BuyerID, t.SellerID, t.Quantity, t.TotalAmount, t.PlatformFee,
		t.GatewayRef, string(t.Status), t.EscrowReleaseAt, t.DisputeReason, t.ResolutionNotes,
		t.CreatedAt, t.UpdatedAt,
	)
}

func TestCreateWithReservation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &testPgTransactionRepo{repo: repo{db: mock, builder: testBuilder}, pool: mock}
	ctx := context.Background()

	now := time.Now().UTC()
	tx := transaction.Transaction{
		ID:              uuid.New(),
		ListingID:       uuid.New(),
		BuyerID:         uuid.New(),
		SellerID:        uuid.New(),
		Quantity:        2,
		TotalAmount:     2_000,
		PlatformFee:     200,
		Status:          transaction.StatusPending,
		EscrowReleaseAt: now.Add(72 * time.Hour),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	reserveSQL := `UPDATE listings SET quantity = quantity - \$1, status = CASE WHEN quantity - \$2 = 0 THEN 'sold' ELSE status END, updated_at = \$3 WHERE id = \$4 AND status = \$5 AND quantity >= \$6`
	insertSQL := `INSERT INTO transactions \(id,listing_id,buyer_id,seller_id,quantity,total_amount,platform_fee,gateway_ref,status,escrow_release_at,created_at,updated_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8,\$9,\$10,\$11,\$12\)`

	t.Run("should reserve inventory and insert the pending transaction", func(t *testing.T) {
		// given
		mock.ExpectBegin()
		mock.ExpectExec(reserveSQL).
			WithArgs(2, 2, pgxmock.AnyArg(), tx.ListingID.String(), "active", 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(insertSQL).
			WithArgs(tx.ID, tx.ListingID, tx.BuyerID, tx.SellerID, tx.Quantity, tx.TotalAmount,
				tx.PlatformFee, tx.GatewayRef, tx.Status, tx.EscrowReleaseAt, tx.CreatedAt, tx.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		// when
		err := repo.CreateWithReservation(ctx, tx)

		// then
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report insufficient inventory when the decrement claims nothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(reserveSQL).
			WithArgs(2, 2, pgxmock.AnyArg(), tx.ListingID.String(), "active", 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT status FROM listings WHERE id = \$1`).
			WithArgs(tx.ListingID.String()).
			WillReturnRows(mock.NewRows([]string{"status"}).AddRow("active"))
		mock.ExpectRollback()

		err := repo.CreateWithReservation(ctx, tx)

		assert.ErrorIs(t, err, transaction.ErrInsufficientInventory)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report an inactive listing as unavailable", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(reserveSQL).
			WithArgs(2, 2, pgxmock.AnyArg(), tx.ListingID.String(), "active", 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT status FROM listings WHERE id = \$1`).
			WithArgs(tx.ListingID.String()).
			WillReturnRows(mock.NewRows([]string{"status"}).AddRow("sold"))
		mock.ExpectRollback()

		err := repo.CreateWithReservation(ctx, tx)

		assert.ErrorIs(t, err, transaction.ErrListingUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetTransactions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgTransactionRepo{repo: repo{db: mock, builder: testBuilder}}
	ctx := context.Background()

	t.Run("should filter by id and status", func(t *testing.T) {
		// given
		now := time.Now().UTC()
		tx := transaction.Transaction{
			ID:              uuid.New(),
			ListingID:       uuid.New(),
			BuyerID:         uuid.New(),
			SellerID:        uuid.New(),
			Quantity:        1,
			TotalAmount:     1_000,
			PlatformFee:     100,
			Status:          transaction.StatusPaid,
			EscrowReleaseAt: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		query, err := transaction.NewTransactionsQueryBuilder().
			WithIDs(tx.ID).
			WithStatuses(transaction.StatusPaid).
			Build()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT id, listing_id, buyer_id, seller_id, quantity, total_amount, platform_fee, gateway_ref, status, escrow_release_at, dispute_reason, resolution_notes, created_at, updated_at FROM transactions WHERE id IN \(\$1\) AND status IN \(\$2\)`).
			WithArgs(tx.ID, transaction.StatusPaid).
			WillReturnRows(transactionRow(mock, tx))

		// when
		result, err := repo.GetTransactions(ctx, query)

		// then
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, tx.ID, result[0].ID)
		assert.Equal(t, transaction.StatusPaid, result[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should apply sorting and pagination", func(t *testing.T) {
		buyerID := uuid.New()
		query, err := transaction.NewTransactionsQueryBuilder().
			WithBuyerIDs(buyerID).
			WithSort("created_at", "desc").
			WithPagination(transaction.Pagination{PageSize: 10, PageNumber: 2}).
			Build()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT .+ FROM transactions WHERE buyer_id IN \(\$1\) ORDER BY created_at desc LIMIT 10 OFFSET 10`).
			WithArgs(buyerID).
			WillReturnRows(transactionRow(mock, transaction.Transaction{
				ID: uuid.New(), BuyerID: buyerID, Status: transaction.StatusPending,
			}))

		result, err := repo.GetTransactions(ctx, query)

		require.NoError(t, err)
		assert.Len(t, result, 1)
	})

	t.Run("should reject an invalid sort field", func(t *testing.T) {
		sortBy := "platform_fee"
		sortOrder := "asc"
		query := &transaction.TransactionsQuery{SortBy: &sortBy, SortOrder: &sortOrder}

		_, err := repo.GetTransactions(ctx, query)

		assert.ErrorIs(t, err, transaction.ErrInvalidQuery)
	})

	t.Run("should fail on an unknown status in the database", func(t *testing.T) {
		query, err := transaction.NewTransactionsQueryBuilder().WithIDs(uuid.New()).Build()
		require.NoError(t, err)

		rows := transactionRow(mock, transaction.Transaction{ID: uuid.New(), Status: "exploded"})
		mock.ExpectQuery(`SELECT .+ FROM transactions WHERE id IN \(\$1\)`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnRows(rows)

		_, err = repo.GetTransactions(ctx, query)

		assert.ErrorContains(t, err, "invalid status")
	})
}

func TestGetByGatewayRef(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgTransactionRepo{repo: repo{db: mock, builder: testBuilder}}
	ctx := context.Background()

	t.Run("should return the transaction for a known ref", func(t *testing.T) {
		ref := "ws_CO_123"
		tx := transaction.Transaction{ID: uuid.New(), GatewayRef: pointers.Ptr(ref), Status: transaction.StatusPending}

		mock.ExpectQuery(`SELECT .+ FROM transactions WHERE gateway_ref = \$1`).
			WithArgs(ref).
			WillReturnRows(transactionRow(mock, tx))

		result, err := repo.GetByGatewayRef(ctx, ref)

		require.NoError(t, err)
		assert.Equal(t, tx.ID, result.ID)
	})

	t.Run("should return not found for an unknown ref", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM transactions WHERE gateway_ref = \$1`).
			WithArgs("ws_CO_unknown").
			WillReturnRows(mock.NewRows([]string{
				"id", "listing_id", "buyer_id", "seller_id", "quantity", "total_amount", "platform_fee",
				"gateway_ref", "status", "escrow_release_at", "dispute_reason", "resolution_notes",
				"created_at", "updated_at",
			}))

		_, err := repo.GetByGatewayRef(ctx, "ws_CO_unknown")

		assert.ErrorIs(t, err, transaction.ErrNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgTransactionRepo{repo: repo{db: mock, builder: testBuilder}}
	ctx := context.Background()
	id := uuid.New()

	updateSQL := `UPDATE transactions SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`

	t.Run("should apply an allowed transition", func(t *testing.T) {
		mock.ExpectExec(updateSQL).
			WithArgs(transaction.StatusPaid, pgxmock.AnyArg(), id.String(), transaction.StatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateStatus(ctx, id, transaction.StatusPending, transaction.StatusPaid)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should refuse a forbidden transition without touching the database", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, id, transaction.StatusCompleted, transaction.StatusPending)

		assert.ErrorIs(t, err, transaction.ErrInvalidStateTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report a lost race as an invalid transition", func(t *testing.T) {
		mock.ExpectExec(updateSQL).
			WithArgs(transaction.StatusPaid, pgxmock.AnyArg(), id.String(), transaction.StatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, id, transaction.StatusPending, transaction.StatusPaid)

		assert.ErrorIs(t, err, transaction.ErrInvalidStateTransition)
	})
}

func TestGetForRelease(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgTransactionRepo{repo: repo{db: mock, builder: testBuilder}}
	ctx := context.Background()

	selectSQL := `SELECT id, seller_id, total_amount, platform_fee, status FROM transactions WHERE id = \$1`

	t.Run("should mark a confirmed transaction as confirmed", func(t *testing.T) {
		id := uuid.New()
		sellerID := uuid.New()

		mock.ExpectQuery(selectSQL).
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows([]string{"id", "seller_id", "total_amount", "platform_fee", "status"}).
				AddRow(id, sellerID, int64(2_000), int64(200), "confirmed"))

		c, err := repo.GetForRelease(ctx, id)

		require.NoError(t, err)
		assert.True(t, c.Confirmed)
		assert.Equal(t, int64(2_000), c.TotalAmount)
	})

	t.Run("should leave a paid transaction unconfirmed", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(selectSQL).
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows([]string{"id", "seller_id", "total_amount", "platform_fee", "status"}).
				AddRow(id, uuid.New(), int64(2_000), int64(200), "paid"))

		c, err := repo.GetForRelease(ctx, id)

		require.NoError(t, err)
		assert.False(t, c.Confirmed)
	})

	t.Run("should return not found for an unknown transaction", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(selectSQL).
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows([]string{"id", "seller_id", "total_amount", "platform_fee", "status"}))

		_, err := repo.GetForRelease(ctx, id)

		assert.ErrorIs(t, err, transaction.ErrNotFound)
	})
}

func TestListReleaseDue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgTransactionRepo{repo: repo{db: mock, builder: testBuilder}}
	ctx := context.Background()

	t.Run("should list paid past their release date and confirmed transactions", func(t *testing.T) {
		now := time.Now().UTC()
		paidID := uuid.New()
		confirmedID := uuid.New()

		mock.ExpectQuery(`SELECT id, seller_id, total_amount, platform_fee, status FROM transactions WHERE \(\(status = \$1 AND escrow_release_at <= \$2\) OR status = \$3\) ORDER BY escrow_release_at ASC`).
			WithArgs(transaction.StatusPaid, now, transaction.StatusConfirmed).
			WillReturnRows(mock.NewRows([]string{"id", "seller_id", "total_amount", "platform_fee", "status"}).
				AddRow(paidID, uuid.New(), int64(1_000), int64(100), "paid").
				AddRow(confirmedID, uuid.New(), int64(3_000), int64(300), "confirmed"))

		due, err := repo.ListReleaseDue(ctx, now)

		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, paidID, due[0].TransactionID)
		assert.False(t, due[0].Confirmed)
		assert.True(t, due[1].Confirmed)
	})
}

func TestSetGatewayRef(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgTransactionRepo{repo: repo{db: mock, builder: testBuilder}}
	ctx := context.Background()
	id := uuid.New()

	setSQL := `UPDATE transactions SET gateway_ref = \$1, updated_at = \$2 WHERE id = \$3`

	t.Run("should store the correlation id", func(t *testing.T) {
		mock.ExpectExec(setSQL).
			WithArgs("ws_CO_123", pgxmock.AnyArg(), id.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.SetGatewayRef(ctx, id, "ws_CO_123")

		assert.NoError(t, err)
	})

	t.Run("should return not found for an unknown transaction", func(t *testing.T) {
		mock.ExpectExec(setSQL).
			WithArgs("ws_CO_123", pgxmock.AnyArg(), id.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetGatewayRef(ctx, id, "ws_CO_123")

		assert.ErrorIs(t, err, transaction.ErrNotFound)
	})
}
