//go:build integration
// +build integration

package transaction_repo_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
	escrow_repo "github.com/ticket-marketplace/payments/internal/repo/escrow"
	transaction_repo "github.com/ticket-marketplace/payments/internal/repo/transaction"
	"github.com/ticket-marketplace/payments/internal/testinfra"
)

var pg *testinfra.PostgresContainer

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	pg, err = testinfra.NewPostgres(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to start postgres: %v", err))
	}

	code := m.Run()

	pg.Cleanup(ctx)
	os.Exit(code)
}

func seedAccount(t *testing.T, ctx context.Context) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pg.Pool.Pool.Exec(ctx,
		`INSERT INTO accounts (id, phone, status) VALUES ($1, $2, 'active')`,
		id, "254712345678")
	require.NoError(t, err)
	return id
}

func seedListing(t *testing.T, ctx context.Context, sellerID uuid.UUID, unitPrice int64, quantity int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pg.Pool.Pool.Exec(ctx,
		`INSERT INTO listings (id, seller_id, unit_price, quantity, status) VALUES ($1, $2, $3, $4, 'active')`,
		id, sellerID, unitPrice, quantity)
	require.NoError(t, err)
	return id
}

func pendingTransaction(listingID, buyerID, sellerID uuid.UUID, qty int) transaction.Transaction {
	now := time.Now().UTC()
	return transaction.Transaction{
		ID:              uuid.New(),
		ListingID:       listingID,
		BuyerID:         buyerID,
		SellerID:        sellerID,
		Quantity:        qty,
		TotalAmount:     int64(qty) * 1_000,
		PlatformFee:     int64(qty) * 100,
		Status:          transaction.StatusPending,
		EscrowReleaseAt: now.Add(72 * time.Hour),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestCreateWithReservation_ConcurrentBuyers(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, pg.Truncate(ctx))

	repo := transaction_repo.NewPgTransactionRepo(pg.Pool)
	sellerID := seedAccount(t, ctx)

	t.Run("should never oversell under concurrent reservations", func(t *testing.T) {
		// given: three units, six buyers racing for one each
		listingID := seedListing(t, ctx, sellerID, 1_000, 3)

		buyers := make([]uuid.UUID, 6)
		for i := range buyers {
			buyers[i] = seedAccount(t, ctx)
		}

		var (
			mu   sync.Mutex
			errs []error
		)
		g := errgroup.Group{}
		for _, buyerID := range buyers {
			tx := pendingTransaction(listingID, buyerID, sellerID, 1)
			g.Go(func() error {
				err := repo.CreateWithReservation(ctx, tx)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			})
		}
		require.NoError(t, g.Wait())

		// then: exactly three reservations won
		var succeeded, soldOut int
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, transaction.ErrInsufficientInventory):
				soldOut++
			default:
				t.Fatalf("unexpected reservation error: %v", err)
			}
		}
		assert.Equal(t, 3, succeeded)
		assert.Equal(t, 3, soldOut)

		var quantity int
		var status string
		require.NoError(t, pg.Pool.Pool.QueryRow(ctx,
			`SELECT quantity, status FROM listings WHERE id = $1`, listingID).
			Scan(&quantity, &status))
		assert.Equal(t, 0, quantity)
		assert.Equal(t, "sold", status)

		var count int
		require.NoError(t, pg.Pool.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM transactions WHERE listing_id = $1`, listingID).
			Scan(&count))
		assert.Equal(t, 3, count)
	})

	t.Run("should refuse a quantity above the remainder", func(t *testing.T) {
		listingID := seedListing(t, ctx, sellerID, 1_000, 1)
		buyerID := seedAccount(t, ctx)

		err := repo.CreateWithReservation(ctx, pendingTransaction(listingID, buyerID, sellerID, 2))

		assert.ErrorIs(t, err, transaction.ErrInsufficientInventory)
	})

	t.Run("should refuse an inactive listing", func(t *testing.T) {
		listingID := seedListing(t, ctx, sellerID, 1_000, 5)
		_, err := pg.Pool.Pool.Exec(ctx, `UPDATE listings SET status = 'suspended' WHERE id = $1`, listingID)
		require.NoError(t, err)
		buyerID := seedAccount(t, ctx)

		err = repo.CreateWithReservation(ctx, pendingTransaction(listingID, buyerID, sellerID, 1))

		assert.ErrorIs(t, err, transaction.ErrListingUnavailable)
	})
}

func TestUpdateStatus_ConcurrentCallbacks(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, pg.Truncate(ctx))

	repo := transaction_repo.NewPgTransactionRepo(pg.Pool)
	sellerID := seedAccount(t, ctx)
	buyerID := seedAccount(t, ctx)
	listingID := seedListing(t, ctx, sellerID, 1_000, 10)

	t.Run("should let exactly one duplicate delivery win the transition", func(t *testing.T) {
		// given
		tx := pendingTransaction(listingID, buyerID, sellerID, 1)
		require.NoError(t, repo.CreateWithReservation(ctx, tx))

		// when: two deliveries of the same callback race
		results := make([]error, 2)
		g := errgroup.Group{}
		for i := range results {
			g.Go(func() error {
				results[i] = repo.UpdateStatus(ctx, tx.ID, transaction.StatusPending, transaction.StatusPaid)
				return nil
			})
		}
		require.NoError(t, g.Wait())

		// then
		var won, lost int
		for _, err := range results {
			if err == nil {
				won++
			} else if errors.Is(err, transaction.ErrInvalidStateTransition) {
				lost++
			}
		}
		assert.Equal(t, 1, won)
		assert.Equal(t, 1, lost)
	})
}

func TestReleasePayout_Concurrent(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, pg.Truncate(ctx))

	txRepo := transaction_repo.NewPgTransactionRepo(pg.Pool)
	holdRepo := escrow_repo.NewPgHoldRepo(pg.Pool)
	sellerID := seedAccount(t, ctx)
	buyerID := seedAccount(t, ctx)
	listingID := seedListing(t, ctx, sellerID, 1_000, 10)

	t.Run("should pay out a hold exactly once", func(t *testing.T) {
		// given: a paid transaction with a held escrow hold
		tx := pendingTransaction(listingID, buyerID, sellerID, 2)
		require.NoError(t, txRepo.CreateWithReservation(ctx, tx))
		require.NoError(t, txRepo.UpdateStatus(ctx, tx.ID, transaction.StatusPending, transaction.StatusPaid))
		require.NoError(t, holdRepo.Create(ctx, escrow.Hold{
			ID:            uuid.New(),
			TransactionID: tx.ID,
			Amount:        tx.TotalAmount,
			Status:        escrow.HoldHeld,
			ReleaseAt:     tx.EscrowReleaseAt,
			CreatedAt:     time.Now().UTC(),
		}))

		cand := escrow.Candidate{
			TransactionID: tx.ID,
			SellerID:      sellerID,
			TotalAmount:   tx.TotalAmount,
			PlatformFee:   tx.PlatformFee,
		}
		payout := tx.TotalAmount - tx.PlatformFee

		// when: the sweep and a buyer confirmation race for the claim
		results := make([]error, 2)
		g := errgroup.Group{}
		for i := range results {
			g.Go(func() error {
				results[i] = holdRepo.ReleasePayout(ctx, cand, payout)
				return nil
			})
		}
		require.NoError(t, g.Wait())

		// then
		var won, lost int
		for _, err := range results {
			if err == nil {
				won++
			} else if errors.Is(err, escrow.ErrAlreadyReleased) {
				lost++
			}
		}
		assert.Equal(t, 1, won)
		assert.Equal(t, 1, lost)

		hold, err := holdRepo.GetByTransactionID(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, escrow.HoldReleased, hold.Status)
		require.NotNil(t, hold.SellerPayout)
		assert.Equal(t, payout, *hold.SellerPayout)

		// the winner committed the advances and the credit with the claim
		var status string
		require.NoError(t, pg.Pool.Pool.QueryRow(ctx,
			`SELECT status FROM transactions WHERE id = $1`, tx.ID).Scan(&status))
		assert.Equal(t, "completed", status)

		var balance int64
		require.NoError(t, pg.Pool.Pool.QueryRow(ctx,
			`SELECT balance FROM accounts WHERE id = $1`, sellerID).Scan(&balance))
		assert.Equal(t, payout, balance)
	})
}
