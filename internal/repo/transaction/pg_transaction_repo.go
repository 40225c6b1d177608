package transaction_repo

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

const transactionColumns = "id, listing_id, buyer_id, seller_id, quantity, total_amount, platform_fee, " +
	"gateway_ref, status, escrow_release_at, dispute_reason, resolution_notes, created_at, updated_at"

// PgTransactionRepo persists transactions and doubles as the escrow
// manager's ledger view. All status changes are conditional updates on the
// current status; a zero row count means another writer won.
type PgTransactionRepo struct {
	pg *postgres.Postgres
	repo
}

var (
	_ transaction.Repo = (*PgTransactionRepo)(nil)
	_ escrow.Ledger    = (*PgTransactionRepo)(nil)
)

func NewPgTransactionRepo(pg *postgres.Postgres) *PgTransactionRepo {
	return &PgTransactionRepo{
		pg:   pg,
		repo: repo{db: pg.Pool, builder: pg.Builder},
	}
}

type repo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

// CreateWithReservation inserts the pending transaction and decrements the
// listing's inventory in one database transaction. The decrement is guarded
// by the remaining quantity, so two buyers racing for the last units cannot
// both reserve them.
func (r *PgTransactionRepo) CreateWithReservation(ctx context.Context, t transaction.Transaction) error {
	return r.pg.InTransaction(ctx, func(tx postgres.Executor) error {
		txRepo := &repo{db: tx, builder: r.pg.Builder}

		if err := txRepo.reserveListing(ctx, t.ListingID, t.Quantity); err != nil {
			return err
		}
		return txRepo.insertTransaction(ctx, t)
	})
}

func (r *repo) reserveListing(ctx context.Context, listingID uuid.UUID, qty int) error {
	query, args, err := r.builder.Update("listings").
		Set("quantity", squirrel.Expr("quantity - ?", qty)).
		Set("status", squirrel.Expr("CASE WHEN quantity - ? = 0 THEN 'sold' ELSE status END", qty)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": listingID, "status": "active"}).
		Where(squirrel.GtOrEq{"quantity": qty}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reserve query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("reserve listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyReservationFailure(ctx, listingID)
	}
	return nil
}

// classifyReservationFailure tells a sold-out race apart from a missing or
// inactive listing after the conditional decrement claimed nothing.
func (r *repo) classifyReservationFailure(ctx context.Context, listingID uuid.UUID) error {
	query, args, err := r.builder.Select("status").
		From("listings").
		Where(squirrel.Eq{"id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build listing status query: %w", err)
	}

	var status string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.ErrListingUnavailable
		}
		return fmt.Errorf("check listing status: %w", err)
	}
	if status != "active" {
		return transaction.ErrListingUnavailable
	}
	return transaction.ErrInsufficientInventory
}

func (r *repo) insertTransaction(ctx context.Context, t transaction.Transaction) error {
	query, args, err := r.builder.Insert("transactions").
		Columns("id", "listing_id", "buyer_id", "seller_id", "quantity", "total_amount",
			"platform_fee", "gateway_ref", "status", "escrow_release_at", "created_at", "updated_at").
		Values(t.ID, t.ListingID, t.BuyerID, t.SellerID, t.Quantity, t.TotalAmount,
			t.PlatformFee, t.GatewayRef, t.Status, t.EscrowReleaseAt, t.CreatedAt, t.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PgTransactionRepo) GetTransactions(ctx context.Context, query *transaction.TransactionsQuery) ([]transaction.Transaction, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", transaction.ErrInvalidQuery, err)
	}

	sql, args := r.buildTransactionsQuery(query)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return parseTransactionRows(rows)
}

func (r *PgTransactionRepo) GetByGatewayRef(ctx context.Context, ref string) (transaction.Transaction, error) {
	query, args, err := r.builder.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"gateway_ref": ref}).
		ToSql()
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("query by gateway ref: %w", err)
	}
	defer rows.Close()

	txs, err := parseTransactionRows(rows)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if len(txs) == 0 {
		return transaction.Transaction{}, transaction.ErrNotFound
	}
	return txs[0], nil
}

func (r *PgTransactionRepo) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	query, args, err := r.builder.Update("transactions").
		Set("gateway_ref", ref).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("gateway ref already assigned: %w", err)
		}
		return fmt.Errorf("set gateway ref: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return transaction.ErrNotFound
	}
	return nil
}

func (r *PgTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to transaction.Status) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", transaction.ErrInvalidStateTransition, from, to)
	}

	query, args, err := r.builder.Update("transactions").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s -> %s lost to a concurrent update", transaction.ErrInvalidStateTransition, from, to)
	}
	return nil
}

func (r *PgTransactionRepo) SetDisputeReason(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setColumn(ctx, id, "dispute_reason", reason)
}

func (r *PgTransactionRepo) SetResolutionNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return r.setColumn(ctx, id, "resolution_notes", notes)
}

func (r *PgTransactionRepo) setColumn(ctx context.Context, id uuid.UUID, column, value string) error {
	query, args, err := r.builder.Update("transactions").
		Set(column, value).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return transaction.ErrNotFound
	}
	return nil
}

func (r *PgTransactionRepo) ExtendEscrowRelease(ctx context.Context, id uuid.UUID, until time.Time) error {
	query, args, err := r.builder.Update("transactions").
		Set("escrow_release_at", until).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("extend escrow release: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return transaction.ErrNotFound
	}
	return nil
}

// GetForRelease loads the slice of a transaction the escrow manager needs.
func (r *PgTransactionRepo) GetForRelease(ctx context.Context, txID uuid.UUID) (escrow.Candidate, error) {
	query, args, err := r.builder.Select("id", "seller_id", "total_amount", "platform_fee", "status").
		From("transactions").
		Where(squirrel.Eq{"id": txID}).
		ToSql()
	if err != nil {
		return escrow.Candidate{}, fmt.Errorf("build query: %w", err)
	}

	var (
		c         escrow.Candidate
		rawStatus string
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&c.TransactionID, &c.SellerID, &c.TotalAmount, &c.PlatformFee, &rawStatus,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return escrow.Candidate{}, transaction.ErrNotFound
		}
		return escrow.Candidate{}, fmt.Errorf("query release candidate: %w", err)
	}

	c.Confirmed = rawStatus == string(transaction.StatusConfirmed) ||
		rawStatus == string(transaction.StatusCompleted)
	return c, nil
}

// ListReleaseDue selects paid transactions past their release date plus
// confirmed ones whose confirm-time release did not finish.
func (r *PgTransactionRepo) ListReleaseDue(ctx context.Context, now time.Time) ([]escrow.Candidate, error) {
	query, args, err := r.builder.Select("id", "seller_id", "total_amount", "platform_fee", "status").
		From("transactions").
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"status": transaction.StatusPaid},
				squirrel.LtOrEq{"escrow_release_at": now},
			},
			squirrel.Eq{"status": transaction.StatusConfirmed},
		}).
		OrderBy("escrow_release_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query release due: %w", err)
	}
	defer rows.Close()

	var due []escrow.Candidate
	for rows.Next() {
		var (
			c         escrow.Candidate
			rawStatus string
		)
		if err := rows.Scan(&c.TransactionID, &c.SellerID, &c.TotalAmount, &c.PlatformFee, &rawStatus); err != nil {
			return nil, fmt.Errorf("scan release candidate: %w", err)
		}
		c.Confirmed = rawStatus == string(transaction.StatusConfirmed)
		due = append(due, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate release candidates: %w", err)
	}
	return due, nil
}

func (r *repo) buildTransactionsQuery(q *transaction.TransactionsQuery) (string, []interface{}) {
	query := r.builder.Select(transactionColumns).From("transactions")

	if len(q.IDs) > 0 {
		query = query.Where(squirrel.Eq{"id": q.IDs})
	}
	if len(q.BuyerIDs) > 0 {
		query = query.Where(squirrel.Eq{"buyer_id": q.BuyerIDs})
	}
	if len(q.SellerIDs) > 0 {
		query = query.Where(squirrel.Eq{"seller_id": q.SellerIDs})
	}
	if len(q.ListingIDs) > 0 {
		query = query.Where(squirrel.Eq{"listing_id": q.ListingIDs})
	}
	if len(q.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"status": q.Statuses})
	}
	if len(q.GatewayRefs) > 0 {
		query = query.Where(squirrel.Eq{"gateway_ref": q.GatewayRefs})
	}

	if q.SortBy != nil && q.SortOrder != nil {
		query = query.OrderBy(fmt.Sprintf("%s %s", *q.SortBy, *q.SortOrder))
	}

	if q.Pagination != nil {
		offset := (q.Pagination.PageNumber - 1) * q.Pagination.PageSize
		query = query.Limit(uint64(q.Pagination.PageSize)).Offset(uint64(offset))
	}

	sql, args, _ := query.ToSql()
	return sql, args
}

func parseTransactionRows(rows pgx.Rows) ([]transaction.Transaction, error) {
	var txs []transaction.Transaction
	for rows.Next() {
		var (
			t         transaction.Transaction
			rawStatus string
		)
		err := rows.Scan(&t.ID, &t.ListingID, &t.BuyerID, &t.SellerID, &t.Quantity,
			&t.TotalAmount, &t.PlatformFee, &t.GatewayRef, &rawStatus, &t.EscrowReleaseAt,
			&t.DisputeReason, &t.ResolutionNotes, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		status, err := transaction.NewStatus(rawStatus)
		if err != nil {
			return nil, fmt.Errorf("invalid status in database: %w", err)
		}
		t.Status = status

		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txs, nil
}
