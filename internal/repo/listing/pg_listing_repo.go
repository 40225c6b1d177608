package listing_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticket-marketplace/payments/internal/domain/listing"
	"github.com/ticket-marketplace/payments/pkg/postgres"
)

// PgListingRepo implements the inventory ledger. Reserve and Restore are
// conditional updates; the quantity guard is what prevents overselling under
// concurrent purchases.
type PgListingRepo struct {
	pg      *postgres.Postgres
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

var _ listing.Ledger = (*PgListingRepo)(nil)

func NewPgListingRepo(pg *postgres.Postgres) *PgListingRepo {
	return &PgListingRepo{
		pg:      pg,
		db:      pg.Pool,
		builder: pg.Builder,
	}
}

func (r *PgListingRepo) GetByID(ctx context.Context, id uuid.UUID) (listing.Listing, error) {
	query, args, err := r.builder.Select("id", "seller_id", "unit_price", "quantity", "status").
		From("listings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return listing.Listing{}, fmt.Errorf("build query: %w", err)
	}

	var l listing.Listing
	var rawStatus string
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&l.ID, &l.SellerID, &l.UnitPrice, &l.Quantity, &rawStatus,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, fmt.Errorf("query listing: %w", err)
	}
	l.Status = listing.Status(rawStatus)
	return l, nil
}

func (r *PgListingRepo) Reserve(ctx context.Context, id uuid.UUID, qty int) error {
	query, args, err := r.builder.Update("listings").
		Set("quantity", squirrel.Expr("quantity - ?", qty)).
		Set("status", squirrel.Expr("CASE WHEN quantity - ? = 0 THEN 'sold' ELSE status END", qty)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": listing.StatusActive}).
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
		return r.classifyFailure(ctx, id)
	}
	return nil
}

func (r *PgListingRepo) Restore(ctx context.Context, id uuid.UUID, qty int) error {
	query, args, err := r.builder.Update("listings").
		Set("quantity", squirrel.Expr("quantity + ?", qty)).
		Set("status", listing.StatusActive).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build restore query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("restore listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return listing.ErrNotFound
	}
	return nil
}

func (r *PgListingRepo) classifyFailure(ctx context.Context, id uuid.UUID) error {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != listing.StatusActive {
		return listing.ErrUnavailable
	}
	return listing.ErrInsufficientInventory
}
