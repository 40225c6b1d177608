package account_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticket-marketplace/payments/internal/domain/account"
	"github.com/ticket-marketplace/payments/pkg/postgres"
)

type PgAccountRepo struct {
	pg      *postgres.Postgres
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

var _ account.Store = (*PgAccountRepo)(nil)

func NewPgAccountRepo(pg *postgres.Postgres) *PgAccountRepo {
	return &PgAccountRepo{
		pg:      pg,
		db:      pg.Pool,
		builder: pg.Builder,
	}
}

func (r *PgAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	query, args, err := r.builder.Select("id", "phone", "status", "balance", "bought_count", "sold_count").
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return account.Account{}, fmt.Errorf("build query: %w", err)
	}

	var a account.Account
	var rawStatus string
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.Phone, &rawStatus, &a.Balance, &a.BoughtCount, &a.SoldCount,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, fmt.Errorf("query account: %w", err)
	}
	a.Status = account.Status(rawStatus)
	return a, nil
}

// IncrementTransactionCounters bumps both parties' counters. Buyer and
// seller are separate rows, so two statements inside one database
// transaction keep the pair atomic.
func (r *PgAccountRepo) IncrementTransactionCounters(ctx context.Context, buyerID, sellerID uuid.UUID) error {
	return r.pg.InTransaction(ctx, func(tx postgres.Executor) error {
		if err := r.increment(ctx, tx, buyerID, "bought_count"); err != nil {
			return err
		}
		return r.increment(ctx, tx, sellerID, "sold_count")
	})
}

func (r *PgAccountRepo) increment(ctx context.Context, db postgres.Executor, id uuid.UUID, column string) error {
	query, args, err := r.builder.Update("accounts").
		Set(column, squirrel.Expr(column+" + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", account.ErrNotFound, id)
	}
	return nil
}

func (r *PgAccountRepo) Credit(ctx context.Context, id uuid.UUID, amount int64) error {
	query, args, err := r.builder.Update("accounts").
		Set("balance", squirrel.Expr("balance + ?", amount)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", account.ErrNotFound, id)
	}
	return nil
}
