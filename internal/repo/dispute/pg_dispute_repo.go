package dispute_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticket-marketplace/payments/internal/domain/dispute"
	"github.com/ticket-marketplace/payments/pkg/postgres"
)

type PgDisputeRepo struct {
	pg      *postgres.Postgres
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

var _ dispute.Repo = (*PgDisputeRepo)(nil)

func NewPgDisputeRepo(pg *postgres.Postgres) *PgDisputeRepo {
	return &PgDisputeRepo{
		pg:      pg,
		db:      pg.Pool,
		builder: pg.Builder,
	}
}

func (r *PgDisputeRepo) CreateCase(ctx context.Context, c dispute.Case) error {
	query, args, err := r.builder.Insert("dispute_cases").
		Columns("id", "transaction_id", "raised_by", "reported_party", "reason", "description", "status", "created_at").
		Values(c.ID, c.TransactionID, c.RaisedBy, c.ReportedParty, c.Reason, c.Description, c.Status, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return dispute.ErrCaseExists
		}
		return fmt.Errorf("insert dispute case: %w", err)
	}
	return nil
}

func (r *PgDisputeRepo) GetCaseByTransactionID(ctx context.Context, txID uuid.UUID) (dispute.Case, error) {
	query, args, err := r.builder.Select("id", "transaction_id", "raised_by", "reported_party", "reason",
		"description", "status", "resolution_notes", "created_at", "resolved_at").
		From("dispute_cases").
		Where(squirrel.Eq{"transaction_id": txID}).
		ToSql()
	if err != nil {
		return dispute.Case{}, fmt.Errorf("build query: %w", err)
	}

	var c dispute.Case
	var rawStatus string
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.TransactionID, &c.RaisedBy, &c.ReportedParty, &c.Reason,
		&c.Description, &rawStatus, &c.ResolutionNotes, &c.CreatedAt, &c.ResolvedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dispute.Case{}, dispute.ErrCaseNotFound
		}
		return dispute.Case{}, fmt.Errorf("query dispute case: %w", err)
	}
	c.Status = dispute.CaseStatus(rawStatus)
	return c, nil
}

// ResolveCase conditionally flips an unresolved case to resolved; the status
// guard keeps two moderators from resolving the same case twice.
func (r *PgDisputeRepo) ResolveCase(ctx context.Context, caseID uuid.UUID, notes string, resolvedAt time.Time) error {
	query, args, err := r.builder.Update("dispute_cases").
		Set("status", dispute.CaseResolved).
		Set("resolution_notes", notes).
		Set("resolved_at", resolvedAt).
		Where(squirrel.Eq{"id": caseID}).
		Where(squirrel.Eq{"status": []dispute.CaseStatus{dispute.CaseOpen, dispute.CaseInvestigating}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve dispute case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dispute.ErrCaseResolved
	}
	return nil
}

func (r *PgDisputeRepo) CreateRefundRequest(ctx context.Context, req dispute.RefundRequest) error {
	query, args, err := r.builder.Insert("refund_requests").
		Columns("id", "transaction_id", "requested_by", "amount", "reason", "status", "created_at", "processed_at").
		Values(req.ID, req.TransactionID, req.RequestedBy, req.Amount, req.Reason, req.Status, req.CreatedAt, req.ProcessedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return dispute.ErrRefundExists
		}
		return fmt.Errorf("insert refund request: %w", err)
	}
	return nil
}

func (r *PgDisputeRepo) GetRefundByTransactionID(ctx context.Context, txID uuid.UUID) (dispute.RefundRequest, error) {
	query, args, err := r.builder.Select("id", "transaction_id", "requested_by", "amount", "reason",
		"status", "created_at", "processed_at").
		From("refund_requests").
		Where(squirrel.Eq{"transaction_id": txID}).
		ToSql()
	if err != nil {
		return dispute.RefundRequest{}, fmt.Errorf("build query: %w", err)
	}

	var req dispute.RefundRequest
	var rawStatus string
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&req.ID, &req.TransactionID, &req.RequestedBy, &req.Amount, &req.Reason,
		&rawStatus, &req.CreatedAt, &req.ProcessedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dispute.RefundRequest{}, dispute.ErrRefundNotFound
		}
		return dispute.RefundRequest{}, fmt.Errorf("query refund request: %w", err)
	}
	req.Status = dispute.RefundStatus(rawStatus)
	return req, nil
}

func (r *PgDisputeRepo) SetRefundStatus(ctx context.Context, refundID uuid.UUID, from, to dispute.RefundStatus, processedAt *time.Time) error {
	builder := r.builder.Update("refund_requests").
		Set("status", to).
		Where(squirrel.Eq{"id": refundID, "status": from})
	if processedAt != nil {
		builder = builder.Set("processed_at", *processedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set refund status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dispute.ErrRefundNotFound
	}
	return nil
}
