package dispute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-marketplace/payments/internal/domain/account"
	"github.com/ticket-marketplace/payments/internal/domain/listing"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
	"github.com/ticket-marketplace/payments/internal/events"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

// Service coordinates dispute cases and refund requests against the
// transaction state machine and the escrow hold behind it.
type Service struct {
	repo     Repo
	txs      transaction.Repo
	escrow   Escrow
	listings listing.Ledger
	accounts account.Store
	emitter  events.Emitter
	l        *logger.Logger

	// releaseExtension pushes the hold's release date when a dispute opens.
	releaseExtension time.Duration
}

func NewService(
	repo Repo,
	txs transaction.Repo,
	esc Escrow,
	listings listing.Ledger,
	accounts account.Store,
	emitter events.Emitter,
	l *logger.Logger,
	releaseExtension time.Duration,
) *Service {
	return &Service{
		repo:             repo,
		txs:              txs,
		escrow:           esc,
		listings:         listings,
		accounts:         accounts,
		emitter:          emitter,
		l:                l,
		releaseExtension: releaseExtension,
	}
}

// FileDispute freezes a paid or confirmed transaction and opens a case for a
// moderator. Only the buyer or the seller of the transaction may file.
func (s *Service) FileDispute(ctx context.Context, txID, raisedBy uuid.UUID, reason, description string) (Case, error) {
	t, err := s.getTransaction(ctx, txID)
	if err != nil {
		return Case{}, err
	}

	if raisedBy != t.BuyerID && raisedBy != t.SellerID {
		return Case{}, fmt.Errorf("%w: only a party to the transaction may dispute", transaction.ErrUnauthorizedAction)
	}
	reportedParty := t.SellerID
	if raisedBy == t.SellerID {
		reportedParty = t.BuyerID
	}
	if t.Status != transaction.StatusPaid && t.Status != transaction.StatusConfirmed {
		return Case{}, fmt.Errorf("%w: status=%s", ErrNotDisputable, t.Status)
	}

	if err := s.txs.UpdateStatus(ctx, txID, t.Status, transaction.StatusDisputed); err != nil {
		if errors.Is(err, transaction.ErrInvalidStateTransition) {
			return Case{}, fmt.Errorf("%w: concurrent status change", ErrNotDisputable)
		}
		return Case{}, fmt.Errorf("mark disputed: %w", err)
	}
	if err := s.txs.SetDisputeReason(ctx, txID, reason); err != nil {
		return Case{}, fmt.Errorf("store dispute reason: %w", err)
	}

	// The sweep never releases a disputed transaction; the extension keeps the
	// hold frozen past resolution as well.
	until := time.Now().UTC().Add(s.releaseExtension)
	if err := s.escrow.ExtendRelease(ctx, txID, until); err != nil {
		s.l.Error("extend escrow release on dispute: transaction_id=%s error=%v", txID, err)
	}
	if err := s.txs.ExtendEscrowRelease(ctx, txID, until); err != nil {
		s.l.Error("extend transaction release date on dispute: transaction_id=%s error=%v", txID, err)
	}

	c := Case{
		ID:            uuid.New(),
		TransactionID: txID,
		RaisedBy:      raisedBy,
		ReportedParty: reportedParty,
		Reason:        reason,
		Description:   description,
		Status:        CaseOpen,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateCase(ctx, c); err != nil {
		return Case{}, fmt.Errorf("create dispute case: %w", err)
	}

	t.Status = transaction.StatusDisputed
	s.emit(ctx, t)
	s.l.Info("dispute filed: transaction_id=%s raised_by=%s", txID, raisedBy)
	return c, nil
}

// RequestRefund records a buyer's refund request. A cancelled transaction is
// approved and processed on the spot since no money is held; a disputed one
// stays pending until a moderator resolves the case.
func (s *Service) RequestRefund(ctx context.Context, txID, requestedBy uuid.UUID, reason string) (RefundRequest, error) {
	t, err := s.getTransaction(ctx, txID)
	if err != nil {
		return RefundRequest{}, err
	}

	if requestedBy != t.BuyerID {
		return RefundRequest{}, fmt.Errorf("%w: only the buyer may request a refund", transaction.ErrUnauthorizedAction)
	}

	now := time.Now().UTC()
	r := RefundRequest{
		ID:            uuid.New(),
		TransactionID: txID,
		RequestedBy:   requestedBy,
		Amount:        t.TotalAmount,
		Reason:        reason,
		CreatedAt:     now,
	}

	switch t.Status {
	case transaction.StatusCancelled:
		r.Status = RefundProcessed
		r.ProcessedAt = &now
	case transaction.StatusDisputed:
		r.Status = RefundPending
	default:
		return RefundRequest{}, fmt.Errorf("%w: status=%s", ErrNotRefundable, t.Status)
	}

	if err := s.repo.CreateRefundRequest(ctx, r); err != nil {
		return RefundRequest{}, fmt.Errorf("create refund request: %w", err)
	}
	s.l.Info("refund requested: transaction_id=%s status=%s", txID, r.Status)
	return r, nil
}

// Resolution is the outcome of a resolved dispute.
type Resolution struct {
	TransactionID uuid.UUID          `json:"transaction_id"`
	Outcome       Outcome            `json:"outcome"`
	FinalStatus   transaction.Status `json:"final_status"`
	SellerPayout  int64              `json:"seller_payout,omitempty"`
}

// ResolveDispute applies a moderator's verdict. release_to_seller pays the
// hold out and completes the transaction; refund_buyer refunds the hold,
// credits the buyer, cancels the transaction and restores the inventory.
func (s *Service) ResolveDispute(ctx context.Context, txID uuid.UUID, outcome Outcome, notes string) (Resolution, error) {
	t, err := s.getTransaction(ctx, txID)
	if err != nil {
		return Resolution{}, err
	}
	if t.Status != transaction.StatusDisputed {
		return Resolution{}, fmt.Errorf("%w: status=%s", transaction.ErrInvalidStateTransition, t.Status)
	}

	c, err := s.repo.GetCaseByTransactionID(ctx, txID)
	if err != nil {
		return Resolution{}, fmt.Errorf("load dispute case: %w", err)
	}
	if c.Status == CaseResolved || c.Status == CaseClosed {
		return Resolution{}, ErrCaseResolved
	}

	var res Resolution
	switch outcome {
	case OutcomeReleaseToSeller:
		res, err = s.resolveForSeller(ctx, t)
	case OutcomeRefundBuyer:
		res, err = s.resolveForBuyer(ctx, t)
	default:
		return Resolution{}, ErrUnknownOutcome
	}
	if err != nil {
		return Resolution{}, err
	}

	if err := s.txs.SetResolutionNotes(ctx, txID, notes); err != nil {
		return Resolution{}, fmt.Errorf("store resolution notes: %w", err)
	}
	if err := s.repo.ResolveCase(ctx, c.ID, notes, time.Now().UTC()); err != nil {
		return Resolution{}, fmt.Errorf("resolve dispute case: %w", err)
	}

	t.Status = res.FinalStatus
	s.emit(ctx, t)
	s.l.Info("dispute resolved: transaction_id=%s outcome=%s", txID, outcome)
	return res, nil
}

func (s *Service) resolveForSeller(ctx context.Context, t transaction.Transaction) (Resolution, error) {
	released, err := s.escrow.Release(ctx, t.ID)
	if err != nil {
		return Resolution{}, fmt.Errorf("release escrow to seller: %w", err)
	}
	if err := s.txs.UpdateStatus(ctx, t.ID, transaction.StatusDisputed, transaction.StatusCompleted); err != nil {
		return Resolution{}, fmt.Errorf("complete disputed transaction: %w", err)
	}
	s.rejectPendingRefund(ctx, t.ID)

	return Resolution{
		TransactionID: t.ID,
		Outcome:       OutcomeReleaseToSeller,
		FinalStatus:   transaction.StatusCompleted,
		SellerPayout:  released.SellerPayout,
	}, nil
}

func (s *Service) resolveForBuyer(ctx context.Context, t transaction.Transaction) (Resolution, error) {
	if err := s.escrow.Refund(ctx, t.ID); err != nil {
		return Resolution{}, fmt.Errorf("refund escrow: %w", err)
	}
	if err := s.txs.UpdateStatus(ctx, t.ID, transaction.StatusDisputed, transaction.StatusCancelled); err != nil {
		return Resolution{}, fmt.Errorf("cancel disputed transaction: %w", err)
	}
	if err := s.accounts.Credit(ctx, t.BuyerID, t.TotalAmount); err != nil {
		return Resolution{}, fmt.Errorf("credit buyer refund: %w", err)
	}
	if err := s.listings.Restore(ctx, t.ListingID, t.Quantity); err != nil {
		s.l.Error("restore inventory on refund: listing_id=%s error=%v", t.ListingID, err)
	}
	s.processPendingRefund(ctx, t.ID)

	return Resolution{
		TransactionID: t.ID,
		Outcome:       OutcomeRefundBuyer,
		FinalStatus:   transaction.StatusCancelled,
	}, nil
}

func (s *Service) rejectPendingRefund(ctx context.Context, txID uuid.UUID) {
	r, err := s.repo.GetRefundByTransactionID(ctx, txID)
	if err != nil {
		if !errors.Is(err, ErrRefundNotFound) {
			s.l.Error("load refund request: transaction_id=%s error=%v", txID, err)
		}
		return
	}
	if err := s.repo.SetRefundStatus(ctx, r.ID, RefundPending, RefundRejected, nil); err != nil {
		s.l.Error("reject refund request: refund_id=%s error=%v", r.ID, err)
	}
}

func (s *Service) processPendingRefund(ctx context.Context, txID uuid.UUID) {
	r, err := s.repo.GetRefundByTransactionID(ctx, txID)
	if err != nil {
		if !errors.Is(err, ErrRefundNotFound) {
			s.l.Error("load refund request: transaction_id=%s error=%v", txID, err)
		}
		return
	}
	now := time.Now().UTC()
	if err := s.repo.SetRefundStatus(ctx, r.ID, RefundPending, RefundProcessed, &now); err != nil {
		s.l.Error("process refund request: refund_id=%s error=%v", r.ID, err)
	}
}

func (s *Service) GetCase(ctx context.Context, txID uuid.UUID) (Case, error) {
	return s.repo.GetCaseByTransactionID(ctx, txID)
}

func (s *Service) getTransaction(ctx context.Context, txID uuid.UUID) (transaction.Transaction, error) {
	query, _ := transaction.NewTransactionsQueryBuilder().WithIDs(txID).Build()

	txs, err := s.txs.GetTransactions(ctx, query)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if len(txs) == 0 {
		return transaction.Transaction{}, transaction.ErrNotFound
	}
	return txs[0], nil
}

func (s *Service) emit(ctx context.Context, t transaction.Transaction) {
	s.emitter.EmitTransactionUpdated(ctx, events.TransactionUpdated{
		TransactionID: t.ID,
		ListingID:     t.ListingID,
		BuyerID:       t.BuyerID,
		SellerID:      t.SellerID,
		Status:        string(t.Status),
		TotalAmount:   t.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	})
}
