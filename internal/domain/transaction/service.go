package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-marketplace/payments/internal/domain/account"
	"github.com/ticket-marketplace/payments/internal/domain/gateway"
	"github.com/ticket-marketplace/payments/internal/domain/listing"
	"github.com/ticket-marketplace/payments/internal/events"
	"github.com/ticket-marketplace/payments/pkg/logger"
	"github.com/ticket-marketplace/payments/pkg/metrics"
)

// Service drives the payment pipeline: initiation, buyer confirmation and
// gateway callback reconciliation.
type Service struct {
	repo     Repo
	listings listing.Ledger
	accounts account.Store
	gateway  gateway.Gateway
	escrow   EscrowManager
	emitter  events.Emitter
	l        *logger.Logger

	feeBps     int
	holdPeriod time.Duration
}

func NewService(
	repo Repo,
	listings listing.Ledger,
	accounts account.Store,
	gw gateway.Gateway,
	escrow EscrowManager,
	emitter events.Emitter,
	l *logger.Logger,
	feeBps int,
	holdPeriod time.Duration,
) *Service {
	return &Service{
		repo:       repo,
		listings:   listings,
		accounts:   accounts,
		gateway:    gw,
		escrow:     escrow,
		emitter:    emitter,
		l:          l,
		feeBps:     feeBps,
		holdPeriod: holdPeriod,
	}
}

// InitiateOutcome is returned to the buyer after a successful initiation.
type InitiateOutcome struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	CorrelationID   string    `json:"correlation_id"`
	CustomerMessage string    `json:"message"`
}

// InitiatePayment validates the purchase, atomically reserves inventory
// together with the pending transaction row, then asks the gateway to push a
// payment prompt to the payer. A gateway failure cancels the transaction and
// restores the reservation before the error surfaces.
func (s *Service) InitiatePayment(ctx context.Context, listingID, buyerID uuid.UUID, quantity int, payerPhone string) (InitiateOutcome, error) {
	if quantity < 1 {
		return InitiateOutcome{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	lst, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return InitiateOutcome{}, ErrListingUnavailable
		}
		return InitiateOutcome{}, fmt.Errorf("load listing: %w", err)
	}
	if lst.Status != listing.StatusActive || quantity > lst.Quantity {
		return InitiateOutcome{}, ErrListingUnavailable
	}

	buyer, err := s.accounts.GetByID(ctx, buyerID)
	if err != nil {
		return InitiateOutcome{}, fmt.Errorf("load buyer: %w", err)
	}
	if !buyer.Active() {
		return InitiateOutcome{}, ErrAccountInactive
	}

	now := time.Now().UTC()
	total := lst.UnitPrice * int64(quantity)

	t := Transaction{
		ID:              uuid.New(),
		ListingID:       listingID,
		BuyerID:         buyerID,
		SellerID:        lst.SellerID,
		Quantity:        quantity,
		TotalAmount:     total,
		PlatformFee:     ComputeFee(total, s.feeBps),
		Status:          StatusPending,
		EscrowReleaseAt: now.Add(s.holdPeriod),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateWithReservation(ctx, t); err != nil {
		metrics.PaymentsInitiated.WithLabelValues("reservation_failed").Inc()
		return InitiateOutcome{}, fmt.Errorf("create transaction: %w", err)
	}

	res, err := s.gateway.Initiate(ctx, gateway.InitiateRequest{
		Amount:      total,
		Phone:       payerPhone,
		Reference:   t.ID.String(),
		Description: fmt.Sprintf("Ticket purchase %s", t.ID),
	})
	if err != nil {
		s.cancelAndRestore(ctx, t)
		metrics.PaymentsInitiated.WithLabelValues("gateway_failed").Inc()
		return InitiateOutcome{}, fmt.Errorf("initiate gateway payment: %w", err)
	}

	if err := s.repo.SetGatewayRef(ctx, t.ID, res.CorrelationID); err != nil {
		// Without the stored ref the callback can never match, so the
		// pending row would sit on its reservation forever.
		s.cancelAndRestore(ctx, t)
		metrics.PaymentsInitiated.WithLabelValues("ref_store_failed").Inc()
		return InitiateOutcome{}, fmt.Errorf("store gateway ref: %w", err)
	}

	metrics.PaymentsInitiated.WithLabelValues("ok").Inc()
	s.emit(ctx, t, StatusPending)

	return InitiateOutcome{
		TransactionID:   t.ID,
		CorrelationID:   res.CorrelationID,
		CustomerMessage: res.CustomerMessage,
	}, nil
}

// cancelAndRestore reverses a reservation whose payment can never settle.
// No escrow exists at this point.
func (s *Service) cancelAndRestore(ctx context.Context, t Transaction) {
	if err := s.repo.UpdateStatus(ctx, t.ID, StatusPending, StatusCancelled); err != nil {
		s.l.Error("cancel transaction after initiation failure: transaction_id=%s error=%v", t.ID, err)
		return
	}
	if err := s.listings.Restore(ctx, t.ListingID, t.Quantity); err != nil {
		s.l.Error("restore inventory after initiation failure: listing_id=%s error=%v", t.ListingID, err)
	}
}

// ConfirmTransfer is the buyer acknowledging receipt. It moves the
// transaction to confirmed and immediately triggers escrow release; when the
// release fails, the transaction stays confirmed and the sweep retries it.
func (s *Service) ConfirmTransfer(ctx context.Context, txID, confirmerID uuid.UUID) (Transaction, error) {
	t, err := s.GetByID(ctx, txID)
	if err != nil {
		return Transaction{}, err
	}

	if t.BuyerID != confirmerID {
		return Transaction{}, fmt.Errorf("%w: only the buyer may confirm", ErrUnauthorizedAction)
	}
	if t.Status != StatusPaid {
		return Transaction{}, fmt.Errorf("%w: confirm requires status %s, have %s", ErrInvalidStateTransition, StatusPaid, t.Status)
	}

	if err := s.repo.UpdateStatus(ctx, txID, StatusPaid, StatusConfirmed); err != nil {
		return Transaction{}, fmt.Errorf("confirm transaction: %w", err)
	}
	t.Status = StatusConfirmed
	s.emit(ctx, t, StatusConfirmed)

	if _, err := s.escrow.Release(ctx, txID); err != nil {
		// Not silently lost: the sweep picks confirmed transactions up again.
		s.l.Error("escrow release after confirmation failed: transaction_id=%s error=%v", txID, err)
		return t, nil
	}

	t.Status = StatusCompleted
	s.emit(ctx, t, StatusCompleted)
	return t, nil
}

// ApplyGatewayCallback reconciles an asynchronous payment result. Duplicate
// and unknown callbacks are no-ops; the conditional pending transition is the
// idempotency gate that makes at-least-once delivery safe.
func (s *Service) ApplyGatewayCallback(ctx context.Context, cb gateway.Callback) error {
	if err := s.gateway.ValidateCallback(cb); err != nil {
		metrics.GatewayCallbacks.WithLabelValues("malformed").Inc()
		return fmt.Errorf("validate callback: %w", err)
	}

	t, err := s.repo.GetByGatewayRef(ctx, cb.CorrelationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.GatewayCallbacks.WithLabelValues("unknown").Inc()
			return fmt.Errorf("%w: correlation_id=%s", ErrUnknownCallback, cb.CorrelationID)
		}
		return fmt.Errorf("lookup transaction by gateway ref: %w", err)
	}

	if t.Status != StatusPending {
		// Post-pending state: the callback was already applied.
		metrics.GatewayCallbacks.WithLabelValues("duplicate").Inc()
		s.l.Info("duplicate gateway callback: transaction_id=%s status=%s", t.ID, t.Status)
		return nil
	}

	if cb.Succeeded() {
		return s.applyPaymentSuccess(ctx, t)
	}
	return s.applyPaymentFailure(ctx, t, cb)
}

func (s *Service) applyPaymentSuccess(ctx context.Context, t Transaction) error {
	// The hold goes in before the transition. CreateHold is idempotent, so
	// a redelivery after a hold-only failure completes the pair instead of
	// being dismissed as a duplicate of an unfinished apply.
	if err := s.escrow.CreateHold(ctx, t.ID, t.TotalAmount, t.EscrowReleaseAt); err != nil {
		return fmt.Errorf("create escrow hold: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, t.ID, StatusPending, StatusPaid); err != nil {
		if errors.Is(err, ErrInvalidStateTransition) {
			// A concurrent delivery won the transition.
			metrics.GatewayCallbacks.WithLabelValues("duplicate").Inc()
			return nil
		}
		return fmt.Errorf("mark paid: %w", err)
	}

	if err := s.accounts.IncrementTransactionCounters(ctx, t.BuyerID, t.SellerID); err != nil {
		return fmt.Errorf("increment transaction counters: %w", err)
	}

	metrics.GatewayCallbacks.WithLabelValues("success").Inc()
	t.Status = StatusPaid
	s.emit(ctx, t, StatusPaid)
	return nil
}

func (s *Service) applyPaymentFailure(ctx context.Context, t Transaction, cb gateway.Callback) error {
	if err := s.repo.UpdateStatus(ctx, t.ID, StatusPending, StatusCancelled); err != nil {
		if errors.Is(err, ErrInvalidStateTransition) {
			metrics.GatewayCallbacks.WithLabelValues("duplicate").Inc()
			return nil
		}
		return fmt.Errorf("mark cancelled: %w", err)
	}

	if err := s.listings.Restore(ctx, t.ListingID, t.Quantity); err != nil {
		return fmt.Errorf("restore inventory: %w", err)
	}

	metrics.GatewayCallbacks.WithLabelValues("failure").Inc()
	s.l.Info("payment failed at gateway: transaction_id=%s result_code=%d desc=%s",
		t.ID, cb.ResultCode, cb.ResultDescription)
	t.Status = StatusCancelled
	s.emit(ctx, t, StatusCancelled)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Transaction, error) {
	query, _ := NewTransactionsQueryBuilder().WithIDs(id).Build()

	txs, err := s.repo.GetTransactions(ctx, query)
	if err != nil {
		return Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if len(txs) == 0 {
		return Transaction{}, ErrNotFound
	}
	return txs[0], nil
}

func (s *Service) GetTransactions(ctx context.Context, query TransactionsQuery) ([]Transaction, error) {
	txs, err := s.repo.GetTransactions(ctx, &query)
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	return txs, nil
}

func (s *Service) emit(ctx context.Context, t Transaction, status Status) {
	s.emitter.EmitTransactionUpdated(ctx, events.TransactionUpdated{
		TransactionID: t.ID,
		ListingID:     t.ListingID,
		BuyerID:       t.BuyerID,
		SellerID:      t.SellerID,
		Status:        string(status),
		TotalAmount:   t.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	})
}
