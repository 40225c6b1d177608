// Package transaction holds the purchase transaction aggregate and its state
// machine, the only component allowed to mutate transaction status.
package transaction

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
	StatusDisputed  Status = "disputed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var AvailableStatuses = []Status{
	StatusPending, StatusPaid, StatusConfirmed, StatusDisputed, StatusCompleted, StatusCancelled,
}

// CanTransitionTo encodes the transaction lifecycle. The only transition
// that skips a state is the failure branch pending -> cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return slices.Contains([]Status{StatusPaid, StatusCancelled}, next)
	case StatusPaid:
		return slices.Contains([]Status{StatusConfirmed, StatusDisputed}, next)
	case StatusConfirmed:
		return slices.Contains([]Status{StatusCompleted, StatusDisputed}, next)
	case StatusDisputed:
		return slices.Contains([]Status{StatusCompleted, StatusCancelled}, next)
	case StatusCompleted, StatusCancelled:
		return false
	default:
		return false
	}
}

// Terminal statuses are retained for audit and never mutated again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func NewStatus(raw string) (Status, error) {
	if slices.Contains(AvailableStatuses, Status(raw)) {
		return Status(raw), nil
	}
	return "", errors.New("invalid transaction status")
}

// Transaction is one purchase attempt. All monetary fields are fixed-point
// integers in minor currency units.
type Transaction struct {
	ID        uuid.UUID `json:"transaction_id"`
	ListingID uuid.UUID `json:"listing_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Quantity  int       `json:"quantity"`
	// TotalAmount = Quantity x unit price, snapshotted at creation.
	TotalAmount int64 `json:"total_amount"`
	PlatformFee int64 `json:"platform_fee"`
	// GatewayRef is the provider correlation ID, nil until initiation
	// succeeds.
	GatewayRef *string `json:"gateway_ref,omitempty"`
	Status     Status  `json:"status"`
	// EscrowReleaseAt is fixed at creation and only moves through an
	// explicit dispute extension.
	EscrowReleaseAt time.Time  `json:"escrow_release_at"`
	DisputeReason   *string    `json:"dispute_reason,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ComputeFee returns the platform fee for a total, with the rate expressed
// in basis points. Integer math, rounded toward zero.
func ComputeFee(total int64, feeBps int) int64 {
	return total * int64(feeBps) / 10_000
}

type Pagination struct {
	PageSize   int
	PageNumber int
}

type TransactionsQuery struct {
	IDs         []uuid.UUID
	BuyerIDs    []uuid.UUID
	SellerIDs   []uuid.UUID
	ListingIDs  []uuid.UUID
	Statuses    []Status
	GatewayRefs []string
	Pagination  *Pagination
	SortBy      *string
	SortOrder   *string
}

func (q *TransactionsQuery) Validate() error {
	if q.SortBy != nil && *q.SortBy != "created_at" && *q.SortBy != "updated_at" {
		return fmt.Errorf("invalid sort by: %s", *q.SortBy)
	}
	if q.SortOrder != nil && *q.SortOrder != "asc" && *q.SortOrder != "desc" {
		return fmt.Errorf("invalid sort order: %s", *q.SortOrder)
	}
	return nil
}

type TransactionsQueryBuilder struct {
	query *TransactionsQuery
}

func NewTransactionsQueryBuilder() *TransactionsQueryBuilder {
	return &TransactionsQueryBuilder{query: &TransactionsQuery{}}
}

func (b *TransactionsQueryBuilder) Build() (*TransactionsQuery, error) {
	if err := b.query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, err.Error())
	}
	return b.query, nil
}

func (b *TransactionsQueryBuilder) WithIDs(ids ...uuid.UUID) *TransactionsQueryBuilder {
	b.query.IDs = ids
	return b
}

func (b *TransactionsQueryBuilder) WithBuyerIDs(ids ...uuid.UUID) *TransactionsQueryBuilder {
	b.query.BuyerIDs = ids
	return b
}

func (b *TransactionsQueryBuilder) WithSellerIDs(ids ...uuid.UUID) *TransactionsQueryBuilder {
	b.query.SellerIDs = ids
	return b
}

func (b *TransactionsQueryBuilder) WithListingIDs(ids ...uuid.UUID) *TransactionsQueryBuilder {
	b.query.ListingIDs = ids
	return b
}

func (b *TransactionsQueryBuilder) WithStatuses(statuses ...Status) *TransactionsQueryBuilder {
	b.query.Statuses = statuses
	return b
}

func (b *TransactionsQueryBuilder) WithGatewayRefs(refs ...string) *TransactionsQueryBuilder {
	b.query.GatewayRefs = refs
	return b
}

func (b *TransactionsQueryBuilder) WithSort(sortBy, sortOrder string) *TransactionsQueryBuilder {
	b.query.SortBy = &sortBy
	b.query.SortOrder = &sortOrder
	return b
}

func (b *TransactionsQueryBuilder) WithPagination(p Pagination) *TransactionsQueryBuilder {
	b.query.Pagination = &p
	return b
}
