package dispute

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCaseNotFound   = errors.New("dispute case not found")
	ErrCaseExists     = errors.New("dispute case already exists")
	ErrCaseResolved   = errors.New("dispute case already resolved")
	ErrRefundNotFound = errors.New("refund request not found")
	ErrRefundExists   = errors.New("refund request already exists")
	ErrNotDisputable  = errors.New("transaction is not disputable")
	ErrNotRefundable  = errors.New("transaction is not refundable")
	ErrUnknownOutcome = errors.New("unknown dispute outcome")
)

type CaseStatus string

const (
	CaseOpen          CaseStatus = "open"
	CaseInvestigating CaseStatus = "investigating"
	CaseResolved      CaseStatus = "resolved"
	CaseClosed        CaseStatus = "closed"
)

// Case tracks a contested transaction from filing to moderator resolution.
// ReportedParty is always the other side of the transaction.
type Case struct {
	ID              uuid.UUID  `json:"id"`
	TransactionID   uuid.UUID  `json:"transaction_id"`
	RaisedBy        uuid.UUID  `json:"raised_by"`
	ReportedParty   uuid.UUID  `json:"reported_party"`
	Reason          string     `json:"reason"`
	Description     string     `json:"description,omitempty"`
	Status          CaseStatus `json:"status"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundProcessed RefundStatus = "processed"
)

type RefundRequest struct {
	ID            uuid.UUID    `json:"id"`
	TransactionID uuid.UUID    `json:"transaction_id"`
	RequestedBy   uuid.UUID    `json:"requested_by"`
	Amount        int64        `json:"amount"`
	Reason        string       `json:"reason"`
	Status        RefundStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	ProcessedAt   *time.Time   `json:"processed_at,omitempty"`
}

// Outcome is a moderator's verdict on a dispute case.
type Outcome string

const (
	OutcomeReleaseToSeller Outcome = "release_to_seller"
	OutcomeRefundBuyer     Outcome = "refund_buyer"
)

func ParseOutcome(raw string) (Outcome, error) {
	switch Outcome(raw) {
	case OutcomeReleaseToSeller, OutcomeRefundBuyer:
		return Outcome(raw), nil
	default:
		return "", ErrUnknownOutcome
	}
}
