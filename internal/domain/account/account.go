// Package account is the payment core's view of marketplace accounts.
package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

//go:generate mockgen -source account.go -destination mock_store.go -package account

var (
	ErrNotFound = errors.New("account not found")
	ErrInactive = errors.New("account inactive")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

type Account struct {
	ID     uuid.UUID `json:"account_id"`
	Phone  string    `json:"phone"`
	Status Status    `json:"status"`
	// Balance in minor currency units, credited on escrow release.
	Balance     int64 `json:"balance"`
	BoughtCount int   `json:"bought_count"`
	SoldCount   int   `json:"sold_count"`
}

func (a Account) Active() bool {
	return a.Status == StatusActive
}

type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	// IncrementTransactionCounters bumps the buyer's bought and the seller's
	// sold counters after a successful payment.
	IncrementTransactionCounters(ctx context.Context, buyerID, sellerID uuid.UUID) error
	// Credit adds amount (minor units) to the account balance.
	Credit(ctx context.Context, id uuid.UUID, amount int64) error
}
