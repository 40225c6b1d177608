package transaction

import "errors"

var (
	ErrNotFound     = errors.New("transaction not found")
	ErrInvalidQuery = errors.New("invalid transactions query")
	ErrValidation   = errors.New("validation error")

	// ErrListingUnavailable: the listing is not active or asks for more
	// units than it ever had.
	ErrListingUnavailable = errors.New("listing unavailable")
	// ErrInsufficientInventory: the atomic reservation lost a race with a
	// concurrent buyer.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrAccountInactive       = errors.New("account inactive")

	// ErrInvalidStateTransition: the requested transition is not permitted
	// by the state machine, or a conditional update found another writer won.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUnauthorizedAction     = errors.New("unauthorized action")

	// ErrUnknownCallback: no transaction matches the callback's correlation
	// ID. Logged and acknowledged, never propagated to the gateway.
	ErrUnknownCallback = errors.New("unknown gateway callback")
)
