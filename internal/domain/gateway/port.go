// Package gateway defines the contract a mobile-money payment provider must
// satisfy. The payment core depends only on this interface; concrete
// providers live under internal/external.
package gateway

import (
	"context"
	"errors"
)

//go:generate mockgen -source port.go -destination mock_gateway.go -package gateway

var (
	// ErrRejected means the provider refused the request (bad credentials,
	// invalid subscriber, business rule). Not retryable by the adapter.
	ErrRejected = errors.New("gateway rejected request")
	// ErrTimeout means the provider did not answer within the client timeout.
	ErrTimeout = errors.New("gateway request timed out")
	// ErrMalformedCallback means a callback payload is structurally incomplete.
	ErrMalformedCallback = errors.New("malformed gateway callback")
)

// InitiateRequest asks the provider to push a payment prompt to the payer.
type InitiateRequest struct {
	// Amount in minor currency units.
	Amount int64
	// Phone is the payer identifier in any accepted national format.
	Phone string
	// Reference is the merchant-side reference (transaction ID).
	Reference string
	// Description shown to the payer.
	Description string
}

// InitiateResult is the provider's synchronous answer to a push request.
type InitiateResult struct {
	// CorrelationID identifies the push request on the provider side and is
	// echoed in the asynchronous callback.
	CorrelationID string
	// CustomerMessage is the user-facing prompt text.
	CustomerMessage string
}

// TransactionState as reported by the provider's status endpoint.
type TransactionState string

const (
	StateProcessing TransactionState = "processing"
	StateSucceeded  TransactionState = "succeeded"
	StateFailed     TransactionState = "failed"
)

// StatusResult is the provider's answer to a status query.
type StatusResult struct {
	CorrelationID string
	State         TransactionState
	ResultCode    int
	Description   string
}

// Callback is the normalized asynchronous payment result. Result code zero
// means success; anything else is a failure whose meaning is provider
// specific and only surfaced in the description.
type Callback struct {
	CorrelationID     string         `json:"correlation_id"`
	ResultCode        int            `json:"result_code"`
	ResultDescription string         `json:"result_desc"`
	Items             []MetadataItem `json:"items,omitempty"`
}

// MetadataItem is one optional name/value pair attached to a callback
// (receipt number, amount, payer phone).
type MetadataItem struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Succeeded reports whether the callback carries a successful payment result.
func (c Callback) Succeeded() bool {
	return c.ResultCode == 0
}

// Amount returns the paid amount in minor units when present in metadata.
func (c Callback) Amount() (int64, bool) {
	for _, item := range c.Items {
		if item.Name != "Amount" {
			continue
		}
		switch v := item.Value.(type) {
		case float64:
			return int64(v * 100), true
		case int64:
			return v * 100, true
		}
	}
	return 0, false
}

// ReceiptNumber returns the provider receipt when present in metadata.
func (c Callback) ReceiptNumber() (string, bool) {
	return c.stringItem("ReceiptNumber")
}

// PayerPhone returns the payer phone when present in metadata.
func (c Callback) PayerPhone() (string, bool) {
	return c.stringItem("PhoneNumber")
}

func (c Callback) stringItem(name string) (string, bool) {
	for _, item := range c.Items {
		if item.Name == name {
			if s, ok := item.Value.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Gateway is the capability interface a payment provider implements.
type Gateway interface {
	// Initiate sends a push-payment request. Failures surface as ErrRejected
	// or ErrTimeout; the adapter never retries on its own.
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
	// QueryStatus asks the provider for the current state of a push request.
	QueryStatus(ctx context.Context, correlationID string) (StatusResult, error)
	// ValidateCallback checks structural completeness of a callback payload.
	ValidateCallback(cb Callback) error
}
