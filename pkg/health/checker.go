// Package health implements liveness and readiness probes over pluggable
// component checkers.
package health

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single readiness evaluation.
const DefaultTimeout = 5 * time.Second

// Status of a component.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Result of a single check.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}
