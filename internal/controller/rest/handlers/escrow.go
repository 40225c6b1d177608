package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
)

type EscrowHandler struct {
	manager *escrow.Manager
}

func NewEscrowHandler(m *escrow.Manager) EscrowHandler {
	return EscrowHandler{manager: m}
}

// Release manually pays out the hold named in the path. Safe to repeat: a
// hold that was already released reports AlreadyReleased instead of paying
// twice.
func (h *EscrowHandler) Release(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("transaction_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid transaction id"})
		return
	}

	res, err := h.manager.Release(c.Request.Context(), txID)
	if err != nil {
		switch {
		case errors.Is(err, escrow.ErrHoldNotFound), errors.Is(err, transaction.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		case errors.Is(err, escrow.ErrHoldRefunded):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// ReleaseDue runs one release pass over every due hold immediately instead
// of waiting for the timer, returning per-transaction results.
func (h *EscrowHandler) ReleaseDue(c *gin.Context) {
	results, err := h.manager.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
