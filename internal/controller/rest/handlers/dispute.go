package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ticket-marketplace/payments/internal/controller/rest/middleware"
	"github.com/ticket-marketplace/payments/internal/domain/dispute"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
)

type DisputeHandler struct {
	service *dispute.Service
}

func NewDisputeHandler(s *dispute.Service) DisputeHandler {
	return DisputeHandler{service: s}
}

type fileDisputeRequest struct {
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
}

func (h *DisputeHandler) File(c *gin.Context) {
	txID, ok := pathTransactionID(c)
	if !ok {
		return
	}

	var req fileDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	raisedBy := middleware.GetUserID(c)
	created, err := h.service.FileDispute(c.Request.Context(), txID, raisedBy, req.Reason, req.Description)
	if err != nil {
		respondDisputeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

type refundRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *DisputeHandler) Refund(c *gin.Context) {
	txID, ok := pathTransactionID(c)
	if !ok {
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	requestedBy := middleware.GetUserID(c)
	created, err := h.service.RequestRefund(c.Request.Context(), txID, requestedBy, req.Reason)
	if err != nil {
		respondDisputeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *DisputeHandler) GetCase(c *gin.Context) {
	txID, ok := pathTransactionID(c)
	if !ok {
		return
	}

	found, err := h.service.GetCase(c.Request.Context(), txID)
	if err != nil {
		respondDisputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

type resolveRequest struct {
	Outcome string `json:"outcome" binding:"required"`
	Notes   string `json:"notes" binding:"required"`
}

func (h *DisputeHandler) Resolve(c *gin.Context) {
	txID, ok := pathTransactionID(c)
	if !ok {
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	outcome, err := dispute.ParseOutcome(req.Outcome)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	res, err := h.service.ResolveDispute(c.Request.Context(), txID, outcome, req.Notes)
	if err != nil {
		respondDisputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func respondDisputeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, dispute.ErrCaseNotFound),
		errors.Is(err, dispute.ErrRefundNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, transaction.ErrUnauthorizedAction):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, dispute.ErrNotDisputable),
		errors.Is(err, dispute.ErrNotRefundable),
		errors.Is(err, dispute.ErrCaseExists),
		errors.Is(err, dispute.ErrRefundExists),
		errors.Is(err, dispute.ErrCaseResolved),
		errors.Is(err, transaction.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
