package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ticket-marketplace/payments/internal/controller/rest/middleware"
	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/internal/domain/gateway"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
)

type PaymentHandler struct {
	service *transaction.Service
	escrow  *escrow.Manager
}

func NewPaymentHandler(s *transaction.Service, esc *escrow.Manager) PaymentHandler {
	return PaymentHandler{service: s, escrow: esc}
}

type initiateRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Phone     string    `json:"phone" binding:"required"`
}

func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	buyerID := middleware.GetUserID(c)
	out, err := h.service.InitiatePayment(c.Request.Context(), req.ListingID, buyerID, req.Quantity, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, transaction.ErrListingUnavailable),
			errors.Is(err, transaction.ErrInsufficientInventory):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		case errors.Is(err, transaction.ErrAccountInactive):
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		case errors.Is(err, gateway.ErrRejected):
			c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
		case errors.Is(err, gateway.ErrTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	txID, ok := pathTransactionID(c)
	if !ok {
		return
	}

	confirmerID := middleware.GetUserID(c)
	t, err := h.service.ConfirmTransfer(c.Request.Context(), txID, confirmerID)
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

type statusResponse struct {
	Transaction transaction.Transaction `json:"transaction"`
	EscrowHold  *escrow.Hold            `json:"escrow_hold,omitempty"`
}

func (h *PaymentHandler) Status(c *gin.Context) {
	txID, ok := pathTransactionID(c)
	if !ok {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), txID)
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	res := statusResponse{Transaction: t}
	if hold, err := h.escrow.GetHold(c.Request.Context(), txID); err == nil {
		res.EscrowHold = &hold
	} else if !errors.Is(err, escrow.ErrHoldNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

type filterRequest struct {
	BuyerIDs   []uuid.UUID `form:"buyer_id"`
	SellerIDs  []uuid.UUID `form:"seller_id"`
	ListingIDs []uuid.UUID `form:"listing_id"`
	Statuses   []string    `form:"status"`
	SortBy     string      `form:"sort_by"`
	SortOrder  string      `form:"sort_order"`
	PageNumber int         `form:"page_number"`
	PageSize   int         `form:"page_size"`
}

func (h *PaymentHandler) Filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	builder := transaction.NewTransactionsQueryBuilder().
		WithBuyerIDs(req.BuyerIDs...).
		WithSellerIDs(req.SellerIDs...).
		WithListingIDs(req.ListingIDs...)

	for _, raw := range req.Statuses {
		status, err := transaction.NewStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		builder = builder.WithStatuses(status)
	}
	if req.SortBy != "" && req.SortOrder != "" {
		builder = builder.WithSort(req.SortBy, req.SortOrder)
	}
	if req.PageNumber > 0 && req.PageSize > 0 {
		builder = builder.WithPagination(transaction.Pagination{
			PageNumber: req.PageNumber,
			PageSize:   req.PageSize,
		})
	}

	query, err := builder.Build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	txs, err := h.service.GetTransactions(c.Request.Context(), *query)
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

func pathTransactionID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("transaction_id")
	txID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid transaction_id"})
		return uuid.Nil, false
	}
	return txID, true
}

func respondTransactionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, transaction.ErrUnauthorizedAction):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, transaction.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
