package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ticket-marketplace/payments/internal/domain/gateway"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

type CallbackHandler struct {
	service *transaction.Service
	l       *logger.Logger
}

func NewCallbackHandler(s *transaction.Service, l *logger.Logger) CallbackHandler {
	return CallbackHandler{service: s, l: l}
}

// stkCallbackBody is the provider's wire format for asynchronous payment
// results.
type stkCallbackBody struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// gatewayAck is the only body the provider ever sees. Anything else makes
// the provider retry a callback we already processed.
var gatewayAck = gin.H{"ResultCode": 0, "ResultDesc": "Accepted"}

// Callback reconciles an asynchronous payment result. The response is a
// fixed 200 acknowledgement regardless of processing outcome; failures are
// logged, never surfaced to the provider.
func (h *CallbackHandler) Callback(c *gin.Context) {
	var body stkCallbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.l.Warn("unparseable gateway callback: error=%v", err)
		c.JSON(http.StatusOK, gatewayAck)
		return
	}

	cb := normalizeCallback(body)
	if err := h.service.ApplyGatewayCallback(c.Request.Context(), cb); err != nil {
		h.l.Error("gateway callback processing failed: correlation_id=%s error=%v",
			cb.CorrelationID, err)
	}

	c.JSON(http.StatusOK, gatewayAck)
}

func normalizeCallback(body stkCallbackBody) gateway.Callback {
	sc := body.Body.StkCallback
	cb := gateway.Callback{
		CorrelationID:     sc.CheckoutRequestID,
		ResultCode:        sc.ResultCode,
		ResultDescription: sc.ResultDesc,
	}
	for _, item := range sc.CallbackMetadata.Item {
		cb.Items = append(cb.Items, gateway.MetadataItem{
			Name:  item.Name,
			Value: item.Value,
		})
	}
	return cb
}
