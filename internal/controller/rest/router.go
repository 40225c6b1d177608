package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/ticket-marketplace/payments/internal/auth"
	"github.com/ticket-marketplace/payments/internal/controller/rest/handlers"
	"github.com/ticket-marketplace/payments/internal/controller/rest/middleware"
)

type Router struct {
	payment  handlers.PaymentHandler
	callback handlers.CallbackHandler
	dispute  handlers.DisputeHandler
	escrow   handlers.EscrowHandler

	jwtSecret string
}

func NewRouter(
	payment handlers.PaymentHandler,
	callback handlers.CallbackHandler,
	dispute handlers.DisputeHandler,
	escrow handlers.EscrowHandler,
	jwtSecret string,
) *Router {
	return &Router{
		payment:   payment,
		callback:  callback,
		dispute:   dispute,
		escrow:    escrow,
		jwtSecret: jwtSecret,
	}
}

func (r *Router) SetUp(engine *gin.Engine) {
	// The gateway cannot authenticate; the callback route stays open and
	// always acknowledges.
	engine.POST("/payments/gateway/callback", r.callback.Callback)

	payments := engine.Group("/payments", middleware.Auth(r.jwtSecret))
	{
		payments.POST("/initiate", r.payment.Initiate)

		payments.GET("/transactions",
			middleware.RequireRole(auth.RoleModerator, auth.RoleAdmin), r.payment.Filter)
		payments.GET("/transactions/:transaction_id/status", r.payment.Status)
		payments.POST("/transactions/:transaction_id/confirm", r.payment.Confirm)
		payments.POST("/transactions/:transaction_id/dispute", r.dispute.File)
		payments.GET("/transactions/:transaction_id/dispute", r.dispute.GetCase)
		payments.POST("/transactions/:transaction_id/refund", r.dispute.Refund)

		payments.POST("/disputes/:transaction_id/resolve",
			middleware.RequireRole(auth.RoleModerator, auth.RoleAdmin), r.dispute.Resolve)

		escrowGroup := payments.Group("/escrow", middleware.RequireRole(auth.RoleAdmin))
		{
			escrowGroup.POST("/release", r.escrow.ReleaseDue)
			escrowGroup.POST("/release/:transaction_id", r.escrow.Release)
		}
	}
}
