package handler

import (
	"github.com/kopahq/kopa-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. The payment callback sits outside
// the staff API key group: the gateway cannot present a key, so that route is
// protected by rate limiting instead.
func RegisterRoutes(e *echo.Echo, apiKeyMiddleware *middleware.APIKeyMiddleware, webhookLimiter *middleware.RateLimiter, callbackHandler *CallbackHandler, borrowerHandler *BorrowerHandler, loanHandler *LoanHandler, unmatchedHandler *UnmatchedHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Payment gateway webhook (rate limited, no API key)
	payments := api.Group("/payments")
	payments.Use(middleware.RateLimitMiddleware(webhookLimiter))
	payments.POST("/callback", callbackHandler.HandleCallback)

	// Borrower routes (staff)
	borrowers := api.Group("/borrowers")
	borrowers.Use(apiKeyMiddleware.Authenticate())
	borrowers.POST("", borrowerHandler.CreateBorrower)
	borrowers.GET("", borrowerHandler.GetBorrowers)
	borrowers.GET("/:id", borrowerHandler.GetBorrower)

	// Loan routes (staff)
	loans := api.Group("/loans")
	loans.Use(apiKeyMiddleware.Authenticate())
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.POST("/:id/approve", loanHandler.ApproveLoan)
	loans.POST("/:id/reject", loanHandler.RejectLoan)
	loans.POST("/:id/disburse", loanHandler.DisburseLoan)
	loans.GET("/:id/repayments", loanHandler.GetRepayments)

	// Unmatched payment routes (staff)
	unmatched := api.Group("/unmatched-payments")
	unmatched.Use(apiKeyMiddleware.Authenticate())
	unmatched.GET("", unmatchedHandler.GetPending)
	unmatched.POST("/:id/resolve", unmatchedHandler.Resolve)

	// WebSocket endpoint for back-office real-time updates
	e.GET("/ws", wsHandler.HandleWS)
}
