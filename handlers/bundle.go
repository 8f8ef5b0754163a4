package handlers

import (
	"igbridge/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	HealthHandler        gin.HandlerFunc
	HealthDetailsHandler gin.HandlerFunc

	// OAuth flow endpoints
	StartHandler    gin.HandlerFunc
	CallbackHandler gin.HandlerFunc

	// Device polling endpoint
	ExchangeHandler gin.HandlerFunc
}

// NewHandlerBundle wires the OAuth handler and dependency monitor into a
// bundle. A nil monitor reports no dependencies.
func NewHandlerBundle(h *OAuthHandler, monitor *utils.HealthMonitor) *HandlerBundle {
	if monitor == nil {
		monitor = utils.NewHealthMonitor(nil)
	}
	return &HandlerBundle{
		HealthHandler:        HealthHandler,
		HealthDetailsHandler: HealthDetailsHandler(monitor),
		StartHandler:         h.StartHandler,
		CallbackHandler:      h.CallbackHandler,
		ExchangeHandler:      h.ExchangeHandler,
	}
}
