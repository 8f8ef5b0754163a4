package handlers

import (
	"net/http"

	"igbridge/utils"

	"github.com/gin-gonic/gin"
)

// HealthDetailsHandler serves the monitor's last snapshot. It answers 503 when
// any dependency failed its most recent check.
func HealthDetailsHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := monitor.Status()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
