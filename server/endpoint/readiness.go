package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Readiness is 200 only while every component is healthy.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			for _, ch := range checker(c.Request.Context()) {
				if !ch.Healthy() {
					c.JSON(http.StatusServiceUnavailable, gin.H{
						"status":    "not_ready",
						"service":   serviceName,
						"component": ch.Name,
						"message":   ch.Message,
					})
					return
				}
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": serviceName})
	}
}
