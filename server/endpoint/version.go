package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicegate/version"
)

var startTime = time.Now()

// Version reports build information and uptime.
func Version(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"build":   version.Get(),
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		})
	}
}
