package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerTime reports the server clock. It exists so clients hitting
// clock-skew rejections on Google login can compare against their own
// clock.
func ServerTime(c *gin.Context) {
	now := time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{
		"timestamp":      now.Unix(),
		"human_readable": now.Format("2006-01-02 15:04:05 MST"),
	})
}
