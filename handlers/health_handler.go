package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Root handles GET /
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Claims decision and document QA API",
		"version": "1.0.0",
		"status":  "active",
	})
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
