package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth guards the API group. The expected token comes from the
// BEARER_TOKEN environment variable; a server without one configured refuses
// all authenticated routes rather than running open.
func BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := os.Getenv("BEARER_TOKEN")
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH_NOT_CONFIGURED",
					"message": "Server authentication not configured",
				},
			})
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid or missing bearer token",
				},
			})
			return
		}

		c.Next()
	}
}
