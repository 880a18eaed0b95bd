package handlers

import (
	"errors"
	"log"
	"net/http"

	"claimsight-backend/service"

	"github.com/gin-gonic/gin"
)

// ClaimHandler handles HTTP requests for claim decisions.
type ClaimHandler struct {
	claimService *service.ClaimService
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(claimService *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
	}
}

// ProcessQueryRequest represents the request body for processing a claim query.
type ProcessQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// ProcessQuery handles POST /api/claims/process
func (h *ClaimHandler) ProcessQuery(c *gin.Context) {
	var req ProcessQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.claimService.ProcessQuery(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_QUERY",
					"message": "Query must not be empty",
				},
			})
			return
		}
		log.Printf("Failed to process claim query: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROCESSING_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"query":    result.Query,
		"entities": result.Entities,
		"result":   result.Result,
	})
}
