package handlers

import (
	"errors"
	"log"
	"net/http"

	"claimsight-backend/service"

	"github.com/gin-gonic/gin"
)

// QAHandler handles HTTP requests for document question answering.
type QAHandler struct {
	answerService *service.AnswerService
}

// NewQAHandler creates a new question-answering handler.
func NewQAHandler(answerService *service.AnswerService) *QAHandler {
	return &QAHandler{
		answerService: answerService,
	}
}

// Run handles POST /api/qa/run
func (h *QAHandler) Run(c *gin.Context) {
	var req service.AnswerRequest
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

	result, err := h.answerService.Run(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyDocumentURL),
			errors.Is(err, service.ErrNoQuestions),
			errors.Is(err, service.ErrTooManyQuestions),
			errors.Is(err, service.ErrDocumentTooShort):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_RUN",
					"message": err.Error(),
				},
			})
		default:
			log.Printf("Question-answering run failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RUN_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"answers":        result.Answers,
		"explainability": result.Explainability,
		"metadata":       result.Metadata,
	})
}
