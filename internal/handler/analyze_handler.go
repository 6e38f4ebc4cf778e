// Package handler provides HTTP request handlers for the application.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
)

// BatchProcessor classifies a batch of video URLs.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, urls []string) ([]models.ClassificationResult, error)
}

// AnalyzeHandler handles batch classification requests.
type AnalyzeHandler struct {
	processor BatchProcessor
}

// NewAnalyzeHandler creates a new AnalyzeHandler instance.
func NewAnalyzeHandler(processor BatchProcessor) *AnalyzeHandler {
	return &AnalyzeHandler{
		processor: processor,
	}
}

// HandleAnalyzeBatch classifies every URL in the request body and returns the
// results in request order.
func (h *AnalyzeHandler) HandleAnalyzeBatch(c *gin.Context) {
	var req models.AnalyzeBatchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.L().Warn("Invalid request payload",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   "Invalid request payload: " + err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	logger.L().Info("Received analyze request",
		zap.Int("urls", len(req.VideoURLs)),
		zap.String("clientIp", c.ClientIP()),
	)

	results, err := h.processor.ProcessBatch(c.Request.Context(), req.VideoURLs)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AnalyzeBatchResponse{Results: results})
}

func (h *AnalyzeHandler) handleError(c *gin.Context, err error) {
	switch err.(type) {
	case *service.ValidationError:
		logger.L().Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:    http.StatusBadRequest,
			Error:     err.Error(),
			Message:   err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case *service.ProcessingError:
		logger.L().Error("Processing error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "Failed to process batch",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	default:
		logger.L().Error("Unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "An unexpected error occurred",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	}
}
