package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
)

// HandleSummary is the list-view shape of a stored handle.
type HandleSummary struct {
	ID          string `json:"id"`
	Scope       string `json:"scope"`
	Repeats     int    `json:"repeats"`
	Experiments int    `json:"experiments"`
	Tasks       int    `json:"tasks"`
	CreatedAt   string `json:"created_at"`
}

// RestartResponse reports the outcome of a restart action.
type RestartResponse struct {
	HandleID string `json:"handle_id"`
	Requeued int    `json:"requeued"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListHandles lists all stored handles
func (s *Server) handleListHandles(c *gin.Context) {
	ids, err := s.store.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list handles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORE_ERROR",
				Message: "Failed to list handles",
			},
		})
		return
	}

	summaries := make([]HandleSummary, 0, len(ids))
	for _, id := range ids {
		handle, err := s.store.Load(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrHandleNotFound) {
				continue
			}
			s.logger.Error("failed to load handle", zap.String("handle_id", id), zap.Error(err))
			continue
		}
		summaries = append(summaries, summarize(handle))
	}

	c.JSON(http.StatusOK, gin.H{
		"handles": summaries,
		"total":   len(summaries),
	})
}

// handleGetHandle returns one stored handle in full
func (s *Server) handleGetHandle(c *gin.Context) {
	handle, ok := s.loadHandle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handle)
}

// handleGetStatus returns a live status classification for a handle
func (s *Server) handleGetStatus(c *gin.Context) {
	handle, ok := s.loadHandle(c)
	if !ok {
		return
	}

	report, err := s.monitor.Status(c.Request.Context(), handle)
	if err != nil {
		s.fabricError(c, "status query", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"handle_id":   handle.ID,
		"scope":       handle.Scope.String(),
		"experiments": report,
		"totals":      report.Totals(),
	})
}

// handleGetReport returns a live aggregate report for a handle
func (s *Server) handleGetReport(c *gin.Context) {
	handle, ok := s.loadHandle(c)
	if !ok {
		return
	}

	report, err := s.gatherer.Gather(c.Request.Context(), handle)
	if err != nil {
		s.fabricError(c, "gather", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"handle_id":   handle.ID,
		"scope":       handle.Scope.String(),
		"experiments": report,
	})
}

// handleRestart re-queues the errored tasks under a handle. This is
// the one mutating endpoint and it maps to an explicit operator
// action; nothing here restarts on its own.
func (s *Server) handleRestart(c *gin.Context) {
	handle, ok := s.loadHandle(c)
	if !ok {
		return
	}

	requeued, err := s.restarter.Restart(c.Request.Context(), handle)
	if err != nil {
		s.fabricError(c, "restart", err)
		return
	}

	c.JSON(http.StatusOK, RestartResponse{
		HandleID: handle.ID,
		Requeued: requeued,
	})
}

// loadHandle resolves the :id path parameter to a stored handle,
// writing the error response itself when that fails.
func (s *Server) loadHandle(c *gin.Context) (*domain.ReferenceHandle, bool) {
	id := c.Param("id")

	handle, err := s.store.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrHandleNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: ErrorDetail{
					Code:    "NOT_FOUND",
					Message: "Handle not found",
				},
			})
			return nil, false
		}
		s.logger.Error("failed to load handle", zap.String("handle_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORE_ERROR",
				Message: "Failed to load handle",
			},
		})
		return nil, false
	}
	return handle, true
}

// fabricError maps fabric failures to responses: connectivity problems
// are retryable 502s, anything else is a plain failure.
func (s *Server) fabricError(c *gin.Context, op string, err error) {
	s.logger.Error("fabric operation failed", zap.String("op", op), zap.Error(err))

	if domain.IsConnectivity(err) {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: ErrorDetail{
				Code:    "FABRIC_UNREACHABLE",
				Message: "Fabric unreachable, retry later",
				Details: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    "FABRIC_ERROR",
			Message: err.Error(),
		},
	})
}

func summarize(handle *domain.ReferenceHandle) HandleSummary {
	return HandleSummary{
		ID:          handle.ID,
		Scope:       handle.Scope.String(),
		Repeats:     handle.Repeats,
		Experiments: len(handle.ExperimentKeys()),
		Tasks:       len(handle.Tasks),
		CreatedAt:   handle.CreatedAt.UTC().Format(time.RFC3339),
	}
}
