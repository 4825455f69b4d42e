package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floeworks/floe/internal/engine"
	"github.com/floeworks/floe/internal/store"
	"github.com/floeworks/floe/pkg/api"
)

var errNotRunning = errors.New("execution is not running")

func (s *Server) startExecution(c *gin.Context) {
	var req api.StartExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	exec, err := s.engine.StartExecution(
		c.Request.Context(), c.Param("workflowID"), req.Context,
	)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrWorkflowNotFound):
			abortWithError(c, http.StatusNotFound, err)
		case errors.Is(err, engine.ErrWorkflowInactive):
			abortWithError(c, http.StatusConflict, err)
		default:
			abortWithError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusAccepted, api.ExecutionStartedResponse{
		Message:   "execution started",
		Execution: exec,
	})
}

func (s *Server) getExecution(c *gin.Context) {
	exec, err := s.engine.GetExecution(
		c.Request.Context(), c.Param("executionID"),
	)
	if err != nil {
		if errors.Is(err, store.ErrExecutionNotFound) {
			abortWithError(c, http.StatusNotFound, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, exec)
}

func (s *Server) listExecutions(c *gin.Context) {
	executions, err := s.engine.ListExecutions(
		c.Request.Context(), c.Param("workflowID"),
	)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	digests := make([]*api.ExecutionDigest, 0, len(executions))
	for _, exec := range executions {
		digests = append(digests, exec.Digest())
	}

	c.JSON(http.StatusOK, api.ExecutionsListResponse{
		Executions: digests,
		Count:      len(digests),
	})
}

func (s *Server) cancelExecution(c *gin.Context) {
	if !s.engine.Cancel(c.Param("executionID")) {
		abortWithError(c, http.StatusConflict, errNotRunning)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "cancellation requested",
	})
}

func (s *Server) pauseExecution(c *gin.Context) {
	if !s.engine.Pause(c.Param("executionID")) {
		abortWithError(c, http.StatusConflict, errNotRunning)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "pause requested",
	})
}

func (s *Server) resumeExecution(c *gin.Context) {
	exec, err := s.engine.Resume(
		c.Request.Context(), c.Param("executionID"),
	)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrExecutionNotFound):
			abortWithError(c, http.StatusNotFound, err)
		case errors.Is(err, engine.ErrNotResumable):
			abortWithError(c, http.StatusConflict, err)
		default:
			abortWithError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusOK, api.ExecutionStartedResponse{
		Message:   "execution resumed",
		Execution: exec,
	})
}

func (s *Server) purgeExecution(c *gin.Context) {
	err := s.engine.PurgeExecution(
		c.Request.Context(), c.Param("executionID"),
	)
	if err != nil {
		if errors.Is(err, store.ErrExecutionNotFound) {
			abortWithError(c, http.StatusNotFound, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "execution purged",
	})
}
