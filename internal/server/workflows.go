package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floeworks/floe/internal/engine"
	"github.com/floeworks/floe/internal/store"
	"github.com/floeworks/floe/pkg/api"
)

func (s *Server) createWorkflow(c *gin.Context) {
	var req api.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	w, err := s.engine.CreateWorkflow(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, engine.ErrValidation) {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, w)
}

func (s *Server) getWorkflow(c *gin.Context) {
	w, err := s.engine.GetWorkflow(
		c.Request.Context(), c.Param("workflowID"),
	)
	if err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			abortWithError(c, http.StatusNotFound, err)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

func (s *Server) listWorkflows(c *gin.Context) {
	workflows, err := s.engine.ListWorkflows(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, api.WorkflowsListResponse{
		Workflows: workflows,
		Count:     len(workflows),
	})
}

func (s *Server) listTemplates(c *gin.Context) {
	templates := engine.Templates()
	c.JSON(http.StatusOK, api.TemplatesResponse{
		Templates: templates,
		Count:     len(templates),
	})
}

func abortWithError(c *gin.Context, status int, err error) {
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}
