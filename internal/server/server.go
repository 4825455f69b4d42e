package server

import (
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	floe "github.com/floeworks/floe"
	"github.com/floeworks/floe/internal/engine"
	"github.com/floeworks/floe/internal/util"
	"github.com/floeworks/floe/pkg/api"
)

// Server implements the HTTP API server for the orchestrator
type Server struct {
	engine  *engine.Engine
	sockets util.Set[*Client]
	mu      sync.Mutex
}

// NewServer creates a new HTTP API server
func NewServer(eng *engine.Engine) *Server {
	return &Server{
		engine:  eng,
		sockets: util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", s.handleHealth)

	eng := router.Group("/engine")
	{
		// Workflow endpoints
		eng.GET("/workflow", s.listWorkflows)
		eng.POST("/workflow", s.createWorkflow)
		eng.GET("/workflow/templates", s.listTemplates)
		eng.GET("/workflow/:workflowID", s.getWorkflow)
		eng.POST("/workflow/:workflowID/execute", s.startExecution)
		eng.GET("/workflow/:workflowID/executions", s.listExecutions)

		// Execution endpoints
		eng.GET("/execution/:executionID", s.getExecution)
		eng.POST("/execution/:executionID/cancel", s.cancelExecution)
		eng.POST("/execution/:executionID/pause", s.pauseExecution)
		eng.POST("/execution/:executionID/resume", s.resumeExecution)
		eng.DELETE("/execution/:executionID", s.purgeExecution)

		// WebSocket
		eng.GET("/ws", s.handleWebSocket)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: floe.Name,
		Status:  "ok",
		Version: floe.Version,
	})
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
