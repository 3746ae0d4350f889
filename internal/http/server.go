// Package http exposes the conversational agent over a JSON HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codehelperd/internal/agent"
	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

// Service is the agent surface the HTTP layer depends on.
type Service interface {
	Run(ctx context.Context, input, sessionID string) (agent.Result, error)
	ClearMemory(sessionID string)
	ClearAllSessions()
	GetMemory(sessionID string, maxChars int) []agent.MemoryMessage
	GetStats() session.Stats
}

// Server provides HTTP endpoints for codehelperd.
type Server struct {
	echo    *echo.Echo
	service Service
	logger  *zap.Logger
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(service Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		service: service,
		logger:  logger,
		config:  cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/chat", s.handleChat)
	v1.POST("/clear", s.handleClear)
	v1.POST("/memory", s.handleMemory)
	v1.GET("/stats", s.handleStats)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// errorJSON writes the error envelope. Type stays "error" so callers can
// dispatch on it the same way they do for pipeline results.
func errorJSON(c echo.Context, status int, sessionID, msg string) error {
	return c.JSON(status, ErrorResponse{
		Response:  msg,
		Type:      "error",
		SessionID: sessionID,
		Error:     msg,
	})
}

// handleChat runs one conversational turn.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid chat request", zap.Error(err))
		return errorJSON(c, http.StatusBadRequest, req.SessionID, "invalid request body")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := s.service.Run(c.Request().Context(), req.Message, sessionID)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyInput) {
			return errorJSON(c, http.StatusBadRequest, sessionID, "message field is required")
		}
		s.logger.Error("chat request failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, sessionID, "internal error processing request")
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Response:  result.Payload(),
		Type:      string(result.Type),
		SessionID: sessionID,
	})
}

// handleClear empties one session's memory, or every session when no
// session_id is given.
func (s *Server) handleClear(c echo.Context) error {
	var req ClearRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "", "invalid request body")
	}

	if req.SessionID == "" {
		s.service.ClearAllSessions()
		return c.JSON(http.StatusOK, ClearResponse{Status: "all sessions cleared"})
	}

	s.service.ClearMemory(req.SessionID)
	return c.JSON(http.StatusOK, ClearResponse{Status: "cleared", SessionID: req.SessionID})
}

// handleMemory returns a session's windowed history.
func (s *Server) handleMemory(c echo.Context) error {
	var req MemoryRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "", "invalid request body")
	}
	if req.SessionID == "" {
		return errorJSON(c, http.StatusBadRequest, "", "session_id field is required")
	}

	history := s.service.GetMemory(req.SessionID, req.MaxChars)
	messages := make([]MemoryMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, MemoryMessage{Type: msg.Type, Content: msg.Content})
	}

	return c.JSON(http.StatusOK, MemoryResponse{
		SessionID:    req.SessionID,
		MessageCount: len(messages),
		Messages:     messages,
	})
}

// handleStats reports session store statistics.
func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.service.GetStats())
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
