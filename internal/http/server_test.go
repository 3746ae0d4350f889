package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codehelperd/internal/agent"
	"github.com/fyrsmithlabs/codehelperd/internal/schema"
	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

// stubService scripts the agent surface for handler tests.
type stubService struct {
	result        agent.Result
	err           error
	memory        []agent.MemoryMessage
	stats         session.Stats
	lastInput     string
	lastSessionID string
	clearedID     string
	clearedAll    bool
}

func (s *stubService) Run(_ context.Context, input, sessionID string) (agent.Result, error) {
	s.lastInput = input
	s.lastSessionID = sessionID
	return s.result, s.err
}

func (s *stubService) ClearMemory(sessionID string) { s.clearedID = sessionID }
func (s *stubService) ClearAllSessions()            { s.clearedAll = true }

func (s *stubService) GetMemory(sessionID string, maxChars int) []agent.MemoryMessage {
	s.lastSessionID = sessionID
	return s.memory
}

func (s *stubService) GetStats() session.Stats { return s.stats }

func setupTestServer(t *testing.T, svc Service) *Server {
	t.Helper()
	server, err := NewServer(svc, zap.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func postJSON(t *testing.T, server *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		cfg := &Config{Host: "localhost", Port: 8080}
		server, err := NewServer(&stubService{}, zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(&stubService{}, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 8080, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(&stubService{}, nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when service is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "service cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleChat(t *testing.T) {
	t.Run("returns text response with session id", func(t *testing.T) {
		svc := &stubService{result: agent.Result{Type: agent.ResultText, Text: "hello!"}}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/chat", ChatRequest{Message: "hi", SessionID: "s1"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "hello!", resp.Response)
		assert.Equal(t, "text", resp.Type)
		assert.Equal(t, "s1", resp.SessionID)
		assert.Equal(t, "hi", svc.lastInput)
	})

	t.Run("generates session id when missing", func(t *testing.T) {
		svc := &stubService{result: agent.Result{Type: agent.ResultText, Text: "ok"}}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/chat", ChatRequest{Message: "hi"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.SessionID)
		assert.Equal(t, resp.SessionID, svc.lastSessionID)
	})

	t.Run("returns structured explanation payload", func(t *testing.T) {
		svc := &stubService{result: agent.Result{
			Type: agent.ResultExplanation,
			Explanation: &schema.Explanation{
				Language:            "Python",
				DetailedExplanation: "Adds two numbers.",
				KeyConcepts:         []string{"functions"},
			},
		}}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/chat", ChatRequest{Message: "explain", SessionID: "s1"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Response schema.Explanation `json:"response"`
			Type     string             `json:"type"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "code_explanation", resp.Type)
		assert.Equal(t, "Python", resp.Response.Language)
		assert.Equal(t, []string{"functions"}, resp.Response.KeyConcepts)
	})

	t.Run("rejects empty message with error envelope", func(t *testing.T) {
		svc := &stubService{err: agent.ErrEmptyInput}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/chat", ChatRequest{SessionID: "s1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Type)
		assert.Equal(t, "s1", resp.SessionID)
		assert.Contains(t, resp.Error, "message field is required")
		assert.Equal(t, resp.Error, resp.Response)
	})

	t.Run("maps execution errors to 500", func(t *testing.T) {
		svc := &stubService{err: &agent.ExecutionError{Cause: errors.New("boom")}}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/chat", ChatRequest{Message: "hi", SessionID: "s1"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Type)
		assert.Equal(t, "s1", resp.SessionID)
		assert.NotContains(t, resp.Error, "boom")
		assert.NotContains(t, resp.Response, "boom")
	})
}

func TestHandleClear(t *testing.T) {
	t.Run("clears one session", func(t *testing.T) {
		svc := &stubService{}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/clear", ClearRequest{SessionID: "s1"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "s1", svc.clearedID)
		assert.False(t, svc.clearedAll)
	})

	t.Run("clears all sessions without session id", func(t *testing.T) {
		svc := &stubService{}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/clear", ClearRequest{})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, svc.clearedAll)
	})
}

func TestHandleMemory(t *testing.T) {
	t.Run("returns session history", func(t *testing.T) {
		svc := &stubService{memory: []agent.MemoryMessage{
			{Type: "human", Content: "question"},
			{Type: "ai", Content: "answer"},
		}}
		server := setupTestServer(t, svc)

		rec := postJSON(t, server, "/api/v1/memory", MemoryRequest{SessionID: "s1", MaxChars: 100})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp MemoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "s1", resp.SessionID)
		assert.Equal(t, 2, resp.MessageCount)
		require.Len(t, resp.Messages, 2)
		assert.Equal(t, "human", resp.Messages[0].Type)
	})

	t.Run("requires session id", func(t *testing.T) {
		server := setupTestServer(t, &stubService{})

		rec := postJSON(t, server, "/api/v1/memory", MemoryRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Type)
		assert.Contains(t, resp.Error, "session_id")
	})
}

func TestHandleStats(t *testing.T) {
	svc := &stubService{stats: session.Stats{
		ActiveSessions: 2,
		TotalMessages:  6,
		SessionIDs:     []string{"a", "b"},
	}}
	server := setupTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp session.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ActiveSessions)
	assert.Equal(t, 6, resp.TotalMessages)
	assert.Equal(t, []string{"a", "b"}, resp.SessionIDs)
}
