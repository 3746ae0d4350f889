package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request and response types match internal/http/types.go.

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response  json.RawMessage `json:"response"`
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
}

type ClearRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type ClearResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
}

type MemoryRequest struct {
	SessionID string `json:"session_id"`
	MaxChars  int    `json:"max_chars,omitempty"`
}

type MemoryResponse struct {
	SessionID    string          `json:"session_id"`
	MessageCount int             `json:"message_count"`
	Messages     []MemoryMessage `json:"messages"`
}

type MemoryMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type StatsResponse struct {
	ActiveSessions int      `json:"active_sessions"`
	TotalMessages  int      `json:"total_messages"`
	SessionIDs     []string `json:"session_ids"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Response  string `json:"response"`
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error"`
}

// apiClient issues JSON requests against the codehelperd HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

// newAPIClient creates a client for the given server. The generous timeout
// covers chat turns that ride out the server's retry schedule.
func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *apiClient) Chat(message, session string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.postJSON("/api/v1/chat", ChatRequest{Message: message, SessionID: session}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) Clear(session string) (*ClearResponse, error) {
	var resp ClearResponse
	if err := c.postJSON("/api/v1/clear", ClearRequest{SessionID: session}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) Memory(session string, maxChars int) (*MemoryResponse, error) {
	var resp MemoryResponse
	if err := c.postJSON("/api/v1/memory", MemoryRequest{SessionID: session, MaxChars: maxChars}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) Stats() (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.getJSON("/api/v1/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON("/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) postJSON(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func (c *apiClient) getJSON(path string, out any) error {
	url := c.baseURL + path
	resp, err := c.http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse unmarshals a success body into out, or surfaces the
// server's error message on non-200 status.
func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
