package http

// ChatRequest is the request body for POST /api/v1/chat. SessionID is
// optional; a missing one is generated and echoed back so the caller can
// continue the conversation.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the response body for POST /api/v1/chat. Response is
// either a plain string or a structured payload, discriminated by Type.
type ChatResponse struct {
	Response  any    `json:"response"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// ClearRequest is the request body for POST /api/v1/clear. An empty
// SessionID clears every session.
type ClearRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// ClearResponse is the response body for POST /api/v1/clear.
type ClearResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
}

// MemoryRequest is the request body for POST /api/v1/memory. MaxChars
// truncates each message's content; zero or negative returns full content.
type MemoryRequest struct {
	SessionID string `json:"session_id"`
	MaxChars  int    `json:"max_chars,omitempty"`
}

// MemoryResponse is the response body for POST /api/v1/memory.
type MemoryResponse struct {
	SessionID    string          `json:"session_id"`
	MessageCount int             `json:"message_count"`
	Messages     []MemoryMessage `json:"messages"`
}

// MemoryMessage is one history entry in a MemoryResponse.
type MemoryMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ErrorResponse is the error body for all endpoints. It keeps the chat
// envelope shape, with Type always "error", so clients dispatch on Type
// uniformly. Response carries the user-facing message; Error the detail.
type ErrorResponse struct {
	Response  string `json:"response"`
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
