// Package session owns per-session conversation history for the code helper
// engine. Each session is an append-only, order-preserving message log keyed
// by an opaque identifier, bounded by a window applied at read time.
package session

// Role identifies the author of a message.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Message is a single conversational turn. Messages are immutable once
// appended and are owned exclusively by their session.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Stats is a point-in-time view over the store. It is derived on demand and
// never persisted.
type Stats struct {
	ActiveSessions int      `json:"active_sessions"`
	TotalMessages  int      `json:"total_messages"`
	SessionIDs     []string `json:"session_ids"`
}

// DefaultWindow is the number of messages retained per session.
const DefaultWindow = 25
