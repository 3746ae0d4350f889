package session

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Store is an in-memory session log keyed by session id. It is safe for
// concurrent use: each session carries its own lock so the
// read-window-append sequence for one session never blocks another.
//
// Windowing happens at read time, not write time. Append stays O(1) and the
// trim runs exactly where history is about to be sent upstream, so every
// outbound request is bounded even though a session may transiently exceed
// the window between writes.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	window int
	logger *zap.Logger
}

// entry holds one session's log with its own lock.
type entry struct {
	mu       sync.Mutex
	messages []Message
}

// NewStore creates a store with the given window size. A window of zero or
// less falls back to DefaultWindow.
func NewStore(window int, logger *zap.Logger) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*entry),
		window:   window,
		logger:   logger,
	}
}

// Window returns the window size the store trims to.
func (s *Store) Window() int {
	return s.window
}

// getOrCreate returns the entry for id, creating an empty one on first
// reference. Creation never fails.
func (s *Store) getOrCreate(id string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.sessions[id]; ok {
		return e
	}
	e = &entry{}
	s.sessions[id] = e
	s.logger.Debug("created session", zap.String("session_id", id))
	return e
}

// Append adds a message to the end of the session's log, creating the
// session if needed.
func (s *Store) Append(id string, msg Message) {
	e := s.getOrCreate(id)
	e.mu.Lock()
	e.messages = append(e.messages, msg)
	e.mu.Unlock()
}

// AppendExchange appends a human/ai message pair in one critical section so
// concurrent callers sharing a session cannot interleave a turn.
func (s *Store) AppendExchange(id, humanContent, aiContent string) {
	e := s.getOrCreate(id)
	e.mu.Lock()
	e.messages = append(e.messages,
		Message{Role: RoleHuman, Content: humanContent},
		Message{Role: RoleAI, Content: aiContent},
	)
	e.mu.Unlock()
}

// History returns the session's messages, trimming the stored log to the
// window first. The returned slice is a copy; callers may retain it.
func (s *Store) History(id string) []Message {
	e := s.getOrCreate(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if excess := len(e.messages) - s.window; excess > 0 {
		e.messages = append([]Message(nil), e.messages[excess:]...)
		s.logger.Debug("trimmed session to window",
			zap.String("session_id", id),
			zap.Int("window", s.window),
			zap.Int("dropped", excess))
	}

	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Clear empties a single session's log. Clearing an unknown session is a
// logged no-op, not an error.
func (s *Store) Clear(id string) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		s.logger.Warn("clear requested for unknown session", zap.String("session_id", id))
		return
	}

	e.mu.Lock()
	e.messages = nil
	e.mu.Unlock()
	s.logger.Info("cleared session", zap.String("session_id", id))
}

// ClearAll drops every session.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()
	s.logger.Info("cleared all sessions")
}

// Stats computes a snapshot of the store's current contents.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		ActiveSessions: len(s.sessions),
		SessionIDs:     make([]string, 0, len(s.sessions)),
	}
	for id, e := range s.sessions {
		e.mu.Lock()
		stats.TotalMessages += len(e.messages)
		e.mu.Unlock()
		stats.SessionIDs = append(stats.SessionIDs, id)
	}
	sort.Strings(stats.SessionIDs)
	return stats
}
