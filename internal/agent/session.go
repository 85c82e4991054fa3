package agent

import (
	"sync"
	"time"

	"txagent/internal/llm"

	"github.com/google/uuid"
)

// Session owns one conversation's dialogue history. History is append-only
// while the session is open; sessions never share history.
type Session struct {
	ID        string
	StartedAt time.Time

	mu        sync.Mutex
	history   []llm.Message
	toolCalls int
	closed    bool
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Append adds turns to the end of the history. It is a no-op on a closed session.
func (s *Session) Append(msgs ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for _, m := range msgs {
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now()
		}
		if m.Role == llm.RoleTool {
			s.toolCalls++
		}
		s.history = append(s.history, m)
	}
}

// History returns a copy of the turns recorded so far.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// ToolCallCount reports how many tool results were appended.
func (s *Session) ToolCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toolCalls
}

// Close discards the history. The session cannot be reused afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.closed = true
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
