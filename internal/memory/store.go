// Package memory provides the in-process, per-thread conversation store.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbot/library-assistant/internal/model"
	"github.com/scholarbot/library-assistant/pkg/metrics"
)

// Store keeps an append-only message transcript per thread. Threads are
// independent; history lives for the process lifetime only and is never
// edited in place. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	threads map[string][]model.Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		threads: make(map[string][]model.Message),
	}
}

// Append adds a message to the thread's transcript, creating the thread on
// first use. Missing identity fields are filled in before storing.
func (s *Store) Append(threadID string, msg model.Message) model.Message {
	if msg.ID == "" {
		msg.ID = uuid.Must(uuid.NewV7()).String()
	}
	msg.ThreadID = threadID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.ToolCalls = cloneToolCalls(msg.ToolCalls)

	s.mu.Lock()
	s.threads[threadID] = append(s.threads[threadID], msg)
	s.mu.Unlock()

	metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()

	return msg
}

// Read returns a copy of the thread's ordered transcript. An unknown thread
// reads as empty.
func (s *Store) Read(threadID string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.threads[threadID]
	if len(history) == 0 {
		return nil
	}

	out := make([]model.Message, len(history))
	for i, msg := range history {
		msg.ToolCalls = cloneToolCalls(msg.ToolCalls)
		out[i] = msg
	}
	return out
}

// Len reports the number of messages in the thread.
func (s *Store) Len(threadID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads[threadID])
}

// Reset clears the thread's history without affecting other threads.
// Resetting an unknown thread is a no-op.
func (s *Store) Reset(threadID string) {
	s.mu.Lock()
	delete(s.threads, threadID)
	s.mu.Unlock()
}

func cloneToolCalls(calls []model.ToolCall) []model.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	dst := make([]model.ToolCall, len(calls))
	copy(dst, calls)
	return dst
}
