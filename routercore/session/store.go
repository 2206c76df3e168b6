// Package session provides the bounded per-user conversation history.
//
// The store keeps at most MaxHistory messages per user with strict FIFO
// eviction. Writes are best-effort: a backend failure degrades the
// conversation to memory-less mode for that turn instead of failing it.
// Operations for the same user are expected to be serialized by the caller
// (one in-flight turn per session); operations for different users are
// independent.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/uniassist/supportcore/routercore/chat"
)

// DefaultMaxHistory is the retained-message cap used when none is configured.
const DefaultMaxHistory = 20

// Store is the bounded session history contract.
type Store interface {
	// Append writes a message to the user's log, evicting the oldest entry
	// once the cap is exceeded. The returned error is advisory: callers log
	// and continue.
	Append(ctx context.Context, userID string, msg chat.ChatMessage) error

	// Read returns the user's history oldest-to-newest, at most MaxHistory
	// long. A missing user or a failed backend read yields an empty slice,
	// never an error.
	Read(ctx context.Context, userID string) []chat.ChatMessage

	// Clear deletes all history for a user and reports whether the delete
	// was acknowledged.
	Clear(ctx context.Context, userID string) bool
}

// =============================================================================
// Stats
// =============================================================================

// Stats summarizes a user's retained history.
type Stats struct {
	UserID           string         `json:"user_id"`
	TotalMessages    int            `json:"total_messages"`
	FirstInteraction *time.Time     `json:"first_interaction,omitempty"`
	LastInteraction  *time.Time     `json:"last_interaction,omitempty"`
	RoleCounts       map[string]int `json:"role_counts"`
}

// ComputeStats derives Stats from a bounded history read.
func ComputeStats(userID string, history []chat.ChatMessage) Stats {
	stats := Stats{
		UserID:        userID,
		TotalMessages: len(history),
		RoleCounts:    make(map[string]int),
	}
	if len(history) == 0 {
		return stats
	}
	first := history[0].Timestamp
	last := history[len(history)-1].Timestamp
	stats.FirstInteraction = &first
	stats.LastInteraction = &last
	for _, msg := range history {
		stats.RoleCounts[string(msg.Role)]++
	}
	return stats
}

// =============================================================================
// In-Memory Store
// =============================================================================

// MemoryStore is a mutex-guarded in-process Store. It backs tests and the
// degraded mode used when no Redis backend is configured.
type MemoryStore struct {
	maxHistory int
	mu         sync.RWMutex
	logs       map[string][]chat.ChatMessage
}

// NewMemoryStore creates a MemoryStore with the given cap.
// A cap <= 0 falls back to DefaultMaxHistory.
func NewMemoryStore(maxHistory int) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &MemoryStore{
		maxHistory: maxHistory,
		logs:       make(map[string][]chat.ChatMessage),
	}
}

// Append adds a message, evicting from the front once over the cap.
func (s *MemoryStore) Append(_ context.Context, userID string, msg chat.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.logs[userID], msg)
	if len(log) > s.maxHistory {
		log = log[len(log)-s.maxHistory:]
	}
	s.logs[userID] = log
	return nil
}

// Read returns a copy of the user's history oldest-to-newest.
func (s *MemoryStore) Read(_ context.Context, userID string) []chat.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[userID]
	out := make([]chat.ChatMessage, len(log))
	copy(out, log)
	return out
}

// Clear removes all history for the user.
func (s *MemoryStore) Clear(_ context.Context, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, userID)
	return true
}
