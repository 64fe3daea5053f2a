package memory

import (
	"sync"
	"time"

	"mentor-ai-be/internal/entity"

	"github.com/google/uuid"
)

// Store is the process-local backing state shared by every unit of work
// created from the same factory. A transaction holds mu from Begin until
// Commit or Rollback.
type Store struct {
	mu              sync.Mutex
	sessions        map[uuid.UUID]*entity.ChatSession
	messages        map[uuid.UUID][]*entity.ChatMessage // per session, in (created_at, sequence) order
	quotas          map[uuid.UUID]*entity.Quota
	sequence        int64 // messages
	sessionSequence int64
	now             func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		messages: make(map[uuid.UUID][]*entity.ChatMessage),
		quotas:   make(map[uuid.UUID]*entity.Quota),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests use it to force identical timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func copySession(s *entity.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyMessage(m *entity.ChatMessage) *entity.ChatMessage {
	if m == nil {
		return nil
	}
	c := *m
	if m.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func copyQuota(q *entity.Quota) *entity.Quota {
	if q == nil {
		return nil
	}
	c := *q
	return &c
}
