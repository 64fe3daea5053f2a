package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is immutable once stored. Sequence is assigned by the store and
// breaks ties between messages sharing a CreatedAt.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	UserId        uuid.UUID
	Role          string
	Content       string
	Sequence      int64
	TokensUsed    *int
	Metadata      map[string]interface{}
	CreatedAt     time.Time
}
