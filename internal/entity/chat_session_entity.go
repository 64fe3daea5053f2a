package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Title        string
	SystemPrompt string
	Sequence     int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
