package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_sessions_order,priority:1"` // User ownership for data isolation
	Title        string    `gorm:"type:text;not null"`
	SystemPrompt string    `gorm:"type:text;not null"`
	Sequence     int64     `gorm:"type:bigserial;autoIncrement;not null;index:idx_chat_sessions_order,priority:3"`
	// Filled by the database clock so every replica agrees on creation order.
	CreatedAt time.Time     `gorm:"autoCreateTime:false;default:clock_timestamp();not null;index:idx_chat_sessions_order,priority:2"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime"`
	Messages  []ChatMessage `gorm:"foreignKey:ChatSessionId;constraint:OnDelete:CASCADE"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
