package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID         `gorm:"type:uuid;not null;index:idx_chat_messages_order,priority:1"`
	UserId        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Role          string            `gorm:"type:varchar(16);not null"`
	Content       string            `gorm:"type:text;not null"`
	Sequence      int64             `gorm:"type:bigserial;autoIncrement;not null;index:idx_chat_messages_order,priority:3"`
	TokensUsed    *int              `gorm:"type:integer"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"autoCreateTime:false;default:clock_timestamp();not null;index:idx_chat_messages_order,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
