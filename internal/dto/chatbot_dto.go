package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	SystemPrompt string `json:"system_prompt" validate:"max=4000"`
}

type SessionResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	SystemPrompt string     `json:"system_prompt"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ChatMessageResponse struct {
	Id            uuid.UUID              `json:"id"`
	ChatSessionId uuid.UUID              `json:"chat_session_id"`
	Role          string                 `json:"role"`
	Content       string                 `json:"content"`
	Sequence      int64                  `json:"sequence"`
	TokensUsed    *int                   `json:"tokens_used,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type SendChatRequest struct {
	Content string `json:"content" validate:"required,max=16000"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID            `json:"chat_session_id"`
	AssistantMessage *ChatMessageResponse `json:"assistant_message"`
	Allowance        *AllowanceResponse   `json:"allowance,omitempty"`
}
