package mapper

import (
	"time"

	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		SystemPrompt: s.SystemPrompt,
		Sequence:     s.Sequence,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		SystemPrompt: s.SystemPrompt,
		Sequence:     s.Sequence,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMapper) ChatSessionsToEntities(models []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(models))
	for i, s := range models {
		entities[i] = m.ChatSessionToEntity(s)
	}
	return entities
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(msg.Metadata) > 0 {
		metadata = map[string]interface{}(msg.Metadata)
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		UserId:        msg.UserId,
		Role:          msg.Role,
		Content:       msg.Content,
		Sequence:      msg.Sequence,
		TokensUsed:    msg.TokensUsed,
		Metadata:      metadata,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var metadata datatypes.JSONMap
	if len(msg.Metadata) > 0 {
		metadata = datatypes.JSONMap(msg.Metadata)
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		UserId:        msg.UserId,
		Role:          msg.Role,
		Content:       msg.Content,
		Sequence:      msg.Sequence,
		TokensUsed:    msg.TokensUsed,
		Metadata:      metadata,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
