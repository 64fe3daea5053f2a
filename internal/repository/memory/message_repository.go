package memory

import (
	"context"

	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

type ChatMessageRepository struct {
	uow *UnitOfWork
}

func (r *ChatMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	return r.uow.run(func() error {
		s := r.uow.store
		sessionId := message.ChatSessionId
		if _, ok := s.sessions[sessionId]; !ok {
			return apperror.NotFound("chat session not found")
		}

		if message.Id == uuid.Nil {
			message.Id = uuid.New()
		}
		existing := s.messages[sessionId]

		// Timestamps never go backwards within a session.
		createdAt := s.now()
		if n := len(existing); n > 0 && createdAt.Before(existing[n-1].CreatedAt) {
			createdAt = existing[n-1].CreatedAt
		}
		s.sequence++
		message.Sequence = s.sequence
		message.CreatedAt = createdAt

		s.messages[sessionId] = append(existing, copyMessage(message))
		r.uow.record(func() {
			s.messages[sessionId] = existing
			s.sequence--
		})
		return nil
	})
}

func (r *ChatMessageRepository) FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	return r.FindLatestBySession(ctx, sessionId, -1)
}

func (r *ChatMessageRepository) FindLatestBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	result := []*entity.ChatMessage{}
	if limit == 0 {
		return result, nil
	}
	err := r.uow.run(func() error {
		stored := r.uow.store.messages[sessionId]
		start := 0
		if limit > 0 && len(stored) > limit {
			start = len(stored) - limit
		}
		for _, m := range stored[start:] {
			result = append(result, copyMessage(m))
		}
		return nil
	})
	return result, err
}

func (r *ChatMessageRepository) CountByUserAndRole(ctx context.Context, userId uuid.UUID, role string) (int64, error) {
	var count int64
	err := r.uow.run(func() error {
		for _, messages := range r.uow.store.messages {
			for _, m := range messages {
				if m.UserId == userId && m.Role == role {
					count++
				}
			}
		}
		return nil
	})
	return count, err
}

func (r *ChatMessageRepository) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.uow.run(func() error {
		s := r.uow.store
		messages, ok := s.messages[sessionId]
		if !ok {
			return nil
		}
		delete(s.messages, sessionId)
		r.uow.record(func() { s.messages[sessionId] = messages })
		return nil
	})
}
