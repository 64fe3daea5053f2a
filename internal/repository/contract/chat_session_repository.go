package contract

import (
	"context"

	"mentor-ai-be/internal/entity"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	// FindOwned returns nil, nil when the session does not exist or belongs to another user.
	FindOwned(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error)
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error)
	CountByUser(ctx context.Context, userId uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
