package contract

import (
	"context"

	"mentor-ai-be/internal/entity"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	// Create assigns CreatedAt and Sequence on the passed message.
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error)
	// FindLatestBySession returns up to limit newest messages, oldest first.
	FindLatestBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error)
	CountByUserAndRole(ctx context.Context, userId uuid.UUID, role string) (int64, error)
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
}
