package unitofwork

import (
	"context"

	"mentor-ai-be/internal/repository/contract"
)

// UnitOfWork groups repository calls. Outside Begin/Commit every call runs on
// its own; inside, all calls share one transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	QuotaRepository() contract.QuotaRepository
}
