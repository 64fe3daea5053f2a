package contract

import (
	"context"

	"mentor-ai-be/internal/entity"

	"github.com/google/uuid"
)

type QuotaRepository interface {
	Upsert(ctx context.Context, quota *entity.Quota) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Quota, error)
	// ConsumeOne increments messages_used only when the row is active and
	// below its limit. It returns nil, nil when no row qualified.
	ConsumeOne(ctx context.Context, userId uuid.UUID) (*entity.Quota, error)
	UpdateStatus(ctx context.Context, userId uuid.UUID, status entity.QuotaStatus) (bool, error)
}
