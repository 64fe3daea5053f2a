package implementation

import (
	"context"
	"errors"
	"time"

	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/mapper"
	"mentor-ai-be/internal/model"
	"mentor-ai-be/internal/repository/contract"
	"mentor-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuotaMapper
}

func NewQuotaRepository(db *gorm.DB) contract.QuotaRepository {
	return &QuotaRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuotaMapper(),
	}
}

func (r *QuotaRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuotaRepositoryImpl) Upsert(ctx context.Context, quota *entity.Quota) error {
	m := r.mapper.ToModel(quota)
	m.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan", "status", "max_messages", "messages_used",
			"period_start", "period_end", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	stored, err := r.FindByUserId(ctx, quota.UserId)
	if err != nil {
		return err
	}
	if stored != nil {
		*quota = *stored
	}
	return nil
}

func (r *QuotaRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Quota, error) {
	var m model.UserQuota
	query := r.applySpecifications(r.db.WithContext(ctx), specification.UserOwnedBy{UserID: userId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// ConsumeOne is a single conditional UPDATE; the row lock taken by Postgres
// serializes concurrent consumers of the same user.
func (r *QuotaRepositoryImpl) ConsumeOne(ctx context.Context, userId uuid.UUID) (*entity.Quota, error) {
	var rows []model.UserQuota
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&rows).Clauses(clause.Returning{}),
		specification.UserOwnedBy{UserID: userId},
		specification.WithStatus{Status: string(entity.QuotaStatusActive)},
		specification.HasRemainingMessages{},
	)
	result := query.Updates(map[string]interface{}{
		"messages_used": gorm.Expr("messages_used + 1"),
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || len(rows) == 0 {
		return nil, nil
	}
	return r.mapper.ToEntity(&rows[0]), nil
}

func (r *QuotaRepositoryImpl) UpdateStatus(ctx context.Context, userId uuid.UUID, status entity.QuotaStatus) (bool, error) {
	result := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UserQuota{}),
		specification.UserOwnedBy{UserID: userId},
	).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
