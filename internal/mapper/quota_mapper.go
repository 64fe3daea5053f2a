package mapper

import (
	"time"

	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/model"
)

type QuotaMapper struct{}

func NewQuotaMapper() *QuotaMapper {
	return &QuotaMapper{}
}

func (m *QuotaMapper) ToEntity(q *model.UserQuota) *entity.Quota {
	if q == nil {
		return nil
	}

	var updatedAt *time.Time
	if !q.UpdatedAt.IsZero() {
		t := q.UpdatedAt
		updatedAt = &t
	}

	return &entity.Quota{
		UserId:       q.UserId,
		Plan:         q.Plan,
		Status:       entity.QuotaStatus(q.Status),
		MaxMessages:  q.MaxMessages,
		MessagesUsed: q.MessagesUsed,
		PeriodStart:  q.PeriodStart,
		PeriodEnd:    q.PeriodEnd,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *QuotaMapper) ToModel(q *entity.Quota) *model.UserQuota {
	if q == nil {
		return nil
	}

	var updatedAt time.Time
	if q.UpdatedAt != nil {
		updatedAt = *q.UpdatedAt
	}

	return &model.UserQuota{
		UserId:       q.UserId,
		Plan:         q.Plan,
		Status:       string(q.Status),
		MaxMessages:  q.MaxMessages,
		MessagesUsed: q.MessagesUsed,
		PeriodStart:  q.PeriodStart,
		PeriodEnd:    q.PeriodEnd,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}
