package memory

import (
	"context"

	"mentor-ai-be/internal/entity"

	"github.com/google/uuid"
)

type QuotaRepository struct {
	uow *UnitOfWork
}

func (r *QuotaRepository) Upsert(ctx context.Context, quota *entity.Quota) error {
	return r.uow.run(func() error {
		s := r.uow.store
		previous := s.quotas[quota.UserId]

		now := s.now()
		stored := copyQuota(quota)
		if previous != nil {
			stored.CreatedAt = previous.CreatedAt
		} else {
			stored.CreatedAt = now
		}
		stored.UpdatedAt = &now

		userId := quota.UserId
		s.quotas[userId] = stored
		r.uow.record(func() {
			if previous == nil {
				delete(s.quotas, userId)
				return
			}
			s.quotas[userId] = previous
		})
		*quota = *copyQuota(stored)
		return nil
	})
}

func (r *QuotaRepository) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Quota, error) {
	var found *entity.Quota
	err := r.uow.run(func() error {
		found = copyQuota(r.uow.store.quotas[userId])
		return nil
	})
	return found, err
}

func (r *QuotaRepository) ConsumeOne(ctx context.Context, userId uuid.UUID) (*entity.Quota, error) {
	var consumed *entity.Quota
	err := r.uow.run(func() error {
		s := r.uow.store
		q, ok := s.quotas[userId]
		if !ok || q.Status != entity.QuotaStatusActive || q.MessagesUsed >= q.MaxMessages {
			return nil
		}

		previous := copyQuota(q)
		now := s.now()
		q.MessagesUsed++
		q.UpdatedAt = &now
		r.uow.record(func() { s.quotas[userId] = previous })

		consumed = copyQuota(q)
		return nil
	})
	return consumed, err
}

func (r *QuotaRepository) UpdateStatus(ctx context.Context, userId uuid.UUID, status entity.QuotaStatus) (bool, error) {
	var updated bool
	err := r.uow.run(func() error {
		s := r.uow.store
		q, ok := s.quotas[userId]
		if !ok {
			return nil
		}

		previous := copyQuota(q)
		now := s.now()
		q.Status = status
		q.UpdatedAt = &now
		r.uow.record(func() { s.quotas[userId] = previous })

		updated = true
		return nil
	})
	return updated, err
}
