package service

import (
	"context"
	"strings"
	"time"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/dto"
	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IQuotaService interface {
	// TryConsume spends one message of the user's allowance or fails with
	// QuotaExceeded / SubscriptionInactive. It never creates a quota row.
	TryConsume(ctx context.Context, userId uuid.UUID) (*dto.AllowanceResponse, error)
	Peek(ctx context.Context, userId uuid.UUID) (*dto.AllowanceResponse, error)
	Upsert(ctx context.Context, userId uuid.UUID, plan string, maxMessages int, periodStart time.Time) (*dto.AllowanceResponse, error)
	Deactivate(ctx context.Context, userId uuid.UUID, status entity.QuotaStatus) error
	Plans() []*dto.PlanResponse
}

type quotaService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewQuotaService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IQuotaService {
	return &quotaService{
		uowFactory: uowFactory,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *quotaService) TryConsume(ctx context.Context, userId uuid.UUID) (*dto.AllowanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.QuotaRepository()

	consumed, err := repo.ConsumeOne(ctx, userId)
	if err != nil {
		return nil, apperror.Persistence("failed to consume message quota", err)
	}
	if consumed != nil {
		return dto.NewAllowanceResponse(consumed), nil
	}

	// Nothing was updated: find out why.
	current, err := repo.FindByUserId(ctx, userId)
	if err != nil {
		return nil, apperror.Persistence("failed to load message quota", err)
	}
	if current == nil || current.Status != entity.QuotaStatusActive {
		return nil, apperror.SubscriptionInactive("no active subscription").WithData(dto.NewAllowanceResponse(current))
	}
	return nil, apperror.QuotaExceeded("message limit reached for the current period").WithData(dto.NewAllowanceResponse(current))
}

func (s *quotaService) Peek(ctx context.Context, userId uuid.UUID) (*dto.AllowanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	current, err := uow.QuotaRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, apperror.Persistence("failed to load message quota", err)
	}
	return dto.NewAllowanceResponse(current), nil
}

func (s *quotaService) Upsert(ctx context.Context, userId uuid.UUID, plan string, maxMessages int, periodStart time.Time) (*dto.AllowanceResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Validation("user id is required")
	}
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan == "" {
		return nil, apperror.Validation("plan is required")
	}
	if maxMessages <= 0 {
		def, ok := constant.FindPlan(plan)
		if !ok {
			return nil, apperror.Validation("unknown plan and no message limit given")
		}
		maxMessages = def.MaxMessages
	}
	if periodStart.IsZero() {
		periodStart = s.now()
	}
	periodStart = periodStart.UTC()

	quota := &entity.Quota{
		UserId:       userId,
		Plan:         plan,
		Status:       entity.QuotaStatusActive,
		MaxMessages:  maxMessages,
		MessagesUsed: 0,
		PeriodStart:  periodStart,
		PeriodEnd:    periodStart.AddDate(0, 1, 0),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QuotaRepository().Upsert(ctx, quota); err != nil {
		return nil, apperror.Persistence("failed to provision message quota", err)
	}

	s.logger.Info("QUOTA", "Quota provisioned", map[string]interface{}{
		"user_id":      userId.String(),
		"plan":         plan,
		"max_messages": maxMessages,
		"period_end":   quota.PeriodEnd,
	})
	return dto.NewAllowanceResponse(quota), nil
}

func (s *quotaService) Deactivate(ctx context.Context, userId uuid.UUID, status entity.QuotaStatus) error {
	if status != entity.QuotaStatusInactive && status != entity.QuotaStatusCanceled {
		return apperror.Validation("status must be inactive or canceled")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	updated, err := uow.QuotaRepository().UpdateStatus(ctx, userId, status)
	if err != nil {
		return apperror.Persistence("failed to update quota status", err)
	}
	if !updated {
		return apperror.NotFound("quota not found")
	}

	s.logger.Info("QUOTA", "Quota deactivated", map[string]interface{}{
		"user_id": userId.String(),
		"status":  string(status),
	})
	return nil
}

func (s *quotaService) Plans() []*dto.PlanResponse {
	plans := make([]*dto.PlanResponse, 0, len(constant.PlanCatalog))
	for _, p := range constant.PlanCatalog {
		plans = append(plans, &dto.PlanResponse{Slug: p.Slug, Name: p.Name, MaxMessages: p.MaxMessages})
	}
	return plans
}
