package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/dto"
	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/pkg/events"
	"mentor-ai-be/pkg/nats"

	"github.com/google/uuid"
)

// EventSubscriber is the part of the NATS subscriber the provisioning intake needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, durableName string, subjects []string, handler nats.EventHandler) (func(), error)
}

// IProvisioningService applies billing events to the quota ledger.
type IProvisioningService interface {
	Start(ctx context.Context) (stop func(), err error)
	Handle(ctx context.Context, event events.Event) error
}

type provisioningService struct {
	subscriber  EventSubscriber
	durableName string
	quota       IQuotaService
	logger      logger.ILogger
}

func NewProvisioningService(subscriber EventSubscriber, durableName string, quota IQuotaService, logger logger.ILogger) IProvisioningService {
	return &provisioningService{
		subscriber:  subscriber,
		durableName: durableName,
		quota:       quota,
		logger:      logger,
	}
}

func (ps *provisioningService) Start(ctx context.Context) (func(), error) {
	return ps.subscriber.Subscribe(ctx, ps.durableName, []string{
		nats.Subject(constant.EventQuotaProvisioned),
		nats.Subject(constant.EventSubscriptionCanceled),
	}, ps.Handle)
}

func (ps *provisioningService) Handle(ctx context.Context, event events.Event) error {
	switch event.EventType() {
	case constant.EventQuotaProvisioned:
		var payload dto.QuotaProvisionedPayload
		if err := decodePayload(event, &payload); err != nil {
			return err
		}
		userId, err := uuid.Parse(payload.UserId)
		if err != nil {
			return fmt.Errorf("%w: invalid user_id %q", nats.ErrPermanent, payload.UserId)
		}
		var periodStart time.Time
		if payload.PeriodStart != nil {
			periodStart = *payload.PeriodStart
		}
		_, err = ps.quota.Upsert(ctx, userId, payload.Plan, payload.MaxMessages, periodStart)
		return permanentIfValidation(err)

	case constant.EventSubscriptionCanceled:
		var payload dto.SubscriptionCanceledPayload
		if err := decodePayload(event, &payload); err != nil {
			return err
		}
		userId, err := uuid.Parse(payload.UserId)
		if err != nil {
			return fmt.Errorf("%w: invalid user_id %q", nats.ErrPermanent, payload.UserId)
		}
		status := entity.QuotaStatusCanceled
		if payload.Status != "" {
			status = entity.QuotaStatus(payload.Status)
		}
		return permanentIfValidation(ps.quota.Deactivate(ctx, userId, status))

	default:
		ps.logger.Warn("PROVISIONING", "Ignoring unexpected event", map[string]interface{}{
			"event_type": event.EventType(),
		})
		return nil
	}
}

func decodePayload(event events.Event, out interface{}) error {
	raw, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("%w: %v", nats.ErrPermanent, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", nats.ErrPermanent, err)
	}
	return nil
}

// Validation and NotFound outcomes will not change on redelivery.
func permanentIfValidation(err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindNotFound:
		return fmt.Errorf("%w: %v", nats.ErrPermanent, err)
	}
	return err
}
