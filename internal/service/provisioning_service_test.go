package service

import (
	"context"
	"errors"
	"testing"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/pkg/events"
	"mentor-ai-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubscriber struct {
	mock.Mock
}

func (m *MockSubscriber) Subscribe(ctx context.Context, durableName string, subjects []string, handler nats.EventHandler) (func(), error) {
	args := m.Called(ctx, durableName, subjects, handler)
	return func() {}, args.Error(0)
}

func TestProvisioningStartSubscribesToBillingSubjects(t *testing.T) {
	env := newTestEnv(t)
	sub := new(MockSubscriber)
	sub.On("Subscribe", mock.Anything, "mentor-ai-quota",
		[]string{"events.QUOTA_PROVISIONED", "events.SUBSCRIPTION_CANCELED"}, mock.Anything).Return(nil)

	stop, err := NewProvisioningService(sub, "mentor-ai-quota", env.quota, env.logger).Start(context.Background())
	require.NoError(t, err)
	stop()
	sub.AssertExpectations(t)
}

func TestProvisioningHandlesQuotaLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewProvisioningService(new(MockSubscriber), "d", env.quota, env.logger)
	userId := uuid.New()

	err := svc.Handle(ctx, events.NewEvent(constant.EventQuotaProvisioned, map[string]interface{}{
		"user_id": userId.String(),
		"plan":    "mini",
	}))
	require.NoError(t, err)

	a, err := env.quota.Peek(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 50, a.MaxMessages)
	assert.True(t, a.CanSend)

	err = svc.Handle(ctx, events.NewEvent(constant.EventSubscriptionCanceled, map[string]interface{}{
		"user_id": userId.String(),
	}))
	require.NoError(t, err)

	a, err = env.quota.Peek(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, "canceled", a.Status)
}

func TestProvisioningRejectsBadEventsPermanently(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProvisioningService(new(MockSubscriber), "d", env.quota, env.logger)

	err := svc.Handle(context.Background(), events.NewEvent(constant.EventQuotaProvisioned, map[string]interface{}{
		"user_id": "not-a-uuid",
		"plan":    "mini",
	}))
	assert.True(t, errors.Is(err, nats.ErrPermanent))

	err = svc.Handle(context.Background(), events.NewEvent(constant.EventQuotaProvisioned, map[string]interface{}{
		"user_id": uuid.NewString(),
		"plan":    "unknown",
	}))
	assert.True(t, errors.Is(err, nats.ErrPermanent))

	assert.NoError(t, svc.Handle(context.Background(), events.NewEvent("SOMETHING_ELSE", nil)))
}
