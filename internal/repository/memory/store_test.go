package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, ctx context.Context, uow *UnitOfWork, userId uuid.UUID) *entity.ChatSession {
	t.Helper()
	session := &entity.ChatSession{UserId: userId, Title: "Go", SystemPrompt: "be brief"}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))
	return session
}

func TestMessagesKeepInsertionOrderWithIdenticalTimestamps(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore().WithClock(func() time.Time { return frozen })
	uow := &UnitOfWork{store: store}

	userId := uuid.New()
	session := newSession(t, ctx, uow, userId)

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
			ChatSessionId: session.Id, UserId: userId, Role: "user", Content: content,
		}))
	}

	messages, err := uow.ChatMessageRepository().FindAllBySession(ctx, session.Id)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "third", messages[2].Content)
	assert.Less(t, messages[0].Sequence, messages[1].Sequence)
	assert.Less(t, messages[1].Sequence, messages[2].Sequence)

	latest, err := uow.ChatMessageRepository().FindLatestBySession(ctx, session.Id, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "second", latest[0].Content)
	assert.Equal(t, "third", latest[1].Content)
}

func TestMessageCreateOnMissingSessionIsNotFound(t *testing.T) {
	uow := &UnitOfWork{store: NewStore()}

	err := uow.ChatMessageRepository().Create(context.Background(), &entity.ChatMessage{
		ChatSessionId: uuid.New(), UserId: uuid.New(), Role: "user", Content: "hi",
	})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSessionDeleteCascadesToMessages(t *testing.T) {
	ctx := context.Background()
	uow := &UnitOfWork{store: NewStore()}
	userId := uuid.New()
	session := newSession(t, ctx, uow, userId)

	require.NoError(t, uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		ChatSessionId: session.Id, UserId: userId, Role: "user", Content: "hi",
	}))
	require.NoError(t, uow.ChatSessionRepository().Delete(ctx, session.Id))

	found, err := uow.ChatSessionRepository().FindOwned(ctx, userId, session.Id)
	require.NoError(t, err)
	assert.Nil(t, found)

	messages, err := uow.ChatMessageRepository().FindAllBySession(ctx, session.Id)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	userId := uuid.New()

	setup := factory.NewUnitOfWork(ctx)
	session := &entity.ChatSession{UserId: userId, Title: "keep"}
	require.NoError(t, setup.ChatSessionRepository().Create(ctx, session))
	require.NoError(t, setup.QuotaRepository().Upsert(ctx, &entity.Quota{
		UserId: userId, Plan: "mini", Status: entity.QuotaStatusActive, MaxMessages: 2,
	}))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.ChatSessionRepository().Delete(ctx, session.Id))
	consumed, err := uow.QuotaRepository().ConsumeOne(ctx, userId)
	require.NoError(t, err)
	require.NotNil(t, consumed)
	require.NoError(t, uow.Rollback())

	check := factory.NewUnitOfWork(ctx)
	found, err := check.ChatSessionRepository().FindOwned(ctx, userId, session.Id)
	require.NoError(t, err)
	assert.NotNil(t, found)

	quota, err := check.QuotaRepository().FindByUserId(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 0, quota.MessagesUsed)
}

func TestFindOwnedHidesForeignSessions(t *testing.T) {
	ctx := context.Background()
	uow := &UnitOfWork{store: NewStore()}
	session := newSession(t, ctx, uow, uuid.New())

	found, err := uow.ChatSessionRepository().FindOwned(ctx, uuid.New(), session.Id)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestConsumeOneNeverExceedsLimit(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	userId := uuid.New()

	require.NoError(t, factory.NewUnitOfWork(ctx).QuotaRepository().Upsert(ctx, &entity.Quota{
		UserId: userId, Plan: "mini", Status: entity.QuotaStatusActive, MaxMessages: 10,
	}))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := factory.NewUnitOfWork(ctx).QuotaRepository().ConsumeOne(ctx, userId)
			assert.NoError(t, err)
			if q != nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, successes)
	quota, err := factory.NewUnitOfWork(ctx).QuotaRepository().FindByUserId(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 10, quota.MessagesUsed)
}
