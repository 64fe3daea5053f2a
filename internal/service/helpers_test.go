package service

import (
	"context"
	"testing"
	"time"

	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/internal/repository/memory"
	"mentor-ai-be/internal/repository/unitofwork"
	"mentor-ai-be/pkg/inflight"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	uowFactory unitofwork.RepositoryFactory
	guard      inflight.Guard
	logger     logger.ILogger
	sessions   ISessionService
	messages   IMessageService
	quota      IQuotaService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.NewStore())
}

func newTestEnvWithStore(t *testing.T, store *memory.Store) *testEnv {
	t.Helper()
	uowFactory := memory.NewRepositoryFactory(store)
	guard := inflight.NewMemoryGuard(time.Minute)
	log := logger.NewNopLogger()
	return &testEnv{
		uowFactory: uowFactory,
		guard:      guard,
		logger:     log,
		sessions:   NewSessionService(uowFactory, guard, log),
		messages:   NewMessageService(uowFactory),
		quota:      NewQuotaService(uowFactory, log),
	}
}

func (e *testEnv) provision(t *testing.T, userId uuid.UUID, maxMessages int) {
	t.Helper()
	_, err := e.quota.Upsert(context.Background(), userId, "custom", maxMessages, time.Time{})
	require.NoError(t, err)
}

func (e *testEnv) newSession(t *testing.T, userId uuid.UUID) *entity.ChatSession {
	t.Helper()
	session, err := e.sessions.Create(context.Background(), userId, "Career advice", "You are a mentor.")
	require.NoError(t, err)
	return session
}
