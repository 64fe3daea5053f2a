package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionValidatesTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userId := uuid.New()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := env.sessions.Create(ctx, userId, title, "")
		assert.True(t, errors.Is(err, apperror.ErrValidation), "title %q", title)
	}

	count, err := env.sessions.Count(ctx, userId)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateSessionDefaultsSystemPrompt(t *testing.T) {
	env := newTestEnv(t)

	session, err := env.sessions.Create(context.Background(), uuid.New(), "  Interview prep  ", " ")
	require.NoError(t, err)

	assert.Equal(t, "Interview prep", session.Title)
	assert.Equal(t, constant.DefaultSystemPrompt, session.SystemPrompt)
}

func TestListSessionsOrderedByCreation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userId := uuid.New()

	first, err := env.sessions.Create(ctx, userId, "first", "")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := env.sessions.Create(ctx, userId, "second", "")
	require.NoError(t, err)
	_, err = env.sessions.Create(ctx, uuid.New(), "someone else", "")
	require.NoError(t, err)

	sessions, err := env.sessions.List(ctx, userId)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.Id, sessions[0].Id)
	assert.Equal(t, second.Id, sessions[1].Id)
}

func TestListSessionsKeepsCreationOrderWithinOneClockTick(t *testing.T) {
	frozen := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	env := newTestEnvWithStore(t, memory.NewStore().WithClock(func() time.Time { return frozen }))
	ctx := context.Background()
	userId := uuid.New()

	created := make([]uuid.UUID, 0, 8)
	for i := 0; i < 8; i++ {
		session, err := env.sessions.Create(ctx, userId, fmt.Sprintf("s%d", i), "")
		require.NoError(t, err)
		created = append(created, session.Id)
	}

	sessions, err := env.sessions.List(ctx, userId)
	require.NoError(t, err)
	listed := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		assert.True(t, s.CreatedAt.Equal(frozen))
		listed = append(listed, s.Id)
	}
	assert.Equal(t, created, listed)
}

func TestGetSessionForeignOwnerIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	session := env.newSession(t, uuid.New())

	_, err := env.sessions.Get(context.Background(), uuid.New(), session.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteSessionCascadesMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userId := uuid.New()
	session := env.newSession(t, userId)

	for _, role := range []string{constant.ChatMessageRoleUser, constant.ChatMessageRoleAssistant} {
		_, err := env.messages.Append(ctx, AppendMessageInput{SessionId: session.Id, UserId: userId, Role: role, Content: "hello"})
		require.NoError(t, err)
	}

	require.NoError(t, env.sessions.Delete(ctx, userId, session.Id))

	_, err := env.messages.List(ctx, userId, session.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	count, err := env.messages.CountUserMessages(ctx, userId)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = env.sessions.Delete(ctx, userId, session.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteSessionRejectsForeignOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	session := env.newSession(t, owner)

	err := env.sessions.Delete(context.Background(), uuid.New(), session.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = env.sessions.Get(context.Background(), owner, session.Id)
	assert.NoError(t, err)
}

func TestDeleteSessionConflictsWithExchangeInFlight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userId := uuid.New()
	session := env.newSession(t, userId)

	release, err := env.guard.Acquire(ctx, sessionLockKey(session.Id))
	require.NoError(t, err)

	err = env.sessions.Delete(ctx, userId, session.Id)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	release()
	assert.NoError(t, env.sessions.Delete(ctx, userId, session.Id))
}
