package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/model"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/repository/unitofwork"
	"mentor-ai-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.WithLogLevel(gormlogger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ChatSession{}, &model.ChatMessage{}, &model.UserQuota{}))
	return db
}

func TestGormRepositories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	userId := uuid.New()

	t.Cleanup(func() {
		db.Where("user_id = ?", userId).Delete(&model.ChatMessage{})
		db.Where("user_id = ?", userId).Delete(&model.ChatSession{})
		db.Where("user_id = ?", userId).Delete(&model.UserQuota{})
	})

	uow := uowFactory.NewUnitOfWork(ctx)
	session := &entity.ChatSession{Id: uuid.New(), UserId: userId, Title: "Integration", SystemPrompt: "mentor"}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))

	t.Run("messages come back in insertion order", func(t *testing.T) {
		// App clocks that disagree across replicas must not reorder the log.
		skewed := []time.Time{time.Now().Add(time.Hour), time.Now().Add(-time.Hour), time.Now().Add(30 * time.Minute)}
		roles := []string{constant.ChatMessageRoleUser, constant.ChatMessageRoleAssistant, constant.ChatMessageRoleUser}
		inserted := make([]uuid.UUID, 0, len(roles))
		for i, role := range roles {
			msg := &entity.ChatMessage{
				Id:            uuid.New(),
				ChatSessionId: session.Id,
				UserId:        userId,
				Role:          role,
				Content:       role + " turn",
				CreatedAt:     skewed[i],
			}
			require.NoError(t, uow.ChatMessageRepository().Create(ctx, msg))
			assert.False(t, msg.CreatedAt.Equal(skewed[i]))
			inserted = append(inserted, msg.Id)
		}

		all, err := uow.ChatMessageRepository().FindAllBySession(ctx, session.Id)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i, msg := range all {
			assert.Equal(t, inserted[i], msg.Id)
		}
		assert.Less(t, all[0].Sequence, all[1].Sequence)
		assert.Less(t, all[1].Sequence, all[2].Sequence)
		assert.False(t, all[1].CreatedAt.Before(all[0].CreatedAt))
		assert.False(t, all[2].CreatedAt.Before(all[1].CreatedAt))

		latest, err := uow.ChatMessageRepository().FindLatestBySession(ctx, session.Id, 2)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, all[1].Id, latest[0].Id)
		assert.Equal(t, all[2].Id, latest[1].Id)

		count, err := uow.ChatMessageRepository().CountByUserAndRole(ctx, userId, constant.ChatMessageRoleUser)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("sessions list in creation order with database timestamps", func(t *testing.T) {
		listUser := uuid.New()
		t.Cleanup(func() {
			db.Where("user_id = ?", listUser).Delete(&model.ChatSession{})
		})

		created := make([]uuid.UUID, 0, 4)
		for i := 0; i < 4; i++ {
			s := &entity.ChatSession{
				UserId:       listUser,
				Title:        "ordered",
				SystemPrompt: "mentor",
				CreatedAt:    time.Now().Add(time.Duration(4-i) * time.Hour),
			}
			require.NoError(t, uow.ChatSessionRepository().Create(ctx, s))
			assert.NotZero(t, s.Sequence)
			created = append(created, s.Id)
		}

		sessions, err := uow.ChatSessionRepository().FindAllByUser(ctx, listUser)
		require.NoError(t, err)
		require.Len(t, sessions, 4)
		for i, s := range sessions {
			assert.Equal(t, created[i], s.Id)
		}
	})

	t.Run("message for a missing session is not found", func(t *testing.T) {
		err := uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: uuid.New(),
			UserId:        userId,
			Role:          constant.ChatMessageRoleUser,
			Content:       "orphan",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("foreign user cannot see the session", func(t *testing.T) {
		found, err := uow.ChatSessionRepository().FindOwned(ctx, uuid.New(), session.Id)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("quota consumption stops at the limit", func(t *testing.T) {
		require.NoError(t, uow.QuotaRepository().Upsert(ctx, &entity.Quota{
			UserId:      userId,
			Plan:        "custom",
			Status:      entity.QuotaStatusActive,
			MaxMessages: 5,
			PeriodStart: time.Now(),
			PeriodEnd:   time.Now().AddDate(0, 1, 0),
		}))

		var granted int64
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				q, err := uowFactory.NewUnitOfWork(ctx).QuotaRepository().ConsumeOne(ctx, userId)
				if err == nil && q != nil {
					atomic.AddInt64(&granted, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(5), granted)
		q, err := uow.QuotaRepository().FindByUserId(ctx, userId)
		require.NoError(t, err)
		assert.Equal(t, 5, q.MessagesUsed)
	})

	t.Run("deleting a session cascades", func(t *testing.T) {
		tx := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, tx.Begin(ctx))
		require.NoError(t, tx.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id))
		require.NoError(t, tx.ChatSessionRepository().Delete(ctx, session.Id))
		require.NoError(t, tx.Commit())

		remaining, err := uow.ChatMessageRepository().FindAllBySession(ctx, session.Id)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}
