package implementation

import (
	"context"
	"time"

	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/mapper"
	"mentor-ai-be/internal/model"
	"mentor-ai-be/internal/repository/contract"
	"mentor-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	m := r.mapper.ChatMessageToModel(message)
	// Sequence and created_at come from the database so that appends from
	// different replicas keep insertion order regardless of their clocks.
	m.Sequence = 0
	m.CreatedAt = time.Time{}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return classifyWriteError(err, "chat session not found")
	}
	*message = *r.mapper.ChatMessageToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.CreationOrder{},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatMessagesToEntities(models), nil
}

func (r *ChatMessageRepositoryImpl) FindLatestBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	if limit <= 0 {
		return []*entity.ChatMessage{}, nil
	}

	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.CreationOrder{Desc: true},
		specification.Limit{N: limit},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	// newest-first from the query, callers want conversation order
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return r.mapper.ChatMessagesToEntities(models), nil
}

func (r *ChatMessageRepositoryImpl) CountByUserAndRole(ctx context.Context, userId uuid.UUID, role string) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}),
		specification.UserOwnedBy{UserID: userId},
		specification.ByRole{Role: role},
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).Delete(&model.ChatMessage{}).Error
}
