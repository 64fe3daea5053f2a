package service

import (
	"context"
	"strings"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// AppendMessageInput is one message to store. TokensUsed and Metadata are
// only set for assistant replies.
type AppendMessageInput struct {
	SessionId  uuid.UUID
	UserId     uuid.UUID
	Role       string
	Content    string
	TokensUsed *int
	Metadata   map[string]interface{}
}

type IMessageService interface {
	Append(ctx context.Context, input AppendMessageInput) (*entity.ChatMessage, error)
	List(ctx context.Context, userId, sessionId uuid.UUID) ([]*entity.ChatMessage, error)
	Recent(ctx context.Context, userId, sessionId uuid.UUID, n int) ([]*entity.ChatMessage, error)
	CountUserMessages(ctx context.Context, userId uuid.UUID) (int64, error)
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMessageService(uowFactory unitofwork.RepositoryFactory) IMessageService {
	return &messageService{uowFactory: uowFactory}
}

func (s *messageService) Append(ctx context.Context, input AppendMessageInput) (*entity.ChatMessage, error) {
	if input.Role != constant.ChatMessageRoleUser && input.Role != constant.ChatMessageRoleAssistant {
		return nil, apperror.Validation("unsupported message role")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperror.Validation("content is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence("failed to begin transaction", err)
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOwned(ctx, input.UserId, input.SessionId)
	if err != nil {
		return nil, apperror.Persistence("failed to load chat session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found or access denied")
	}

	message := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: input.SessionId,
		UserId:        input.UserId,
		Role:          input.Role,
		Content:       input.Content,
		TokensUsed:    input.TokensUsed,
		Metadata:      input.Metadata,
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return nil, apperror.Persistence("failed to append chat message", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence("failed to commit chat message", err)
	}
	return message, nil
}

func (s *messageService) List(ctx context.Context, userId, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	return s.Recent(ctx, userId, sessionId, -1)
}

// Recent returns the last n messages in conversation order; n < 0 means all.
func (s *messageService) Recent(ctx context.Context, userId, sessionId uuid.UUID, n int) ([]*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOwned(ctx, userId, sessionId)
	if err != nil {
		return nil, apperror.Persistence("failed to load chat session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found or access denied")
	}

	var messages []*entity.ChatMessage
	if n < 0 {
		messages, err = uow.ChatMessageRepository().FindAllBySession(ctx, sessionId)
	} else {
		messages, err = uow.ChatMessageRepository().FindLatestBySession(ctx, sessionId, n)
	}
	if err != nil {
		return nil, apperror.Persistence("failed to load chat messages", err)
	}
	return messages, nil
}

func (s *messageService) CountUserMessages(ctx context.Context, userId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatMessageRepository().CountByUserAndRole(ctx, userId, constant.ChatMessageRoleUser)
	if err != nil {
		return 0, apperror.Persistence("failed to count chat messages", err)
	}
	return count, nil
}
