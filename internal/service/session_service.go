package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/entity"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/internal/repository/unitofwork"
	"mentor-ai-be/pkg/inflight"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, userId uuid.UUID, title, systemPrompt string) (*entity.ChatSession, error)
	List(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error)
	Get(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error)
	Delete(ctx context.Context, userId, sessionId uuid.UUID) error
	Count(ctx context.Context, userId uuid.UUID) (int64, error)
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	guard      inflight.Guard
	logger     logger.ILogger
}

func NewSessionService(uowFactory unitofwork.RepositoryFactory, guard inflight.Guard, logger logger.ILogger) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		guard:      guard,
		logger:     logger,
	}
}

// sessionLockKey is shared by exchanges and deletes so the two never overlap.
func sessionLockKey(sessionId uuid.UUID) string {
	return "session:" + sessionId.String()
}

func (s *sessionService) Create(ctx context.Context, userId uuid.UUID, title, systemPrompt string) (*entity.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > constant.MaxSessionTitleLength {
		return nil, apperror.Validation("title is too long")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = constant.DefaultSystemPrompt
	}

	session := &entity.ChatSession{
		Id:           uuid.New(),
		UserId:       userId,
		Title:        title,
		SystemPrompt: systemPrompt,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Persistence("failed to create chat session", err)
	}

	s.logger.Info("SESSION", "Chat session created", map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": session.Id.String(),
	})
	return session, nil
}

func (s *sessionService) List(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAllByUser(ctx, userId)
	if err != nil {
		return nil, apperror.Persistence("failed to list chat sessions", err)
	}
	return sessions, nil
}

func (s *sessionService) Get(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOwned(ctx, userId, sessionId)
	if err != nil {
		return nil, apperror.Persistence("failed to load chat session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found or access denied")
	}
	return session, nil
}

func (s *sessionService) Delete(ctx context.Context, userId, sessionId uuid.UUID) error {
	if _, err := s.Get(ctx, userId, sessionId); err != nil {
		return err
	}

	release, err := s.guard.Acquire(ctx, sessionLockKey(sessionId))
	if err != nil {
		if errors.Is(err, inflight.ErrHeld) {
			return apperror.Conflict("a message is being processed in this session")
		}
		return apperror.Persistence("failed to lock chat session", err)
	}
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Persistence("failed to begin transaction", err)
	}
	defer uow.Rollback()

	// The session may have gone while we waited for the lock.
	session, err := uow.ChatSessionRepository().FindOwned(ctx, userId, sessionId)
	if err != nil {
		return apperror.Persistence("failed to load chat session", err)
	}
	if session == nil {
		return apperror.NotFound("session not found or access denied")
	}

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return apperror.Persistence("failed to delete chat messages", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return apperror.Persistence("failed to delete chat session", err)
	}
	if err := uow.Commit(); err != nil {
		return apperror.Persistence("failed to commit session delete", err)
	}

	s.logger.Info("SESSION", "Chat session deleted", map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId.String(),
	})
	return nil
}

func (s *sessionService) Count(ctx context.Context, userId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatSessionRepository().CountByUser(ctx, userId)
	if err != nil {
		return 0, apperror.Persistence("failed to count chat sessions", err)
	}
	return count, nil
}
