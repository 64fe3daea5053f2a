package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/dto"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/pkg/events"
	"mentor-ai-be/pkg/inflight"
	"mentor-ai-be/pkg/llm"

	"github.com/google/uuid"
)

// ExchangeState tracks one send-message exchange. A failed completion leaves
// the exchange at UserPersisted: the user message and the consumed unit stay.
type ExchangeState string

const (
	ExchangeIdle               ExchangeState = "IDLE"
	ExchangeUserPersisted      ExchangeState = "USER_PERSISTED"
	ExchangeAwaitingCompletion ExchangeState = "AWAITING_COMPLETION"
	ExchangeAssistantPersisted ExchangeState = "ASSISTANT_PERSISTED"
	ExchangeFailed             ExchangeState = "FAILED"
)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	SendChat(ctx context.Context, userId, sessionId uuid.UUID, content string) (*dto.SendChatResponse, error)
}

type ChatbotOptions struct {
	HistoryWindow     int
	CompletionTimeout time.Duration
}

type chatbotService struct {
	sessions  ISessionService
	messages  IMessageService
	quota     IQuotaService
	gateway   llm.CompletionGateway
	guard     inflight.Guard
	publisher IPublisherService
	logger    logger.ILogger
	opts      ChatbotOptions
}

func NewChatbotService(
	sessions ISessionService,
	messages IMessageService,
	quota IQuotaService,
	gateway llm.CompletionGateway,
	guard inflight.Guard,
	publisher IPublisherService,
	logger logger.ILogger,
	opts ChatbotOptions,
) IChatbotService {
	if opts.HistoryWindow < 0 {
		opts.HistoryWindow = 0
	}
	if opts.CompletionTimeout <= 0 {
		opts.CompletionTimeout = 60 * time.Second
	}
	return &chatbotService{
		sessions:  sessions,
		messages:  messages,
		quota:     quota,
		gateway:   gateway,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// SendChat runs one exchange: consume a unit, store the user message, ask the
// model and store its reply.
func (cs *chatbotService) SendChat(ctx context.Context, userId, sessionId uuid.UUID, content string) (*dto.SendChatResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Validation("message content is required")
	}
	if utf8.RuneCountInString(content) > constant.MaxMessageLength {
		return nil, apperror.Validation("message content is too long")
	}

	if _, err := cs.sessions.Get(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	release, err := cs.guard.Acquire(ctx, sessionLockKey(sessionId))
	if err != nil {
		if errors.Is(err, inflight.ErrHeld) {
			return nil, apperror.Conflict("another message in this session is still being answered")
		}
		return nil, apperror.Persistence("failed to lock chat session", err)
	}
	defer release()

	// Re-read under the lock: a delete may have won the race for it.
	session, err := cs.sessions.Get(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	history, err := cs.messages.Recent(ctx, userId, sessionId, cs.opts.HistoryWindow)
	if err != nil {
		return nil, err
	}

	// From here on a client disconnect must not strand consumed quota without
	// the matching message rows.
	workCtx := context.WithoutCancel(ctx)
	logDetails := map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId.String(),
	}

	allowance, err := cs.quota.TryConsume(workCtx, userId)
	if err != nil {
		if errors.Is(err, apperror.ErrQuotaExceeded) {
			cs.publish(workCtx, constant.EventQuotaExhausted, logDetails)
		}
		return nil, err
	}

	userMessage, err := cs.messages.Append(workCtx, AppendMessageInput{
		SessionId: sessionId,
		UserId:    userId,
		Role:      constant.ChatMessageRoleUser,
		Content:   content,
	})
	if err != nil {
		cs.logger.Error("CHATBOT", "Failed to store user message after consuming quota", withError(logDetails, err))
		return nil, err
	}

	conversation := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		conversation = append(conversation, llm.Message{Role: m.Role, Content: m.Content})
	}
	conversation = append(conversation, llm.Message{Role: userMessage.Role, Content: userMessage.Content})

	state := ExchangeAwaitingCompletion
	genCtx, cancel := context.WithTimeout(workCtx, cs.opts.CompletionTimeout)
	start := time.Now()
	completion, err := cs.gateway.Generate(genCtx, session.SystemPrompt, conversation)
	cancel()
	if err != nil {
		state = ExchangeFailed
		failed := withError(logDetails, err)
		failed["state"] = string(state)
		failed["resume_state"] = string(ExchangeUserPersisted)
		failed["duration_ms"] = time.Since(start).Milliseconds()
		cs.logger.Warn("CHATBOT", "Completion failed, user message kept", failed)

		cs.publish(workCtx, constant.EventExchangeFailed, map[string]interface{}{
			"user_id":         userId.String(),
			"session_id":      sessionId.String(),
			"user_message_id": userMessage.Id.String(),
			"error":           err.Error(),
		})
		return nil, apperror.Upstream("the assistant is unavailable, please try again", err)
	}

	tokens := completion.TokensUsed
	assistantMessage, err := cs.messages.Append(workCtx, AppendMessageInput{
		SessionId:  sessionId,
		UserId:     userId,
		Role:       constant.ChatMessageRoleAssistant,
		Content:    completion.Content,
		TokensUsed: &tokens,
		Metadata: map[string]interface{}{
			"model":         completion.Model,
			"finish_reason": completion.FinishReason,
		},
	})
	if err != nil {
		failed := withError(logDetails, err)
		failed["state"] = string(state)
		failed["user_message_id"] = userMessage.Id.String()
		cs.logger.Error("CHATBOT", "Failed to store assistant reply", failed)
		return nil, err
	}
	state = ExchangeAssistantPersisted

	cs.publish(workCtx, constant.EventExchangeCompleted, map[string]interface{}{
		"user_id":              userId.String(),
		"session_id":           sessionId.String(),
		"user_message_id":      userMessage.Id.String(),
		"assistant_message_id": assistantMessage.Id.String(),
		"model":                completion.Model,
		"tokens_used":          completion.TokensUsed,
		"remaining":            allowance.Remaining,
		"duration_ms":          time.Since(start).Milliseconds(),
	})
	cs.logger.Debug("CHATBOT", "Exchange completed", map[string]interface{}{
		"session_id": sessionId.String(),
		"state":      string(state),
	})

	return &dto.SendChatResponse{
		ChatSessionId:    sessionId,
		AssistantMessage: dto.NewChatMessageResponse(assistantMessage),
		Allowance:        allowance,
	}, nil
}

func (cs *chatbotService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		cs.logger.Warn("CHATBOT", "Failed to publish conversation event", map[string]interface{}{
			"event_type": eventType,
			"error":      err,
		})
	}
}

func withError(details map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["error"] = err
	return out
}
