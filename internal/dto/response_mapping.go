package dto

import "mentor-ai-be/internal/entity"

func NewSessionResponse(s *entity.ChatSession) *SessionResponse {
	if s == nil {
		return nil
	}
	return &SessionResponse{
		Id:           s.Id,
		Title:        s.Title,
		SystemPrompt: s.SystemPrompt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func NewSessionResponses(sessions []*entity.ChatSession) []*SessionResponse {
	res := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, NewSessionResponse(s))
	}
	return res
}

func NewChatMessageResponse(m *entity.ChatMessage) *ChatMessageResponse {
	if m == nil {
		return nil
	}
	return &ChatMessageResponse{
		Id:            m.Id,
		ChatSessionId: m.ChatSessionId,
		Role:          m.Role,
		Content:       m.Content,
		Sequence:      m.Sequence,
		TokensUsed:    m.TokensUsed,
		Metadata:      m.Metadata,
		CreatedAt:     m.CreatedAt,
	}
}

func NewChatMessageResponses(messages []*entity.ChatMessage) []*ChatMessageResponse {
	res := make([]*ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, NewChatMessageResponse(m))
	}
	return res
}

// NewAllowanceResponse describes q; a nil quota is an inactive, empty allowance.
func NewAllowanceResponse(q *entity.Quota) *AllowanceResponse {
	if q == nil {
		return &AllowanceResponse{Status: string(entity.QuotaStatusInactive)}
	}
	periodStart, periodEnd := q.PeriodStart, q.PeriodEnd
	remaining := q.Remaining()
	return &AllowanceResponse{
		Plan:         q.Plan,
		Status:       string(q.Status),
		MaxMessages:  q.MaxMessages,
		MessagesUsed: q.MessagesUsed,
		Remaining:    remaining,
		CanSend:      remaining > 0,
		PeriodStart:  &periodStart,
		PeriodEnd:    &periodEnd,
	}
}
