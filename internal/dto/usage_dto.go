// DTOs for the message allowance and usage summary
package dto

import (
	"time"

	"github.com/google/uuid"
)

type AllowanceResponse struct {
	Plan         string     `json:"plan"`
	Status       string     `json:"status"`
	MaxMessages  int        `json:"max_messages"`
	MessagesUsed int        `json:"messages_used"`
	Remaining    int        `json:"remaining"`
	CanSend      bool       `json:"can_send"`
	PeriodStart  *time.Time `json:"period_start,omitempty"`
	PeriodEnd    *time.Time `json:"period_end,omitempty"`
}

// UsageSummaryResponse is returned by GET /api/usage
type UsageSummaryResponse struct {
	UserId           uuid.UUID         `json:"user_id"`
	Allowance        AllowanceResponse `json:"allowance"`
	SessionCount     int64             `json:"session_count"`
	UserMessageCount int64             `json:"user_message_count"`
}

type PlanResponse struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	MaxMessages int    `json:"max_messages"`
}
