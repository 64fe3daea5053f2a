package entity

import (
	"time"

	"github.com/google/uuid"
)

type QuotaStatus string

const (
	QuotaStatusActive   QuotaStatus = "active"
	QuotaStatusInactive QuotaStatus = "inactive"
	QuotaStatusCanceled QuotaStatus = "canceled"
)

type Quota struct {
	UserId       uuid.UUID
	Plan         string
	Status       QuotaStatus
	MaxMessages  int
	MessagesUsed int
	PeriodStart  time.Time
	PeriodEnd    time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (q *Quota) Remaining() int {
	if q == nil || q.Status != QuotaStatusActive {
		return 0
	}
	if r := q.MaxMessages - q.MessagesUsed; r > 0 {
		return r
	}
	return 0
}
