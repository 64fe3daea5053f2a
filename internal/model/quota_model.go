package model

import (
	"time"

	"github.com/google/uuid"
)

type UserQuota struct {
	UserId       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Plan         string    `gorm:"type:varchar(50);not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:'inactive'"`
	MaxMessages  int       `gorm:"not null;default:0;check:chk_user_quotas_max,max_messages >= 0"`
	MessagesUsed int       `gorm:"not null;default:0;check:chk_user_quotas_used,messages_used >= 0"`
	PeriodStart  time.Time `gorm:"not null"`
	PeriodEnd    time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserQuota) TableName() string {
	return "user_quotas"
}
