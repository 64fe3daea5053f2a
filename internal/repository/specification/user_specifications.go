package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type WithStatus struct {
	Status string
}

func (s WithStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// HasRemainingMessages matches quota rows that can absorb one more message.
type HasRemainingMessages struct{}

func (s HasRemainingMessages) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("messages_used < max_messages")
}
