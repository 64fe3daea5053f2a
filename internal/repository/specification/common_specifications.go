package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Limit caps the number of rows returned
type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.N)
}

// CreationOrder orders rows by their (created_at, sequence) key. The sequence
// breaks ties between rows stamped in the same clock tick.
type CreationOrder struct {
	Desc bool
}

func (s CreationOrder) Apply(db *gorm.DB) *gorm.DB {
	db = OrderBy{Field: "created_at", Desc: s.Desc}.Apply(db)
	return OrderBy{Field: "sequence", Desc: s.Desc}.Apply(db)
}
