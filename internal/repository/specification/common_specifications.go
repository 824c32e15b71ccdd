package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByOrderNo filters rows belonging to one order
type ByOrderNo struct {
	OrderNo string
}

func (s ByOrderNo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("order_no = ?", s.OrderNo)
}

// ForUpdate takes row locks on the selected rows (SELECT ... FOR UPDATE).
// Dialects without row locks (sqlite) drop the clause.
type ForUpdate struct {
	SkipLocked bool
}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	locking := clause.Locking{Strength: "UPDATE"}
	if s.SkipLocked {
		locking.Options = "SKIP LOCKED"
	}
	return db.Clauses(locking)
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

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}
