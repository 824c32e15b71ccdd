package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OutboxMessage struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Topic       string         `gorm:"type:varchar(100);not null"`
	AggregateId string         `gorm:"type:varchar(64);not null;index"`
	Payload     datatypes.JSON `gorm:"not null"`
	Status      string         `gorm:"type:varchar(20);not null;index:idx_outbox_pending,priority:1"`
	Attempts    int            `gorm:"not null;default:0"`
	LastError   string         `gorm:"type:text"`
	AvailableAt time.Time      `gorm:"not null;index:idx_outbox_pending,priority:2"`
	CreatedAt   time.Time      `gorm:"not null"`
	SentAt      *time.Time
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
