package entity

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
)

// OutboxMessage is an event written in the same transaction as the state change it describes.
type OutboxMessage struct {
	Id          uuid.UUID
	Topic       string
	AggregateId string
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	LastError   string
	AvailableAt time.Time
	CreatedAt   time.Time
	SentAt      *time.Time
}
