package mapper

import (
	"booking-order-be/internal/entity"
	"booking-order-be/internal/model"
)

type OutboxMapper struct{}

func NewOutboxMapper() *OutboxMapper {
	return &OutboxMapper{}
}

func (m *OutboxMapper) ToEntity(o *model.OutboxMessage) *entity.OutboxMessage {
	if o == nil {
		return nil
	}
	return &entity.OutboxMessage{
		Id:          o.Id,
		Topic:       o.Topic,
		AggregateId: o.AggregateId,
		Payload:     []byte(o.Payload),
		Status:      entity.OutboxStatus(o.Status),
		Attempts:    o.Attempts,
		LastError:   o.LastError,
		AvailableAt: o.AvailableAt,
		CreatedAt:   o.CreatedAt,
		SentAt:      o.SentAt,
	}
}

func (m *OutboxMapper) ToModel(o *entity.OutboxMessage) *model.OutboxMessage {
	if o == nil {
		return nil
	}
	return &model.OutboxMessage{
		Id:          o.Id,
		Topic:       o.Topic,
		AggregateId: o.AggregateId,
		Payload:     o.Payload,
		Status:      string(o.Status),
		Attempts:    o.Attempts,
		LastError:   o.LastError,
		AvailableAt: o.AvailableAt,
		CreatedAt:   o.CreatedAt,
		SentAt:      o.SentAt,
	}
}
