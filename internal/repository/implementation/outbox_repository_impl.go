package implementation

import (
	"context"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/mapper"
	"booking-order-be/internal/model"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OutboxMapper
}

func NewOutboxRepository(db *gorm.DB) contract.OutboxRepository {
	return &OutboxRepositoryImpl{
		db:     db,
		mapper: mapper.NewOutboxMapper(),
	}
}

func (r *OutboxRepositoryImpl) Create(ctx context.Context, msgs ...*entity.OutboxMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	models := make([]*model.OutboxMessage, 0, len(msgs))
	for _, m := range msgs {
		models = append(models, r.mapper.ToModel(m))
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *OutboxRepositoryImpl) ClaimPending(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxMessage, error) {
	var models []*model.OutboxMessage
	query := specification.ForUpdate{SkipLocked: true}.Apply(r.db.WithContext(ctx))
	err := query.
		Where("status = ? AND available_at <= ?", string(entity.OutboxStatusPending), now).
		Order("available_at ASC, created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	msgs := make([]*entity.OutboxMessage, 0, len(models))
	for _, m := range models {
		msgs = append(msgs, r.mapper.ToEntity(m))
	}
	return msgs, nil
}

func (r *OutboxRepositoryImpl) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(entity.OutboxStatusSent),
			"sent_at":    at,
			"last_error": "",
		}).Error
}

func (r *OutboxRepositoryImpl) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, availableAt time.Time, lastErr string) error {
	return r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":     attempts,
			"available_at": availableAt,
			"last_error":   lastErr,
		}).Error
}

func (r *OutboxRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.OutboxMessage, error) {
	var models []*model.OutboxMessage
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.OutboxMessage{}), specs...)
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]*entity.OutboxMessage, 0, len(models))
	for _, m := range models {
		msgs = append(msgs, r.mapper.ToEntity(m))
	}
	return msgs, nil
}
