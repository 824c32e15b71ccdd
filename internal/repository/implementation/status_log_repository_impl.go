package implementation

import (
	"context"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/mapper"
	"booking-order-be/internal/model"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/specification"

	"gorm.io/gorm"
)

type StatusLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrderMapper
}

func NewStatusLogRepository(db *gorm.DB) contract.StatusLogRepository {
	return &StatusLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrderMapper(),
	}
}

func (r *StatusLogRepositoryImpl) Append(ctx context.Context, logs ...*entity.StatusLog) error {
	if len(logs) == 0 {
		return nil
	}
	models := make([]*model.OrderStatusLog, 0, len(logs))
	for _, l := range logs {
		models = append(models, r.mapper.StatusLogToModel(l))
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *StatusLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StatusLog, error) {
	var models []*model.OrderStatusLog
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.OrderStatusLog{}), specs...)
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	logs := make([]*entity.StatusLog, 0, len(models))
	for _, m := range models {
		logs = append(logs, r.mapper.StatusLogToEntity(m))
	}
	return logs, nil
}
