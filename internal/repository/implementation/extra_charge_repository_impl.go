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

type ExtraChargeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrderMapper
}

func NewExtraChargeRepository(db *gorm.DB) contract.ExtraChargeRepository {
	return &ExtraChargeRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrderMapper(),
	}
}

func (r *ExtraChargeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	return specification.ApplyAll(db, specs...)
}

func (r *ExtraChargeRepositoryImpl) CreateCharges(ctx context.Context, charges []*entity.ExtraCharge) error {
	if len(charges) == 0 {
		return nil
	}
	models := make([]*model.ExtraCharge, 0, len(charges))
	for _, c := range charges {
		models = append(models, r.mapper.ChargeToModel(c))
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *ExtraChargeRepositoryImpl) CreateLinks(ctx context.Context, links []*entity.ExtraChargeLink) error {
	if len(links) == 0 {
		return nil
	}
	models := make([]*model.ExtraChargeLink, 0, len(links))
	for _, l := range links {
		models = append(models, r.mapper.LinkToModel(l))
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *ExtraChargeRepositoryImpl) FindCharges(ctx context.Context, specs ...specification.Specification) ([]*entity.ExtraCharge, error) {
	var models []*model.ExtraCharge
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ExtraCharge{}), specs...)
	if err := query.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	charges := make([]*entity.ExtraCharge, 0, len(models))
	for _, m := range models {
		charges = append(charges, r.mapper.ChargeToEntity(m))
	}
	return charges, nil
}

func (r *ExtraChargeRepositoryImpl) FindLinks(ctx context.Context, specs ...specification.Specification) ([]*entity.ExtraChargeLink, error) {
	var models []*model.ExtraChargeLink
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ExtraChargeLink{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	links := make([]*entity.ExtraChargeLink, 0, len(models))
	for _, m := range models {
		links = append(links, r.mapper.LinkToEntity(m))
	}
	return links, nil
}
