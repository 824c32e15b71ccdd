package implementation

import (
	"context"
	"errors"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/mapper"
	"booking-order-be/internal/model"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RefundMapper
}

func NewRefundRepository(db *gorm.DB) contract.RefundRepository {
	return &RefundRepositoryImpl{
		db:     db,
		mapper: mapper.NewRefundMapper(),
	}
}

func (r *RefundRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	return specification.ApplyAll(db, specs...)
}

func (r *RefundRepositoryImpl) Create(ctx context.Context, apply *entity.RefundApply) error {
	m := r.mapper.ApplyToModel(apply)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	apply.CreatedAt = m.CreatedAt
	apply.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *RefundRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundApply, error) {
	var m model.RefundApply
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ApplyToEntity(&m), nil
}

func (r *RefundRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundApply, error) {
	var models []*model.RefundApply
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	applies := make([]*entity.RefundApply, 0, len(models))
	for _, m := range models {
		applies = append(applies, r.mapper.ApplyToEntity(m))
	}
	return applies, nil
}

func (r *RefundRepositoryImpl) UpdateStatus(ctx context.Context, upd contract.ApplyStatusUpdate) (int64, error) {
	values := map[string]interface{}{
		"apply_status": string(upd.To),
	}
	if upd.ReviewerId != nil {
		values["reviewer_id"] = *upd.ReviewerId
	}
	if upd.ReviewedAt != nil {
		values["reviewed_at"] = *upd.ReviewedAt
	}
	if upd.SellerRemark != "" {
		values["seller_remark"] = upd.SellerRemark
	}
	if upd.OutRequestNo != "" {
		values["out_request_no"] = upd.OutRequestNo
	}
	if upd.RefundAmount != nil {
		values["refund_amount"] = *upd.RefundAmount
	}
	if upd.RefundInitiatedAt != nil {
		values["refund_initiated_at"] = *upd.RefundInitiatedAt
	}

	result := r.db.WithContext(ctx).Model(&model.RefundApply{}).
		Where("id = ? AND apply_status = ?", upd.Id, string(upd.From)).
		Updates(values)
	return result.RowsAffected, result.Error
}

func (r *RefundRepositoryImpl) MarkRefundCompleted(ctx context.Context, applyId uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.RefundApply{}).
		Where("id = ? AND apply_status = ? AND refund_completed_at IS NULL", applyId, string(entity.ApplyStatusApproved)).
		Update("refund_completed_at", at)
	return result.RowsAffected, result.Error
}

func (r *RefundRepositoryImpl) CreateApplyItems(ctx context.Context, applyId uuid.UUID, itemIds []uuid.UUID) error {
	if len(itemIds) == 0 {
		return nil
	}
	rows := make([]*model.RefundApplyItem, 0, len(itemIds))
	for _, id := range itemIds {
		rows = append(rows, &model.RefundApplyItem{RefundApplyId: applyId, OrderItemId: id})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *RefundRepositoryImpl) FindItemIds(ctx context.Context, applyId uuid.UUID) ([]uuid.UUID, error) {
	var rows []*model.RefundApplyItem
	if err := r.db.WithContext(ctx).Where("refund_apply_id = ?", applyId).Order("created_at ASC, order_item_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.OrderItemId)
	}
	return ids, nil
}

func (r *RefundRepositoryImpl) FactExists(ctx context.Context, applyId, orderItemId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ItemRefundFact{}).
		Where("refund_apply_id = ? AND order_item_id = ?", applyId, orderItemId).
		Count(&count).Error
	return count > 0, err
}

func (r *RefundRepositoryImpl) CreateFact(ctx context.Context, fact *entity.ItemRefundFact) error {
	return r.db.WithContext(ctx).Create(r.mapper.FactToModel(fact)).Error
}

func (r *RefundRepositoryImpl) FindFacts(ctx context.Context, specs ...specification.Specification) ([]*entity.ItemRefundFact, error) {
	var models []*model.ItemRefundFact
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ItemRefundFact{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	facts := make([]*entity.ItemRefundFact, 0, len(models))
	for _, m := range models {
		facts = append(facts, r.mapper.FactToEntity(m))
	}
	return facts, nil
}

func (r *RefundRepositoryImpl) MarkFactsCompleted(ctx context.Context, applyId uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.ItemRefundFact{}).
		Where("refund_apply_id = ? AND refund_status <> ?", applyId, string(entity.FactStatusCompleted)).
		Update("refund_status", string(entity.FactStatusCompleted))
	return result.RowsAffected, result.Error
}

func (r *RefundRepositoryImpl) ExtraChargeExists(ctx context.Context, applyId, extraChargeId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RefundExtraCharge{}).
		Where("refund_apply_id = ? AND extra_charge_id = ?", applyId, extraChargeId).
		Count(&count).Error
	return count > 0, err
}

func (r *RefundRepositoryImpl) CreateExtraCharge(ctx context.Context, charge *entity.RefundExtraCharge) error {
	return r.db.WithContext(ctx).Create(r.mapper.ExtraChargeToModel(charge)).Error
}

func (r *RefundRepositoryImpl) FindExtraCharges(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundExtraCharge, error) {
	var models []*model.RefundExtraCharge
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.RefundExtraCharge{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	charges := make([]*entity.RefundExtraCharge, 0, len(models))
	for _, m := range models {
		charges = append(charges, r.mapper.ExtraChargeToEntity(m))
	}
	return charges, nil
}
