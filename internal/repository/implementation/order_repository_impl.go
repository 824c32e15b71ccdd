package implementation

import (
	"context"
	"errors"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/mapper"
	"booking-order-be/internal/model"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrderMapper
}

func NewOrderRepository(db *gorm.DB) contract.OrderRepository {
	return &OrderRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrderMapper(),
	}
}

func (r *OrderRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	return specification.ApplyAll(db, specs...)
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *entity.Order) error {
	m := r.mapper.ToModel(order)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	order.CreatedAt = m.CreatedAt
	order.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *OrderRepositoryImpl) CreateItems(ctx context.Context, items []*entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	models := make([]*model.OrderItem, 0, len(items))
	for _, item := range items {
		models = append(models, r.mapper.ItemToModel(item))
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *OrderRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error) {
	var m model.Order
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *OrderRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error) {
	var models []*model.Order
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	orders := make([]*entity.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, r.mapper.ToEntity(m))
	}
	return orders, nil
}

func (r *OrderRepositoryImpl) FindItems(ctx context.Context, specs ...specification.Specification) ([]*entity.OrderItem, error) {
	var models []*model.OrderItem
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.OrderItem{}), specs...)
	if err := query.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ItemsToEntities(models), nil
}

func (r *OrderRepositoryImpl) UpdateStatus(ctx context.Context, upd contract.OrderStatusUpdate) (int64, error) {
	values := map[string]interface{}{
		"order_status": string(upd.To),
	}
	if upd.PaymentStatus != "" {
		values["payment_status"] = string(upd.PaymentStatus)
	}
	if upd.Confirmed != nil {
		values["confirmed"] = *upd.Confirmed
	}
	if upd.RefundApplyId != nil {
		values["refund_apply_id"] = *upd.RefundApplyId
	}
	if upd.OutTradeNo != "" {
		values["out_trade_no"] = upd.OutTradeNo
	}
	if upd.PaymentType != "" {
		values["payment_type"] = upd.PaymentType
	}
	if upd.PaidAt != nil {
		values["paid_at"] = *upd.PaidAt
	}
	if upd.ConfirmedAt != nil {
		values["confirmed_at"] = *upd.ConfirmedAt
	}
	if upd.CancelledAt != nil {
		values["cancelled_at"] = *upd.CancelledAt
	}
	if upd.CompletedAt != nil {
		values["completed_at"] = *upd.CompletedAt
	}

	from := make([]string, 0, len(upd.From))
	for _, s := range upd.From {
		from = append(from, string(s))
	}

	query := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_no = ? AND order_status IN ?", upd.OrderNo, from)
	if upd.RequireUnconfirmed {
		query = query.Where("confirmed = ?", false)
	}
	if upd.RequirePaymentStatus != "" {
		query = query.Where("payment_status = ?", string(upd.RequirePaymentStatus))
	}

	result := query.Updates(values)
	return result.RowsAffected, result.Error
}

func (r *OrderRepositoryImpl) UpdateItemRefundStatus(ctx context.Context, orderNo string, itemIds []uuid.UUID, from []entity.ItemRefundStatus, to entity.ItemRefundStatus) (int64, error) {
	if len(itemIds) == 0 {
		return 0, nil
	}
	fromValues := make([]string, 0, len(from))
	for _, s := range from {
		fromValues = append(fromValues, string(s))
	}
	result := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("order_no = ? AND id IN ? AND refund_status IN ?", orderNo, itemIds, fromValues).
		Update("refund_status", string(to))
	return result.RowsAffected, result.Error
}
