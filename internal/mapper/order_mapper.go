package mapper

import (
	"booking-order-be/internal/entity"
	"booking-order-be/internal/model"
)

type OrderMapper struct{}

func NewOrderMapper() *OrderMapper {
	return &OrderMapper{}
}

func (m *OrderMapper) ToEntity(o *model.Order) *entity.Order {
	if o == nil {
		return nil
	}
	return &entity.Order{
		OrderNo:        o.OrderNo,
		BuyerId:        o.BuyerId,
		SellerId:       o.SellerId,
		SellerType:     entity.SellerType(o.SellerType),
		VenueId:        o.VenueId,
		OrderStatus:    entity.OrderStatus(o.OrderStatus),
		PaymentStatus:  entity.PaymentStatus(o.PaymentStatus),
		PaymentType:    o.PaymentType,
		OutTradeNo:     o.OutTradeNo,
		BaseAmount:     o.BaseAmount,
		ExtraAmount:    o.ExtraAmount,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		PayAmount:      o.PayAmount,
		RefundApplyId:  o.RefundApplyId,
		Confirmed:      o.Confirmed,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		PaidAt:         o.PaidAt,
		ConfirmedAt:    o.ConfirmedAt,
		CancelledAt:    o.CancelledAt,
		CompletedAt:    o.CompletedAt,
	}
}

func (m *OrderMapper) ToModel(o *entity.Order) *model.Order {
	if o == nil {
		return nil
	}
	return &model.Order{
		OrderNo:        o.OrderNo,
		BuyerId:        o.BuyerId,
		SellerId:       o.SellerId,
		SellerType:     string(o.SellerType),
		VenueId:        o.VenueId,
		OrderStatus:    string(o.OrderStatus),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentType:    o.PaymentType,
		OutTradeNo:     o.OutTradeNo,
		BaseAmount:     o.BaseAmount,
		ExtraAmount:    o.ExtraAmount,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		PayAmount:      o.PayAmount,
		RefundApplyId:  o.RefundApplyId,
		Confirmed:      o.Confirmed,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		PaidAt:         o.PaidAt,
		ConfirmedAt:    o.ConfirmedAt,
		CancelledAt:    o.CancelledAt,
		CompletedAt:    o.CompletedAt,
	}
}

func (m *OrderMapper) ItemToEntity(i *model.OrderItem) *entity.OrderItem {
	if i == nil {
		return nil
	}
	return &entity.OrderItem{
		Id:           i.Id,
		OrderNo:      i.OrderNo,
		ResourceId:   i.ResourceId,
		ResourceName: i.ResourceName,
		SlotRecordId: i.SlotRecordId,
		BookingDate:  i.BookingDate,
		StartTime:    i.StartTime,
		EndTime:      i.EndTime,
		UnitPrice:    i.UnitPrice,
		ExtraAmount:  i.ExtraAmount,
		Subtotal:     i.Subtotal,
		RefundStatus: entity.ItemRefundStatus(i.RefundStatus),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (m *OrderMapper) ItemToModel(i *entity.OrderItem) *model.OrderItem {
	if i == nil {
		return nil
	}
	return &model.OrderItem{
		Id:           i.Id,
		OrderNo:      i.OrderNo,
		ResourceId:   i.ResourceId,
		ResourceName: i.ResourceName,
		SlotRecordId: i.SlotRecordId,
		BookingDate:  i.BookingDate,
		StartTime:    i.StartTime,
		EndTime:      i.EndTime,
		UnitPrice:    i.UnitPrice,
		ExtraAmount:  i.ExtraAmount,
		Subtotal:     i.Subtotal,
		RefundStatus: string(i.RefundStatus),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (m *OrderMapper) ItemsToEntities(items []*model.OrderItem) []*entity.OrderItem {
	res := make([]*entity.OrderItem, 0, len(items))
	for _, i := range items {
		res = append(res, m.ItemToEntity(i))
	}
	return res
}

func (m *OrderMapper) ChargeToEntity(c *model.ExtraCharge) *entity.ExtraCharge {
	if c == nil {
		return nil
	}
	return &entity.ExtraCharge{
		Id:           c.Id,
		OrderNo:      c.OrderNo,
		OrderItemId:  c.OrderItemId,
		ChargeTypeId: c.ChargeTypeId,
		ChargeName:   c.ChargeName,
		ChargeMode:   entity.ChargeMode(c.ChargeMode),
		ChargeAmount: c.ChargeAmount,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *OrderMapper) ChargeToModel(c *entity.ExtraCharge) *model.ExtraCharge {
	if c == nil {
		return nil
	}
	return &model.ExtraCharge{
		Id:           c.Id,
		OrderNo:      c.OrderNo,
		OrderItemId:  c.OrderItemId,
		ChargeTypeId: c.ChargeTypeId,
		ChargeName:   c.ChargeName,
		ChargeMode:   string(c.ChargeMode),
		ChargeAmount: c.ChargeAmount,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *OrderMapper) LinkToEntity(l *model.ExtraChargeLink) *entity.ExtraChargeLink {
	if l == nil {
		return nil
	}
	return &entity.ExtraChargeLink{
		Id:              l.Id,
		OrderNo:         l.OrderNo,
		OrderItemId:     l.OrderItemId,
		ExtraChargeId:   l.ExtraChargeId,
		AllocatedAmount: l.AllocatedAmount,
		CreatedAt:       l.CreatedAt,
	}
}

func (m *OrderMapper) LinkToModel(l *entity.ExtraChargeLink) *model.ExtraChargeLink {
	if l == nil {
		return nil
	}
	return &model.ExtraChargeLink{
		Id:              l.Id,
		OrderNo:         l.OrderNo,
		OrderItemId:     l.OrderItemId,
		ExtraChargeId:   l.ExtraChargeId,
		AllocatedAmount: l.AllocatedAmount,
		CreatedAt:       l.CreatedAt,
	}
}

func (m *OrderMapper) StatusLogToEntity(l *model.OrderStatusLog) *entity.StatusLog {
	if l == nil {
		return nil
	}
	return &entity.StatusLog{
		Id:                  l.Id,
		OrderNo:             l.OrderNo,
		OrderItemId:         l.OrderItemId,
		Action:              entity.StatusAction(l.Action),
		OldOrderStatus:      entity.OrderStatus(l.OldOrderStatus),
		NewOrderStatus:      entity.OrderStatus(l.NewOrderStatus),
		OldItemRefundStatus: entity.ItemRefundStatus(l.OldItemRefundStatus),
		NewItemRefundStatus: entity.ItemRefundStatus(l.NewItemRefundStatus),
		RefundApplyId:       l.RefundApplyId,
		OperatorType:        entity.OperatorType(l.OperatorType),
		OperatorId:          l.OperatorId,
		OperatorName:        l.OperatorName,
		Remark:              l.Remark,
		CreatedAt:           l.CreatedAt,
	}
}

func (m *OrderMapper) StatusLogToModel(l *entity.StatusLog) *model.OrderStatusLog {
	if l == nil {
		return nil
	}
	return &model.OrderStatusLog{
		Id:                  l.Id,
		OrderNo:             l.OrderNo,
		OrderItemId:         l.OrderItemId,
		Action:              string(l.Action),
		OldOrderStatus:      string(l.OldOrderStatus),
		NewOrderStatus:      string(l.NewOrderStatus),
		OldItemRefundStatus: string(l.OldItemRefundStatus),
		NewItemRefundStatus: string(l.NewItemRefundStatus),
		RefundApplyId:       l.RefundApplyId,
		OperatorType:        string(l.OperatorType),
		OperatorId:          l.OperatorId,
		OperatorName:        l.OperatorName,
		Remark:              l.Remark,
		CreatedAt:           l.CreatedAt,
	}
}
