package mapper

import (
	"booking-order-be/internal/entity"
	"booking-order-be/internal/model"
)

type RefundMapper struct{}

func NewRefundMapper() *RefundMapper {
	return &RefundMapper{}
}

func (m *RefundMapper) ApplyToEntity(a *model.RefundApply) *entity.RefundApply {
	if a == nil {
		return nil
	}
	return &entity.RefundApply{
		Id:                a.Id,
		OrderNo:           a.OrderNo,
		ApplicantId:       a.ApplicantId,
		ApplyStatus:       entity.ApplyStatus(a.ApplyStatus),
		ReasonCode:        a.ReasonCode,
		ReasonDetail:      a.ReasonDetail,
		SellerRemark:      a.SellerRemark,
		ReviewerId:        a.ReviewerId,
		ReviewedAt:        a.ReviewedAt,
		OutRequestNo:      a.OutRequestNo,
		RefundAmount:      a.RefundAmount,
		RefundInitiatedAt: a.RefundInitiatedAt,
		RefundCompletedAt: a.RefundCompletedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func (m *RefundMapper) ApplyToModel(a *entity.RefundApply) *model.RefundApply {
	if a == nil {
		return nil
	}
	return &model.RefundApply{
		Id:                a.Id,
		OrderNo:           a.OrderNo,
		ApplicantId:       a.ApplicantId,
		ApplyStatus:       string(a.ApplyStatus),
		ReasonCode:        a.ReasonCode,
		ReasonDetail:      a.ReasonDetail,
		SellerRemark:      a.SellerRemark,
		ReviewerId:        a.ReviewerId,
		ReviewedAt:        a.ReviewedAt,
		OutRequestNo:      a.OutRequestNo,
		RefundAmount:      a.RefundAmount,
		RefundInitiatedAt: a.RefundInitiatedAt,
		RefundCompletedAt: a.RefundCompletedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func (m *RefundMapper) FactToEntity(f *model.ItemRefundFact) *entity.ItemRefundFact {
	if f == nil {
		return nil
	}
	return &entity.ItemRefundFact{
		Id:                f.Id,
		RefundApplyId:     f.RefundApplyId,
		OrderItemId:       f.OrderItemId,
		OrderNo:           f.OrderNo,
		ItemAmount:        f.ItemAmount,
		ExtraChargeAmount: f.ExtraChargeAmount,
		RefundFee:         f.RefundFee,
		RefundAmount:      f.RefundAmount,
		RefundStatus:      entity.FactStatus(f.RefundStatus),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func (m *RefundMapper) FactToModel(f *entity.ItemRefundFact) *model.ItemRefundFact {
	if f == nil {
		return nil
	}
	return &model.ItemRefundFact{
		Id:                f.Id,
		RefundApplyId:     f.RefundApplyId,
		OrderItemId:       f.OrderItemId,
		OrderNo:           f.OrderNo,
		ItemAmount:        f.ItemAmount,
		ExtraChargeAmount: f.ExtraChargeAmount,
		RefundFee:         f.RefundFee,
		RefundAmount:      f.RefundAmount,
		RefundStatus:      string(f.RefundStatus),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func (m *RefundMapper) ExtraChargeToEntity(r *model.RefundExtraCharge) *entity.RefundExtraCharge {
	if r == nil {
		return nil
	}
	return &entity.RefundExtraCharge{
		Id:            r.Id,
		OrderNo:       r.OrderNo,
		RefundApplyId: r.RefundApplyId,
		ExtraChargeId: r.ExtraChargeId,
		OrderItemId:   r.OrderItemId,
		RefundAmount:  r.RefundAmount,
		CreatedAt:     r.CreatedAt,
	}
}

func (m *RefundMapper) ExtraChargeToModel(r *entity.RefundExtraCharge) *model.RefundExtraCharge {
	if r == nil {
		return nil
	}
	return &model.RefundExtraCharge{
		Id:            r.Id,
		OrderNo:       r.OrderNo,
		RefundApplyId: r.RefundApplyId,
		ExtraChargeId: r.ExtraChargeId,
		OrderItemId:   r.OrderItemId,
		RefundAmount:  r.RefundAmount,
		CreatedAt:     r.CreatedAt,
	}
}
