package service

import (
	"context"

	"booking-order-be/internal/dto"
	"booking-order-be/internal/entity"
	"booking-order-be/pkg/order/refund"

	"github.com/google/uuid"
)

type IRefundService interface {
	// Buyer
	ApplyRefund(ctx context.Context, actor entity.Actor, orderNo string, req *dto.ApplyRefundRequest) (*dto.RefundApplyResponse, error)
	CancelRefund(ctx context.Context, actor entity.Actor, orderNo string, applyId uuid.UUID) (*dto.ReviewRefundResponse, error)

	// Seller
	ApproveRefund(ctx context.Context, actor entity.Actor, orderNo string, applyId uuid.UUID) (*dto.ApproveRefundResponse, error)
	RejectRefund(ctx context.Context, actor entity.Actor, orderNo string, applyId uuid.UUID, req *dto.RejectRefundRequest) (*dto.ReviewRefundResponse, error)

	GetRefundProgress(ctx context.Context, actor entity.Actor, orderNo string) (*dto.RefundProgressResponse, error)
}

type refundService struct {
	processor *refund.Processor
}

func NewRefundService(processor *refund.Processor) IRefundService {
	return &refundService{processor: processor}
}

func (s *refundService) ApplyRefund(ctx context.Context, actor entity.Actor, orderNo string, req *dto.ApplyRefundRequest) (*dto.RefundApplyResponse, error) {
	result, err := s.processor.Apply(ctx, refund.ApplyCommand{
		OrderNo:      orderNo,
		ItemIds:      req.ItemIds,
		ReasonCode:   req.ReasonCode,
		ReasonDetail: req.ReasonDetail,
		Actor:        actor,
	})
	if err != nil {
		return nil, err
	}
	res := dto.NewRefundApplyResponse(result.Apply)
	return &res, nil
}

func (s *refundService) CancelRefund(ctx context.Context, actor entity.Actor, orderNo string, applyId uuid.UUID) (*dto.ReviewRefundResponse, error) {
	result, err := s.processor.Cancel(ctx, orderNo, applyId, actor)
	if err != nil {
		return nil, err
	}
	return reviewResponse(result), nil
}

func (s *refundService) ApproveRefund(ctx context.Context, actor entity.Actor, orderNo string, applyId uuid.UUID) (*dto.ApproveRefundResponse, error) {
	result, err := s.processor.Approve(ctx, orderNo, applyId, actor)
	if err != nil {
		return nil, err
	}
	return &dto.ApproveRefundResponse{
		Apply:             dto.NewRefundApplyResponse(result.Apply),
		ApprovedItemCount: result.ApprovedItemCount,
		RefundAmount:      result.RefundAmount,
		FullRefund:        result.FullRefund,
		AlreadyApproved:   result.AlreadyApproved,
	}, nil
}

func (s *refundService) RejectRefund(ctx context.Context, actor entity.Actor, orderNo string, applyId uuid.UUID, req *dto.RejectRefundRequest) (*dto.ReviewRefundResponse, error) {
	result, err := s.processor.Reject(ctx, orderNo, applyId, actor, req.Remark)
	if err != nil {
		return nil, err
	}
	return reviewResponse(result), nil
}

func (s *refundService) GetRefundProgress(ctx context.Context, actor entity.Actor, orderNo string) (*dto.RefundProgressResponse, error) {
	progress, err := s.processor.GetProgress(ctx, orderNo, actor)
	if err != nil {
		return nil, err
	}

	res := &dto.RefundProgressResponse{
		OrderNo:       progress.Order.OrderNo,
		OrderStatus:   string(progress.Order.OrderStatus),
		PaymentStatus: string(progress.Order.PaymentStatus),
		History:       make([]dto.RefundApplyResponse, 0, len(progress.Applies)),
		CoveredItems:  make([]dto.OrderItemResponse, 0, len(progress.CoveredItems)),
		Facts:         make([]dto.RefundFactResponse, 0, len(progress.Facts)),
		ExtraCharges:  make([]dto.RefundExtraChargeResponse, 0, len(progress.ExtraCharges)),
		Timeline:      make([]dto.TimelineEntry, 0, len(progress.Timeline)),
	}
	if progress.Apply != nil {
		apply := dto.NewRefundApplyResponse(progress.Apply)
		res.Apply = &apply
	}
	for _, a := range progress.Applies {
		res.History = append(res.History, dto.NewRefundApplyResponse(a))
	}
	for _, item := range progress.CoveredItems {
		res.CoveredItems = append(res.CoveredItems, dto.NewOrderItemResponse(item))
	}
	for _, f := range progress.Facts {
		res.Facts = append(res.Facts, dto.RefundFactResponse{
			OrderItemId:       f.OrderItemId,
			ItemAmount:        f.ItemAmount,
			ExtraChargeAmount: f.ExtraChargeAmount,
			RefundFee:         f.RefundFee,
			RefundAmount:      f.RefundAmount,
			RefundStatus:      string(f.RefundStatus),
		})
	}
	for _, c := range progress.ExtraCharges {
		res.ExtraCharges = append(res.ExtraCharges, dto.RefundExtraChargeResponse{
			ExtraChargeId: c.ExtraChargeId,
			OrderItemId:   c.OrderItemId,
			RefundAmount:  c.RefundAmount,
		})
	}
	for _, l := range progress.Timeline {
		res.Timeline = append(res.Timeline, dto.NewTimelineEntry(l))
	}
	return res, nil
}

func reviewResponse(result *refund.ReviewResult) *dto.ReviewRefundResponse {
	return &dto.ReviewRefundResponse{
		Apply:       dto.NewRefundApplyResponse(result.Apply),
		OrderStatus: string(result.OrderStatus),
		AlreadyDone: result.AlreadyDone,
	}
}
