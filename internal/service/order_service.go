package service

import (
	"context"

	"booking-order-be/internal/dto"
	"booking-order-be/internal/entity"
	"booking-order-be/pkg/order/lifecycle"
)

type IOrderService interface {
	CreateOrder(ctx context.Context, actor entity.Actor, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, actor entity.Actor, orderNo string) (*dto.OrderResponse, error)
	CancelOrder(ctx context.Context, actor entity.Actor, orderNo string) (*dto.CancelOrderResponse, error)
	ConfirmOrder(ctx context.Context, actor entity.Actor, orderNo string, req *dto.ConfirmOrderRequest) (*dto.ConfirmOrderResponse, error)
	CompleteOrder(ctx context.Context, actor entity.Actor, orderNo string) (*dto.OrderResponse, error)
}

type orderService struct {
	manager *lifecycle.Manager
}

func NewOrderService(manager *lifecycle.Manager) IOrderService {
	return &orderService{manager: manager}
}

func (s *orderService) CreateOrder(ctx context.Context, actor entity.Actor, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	cmd := lifecycle.CreateOrderCommand{
		Buyer:          actor,
		SellerId:       req.SellerId,
		SellerType:     entity.SellerType(req.SellerType),
		VenueId:        req.VenueId,
		DiscountAmount: req.DiscountAmount,
		OrderCharges:   toCharges(req.OrderCharges),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, lifecycle.NewItem{
			ResourceId:   item.ResourceId,
			ResourceName: item.ResourceName,
			SlotRecordId: item.SlotRecordId,
			BookingDate:  item.BookingDate,
			StartTime:    item.StartTime,
			EndTime:      item.EndTime,
			UnitPrice:    item.UnitPrice,
			Charges:      toCharges(item.Charges),
		})
	}

	order, err := s.manager.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}
	res := dto.NewOrderResponse(order)
	return &res, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor entity.Actor, orderNo string) (*dto.OrderResponse, error) {
	order, err := s.manager.GetOrder(ctx, orderNo, actor)
	if err != nil {
		return nil, err
	}
	res := dto.NewOrderResponse(order)
	return &res, nil
}

func (s *orderService) CancelOrder(ctx context.Context, actor entity.Actor, orderNo string) (*dto.CancelOrderResponse, error) {
	result, err := s.manager.CancelUnpaid(ctx, orderNo, actor)
	if err != nil {
		return nil, err
	}
	return &dto.CancelOrderResponse{
		Order:            dto.NewOrderResponse(result.Order),
		AlreadyCancelled: result.AlreadyCancelled,
	}, nil
}

func (s *orderService) ConfirmOrder(ctx context.Context, actor entity.Actor, orderNo string, req *dto.ConfirmOrderRequest) (*dto.ConfirmOrderResponse, error) {
	result, err := s.manager.Confirm(ctx, orderNo, req.AutoConfirm, actor)
	if err != nil {
		return nil, err
	}
	return &dto.ConfirmOrderResponse{
		Order:     dto.NewOrderResponse(result.Order),
		Confirmed: result.Confirmed,
	}, nil
}

func (s *orderService) CompleteOrder(ctx context.Context, actor entity.Actor, orderNo string) (*dto.OrderResponse, error) {
	order, err := s.manager.Complete(ctx, orderNo, actor)
	if err != nil {
		return nil, err
	}
	res := dto.NewOrderResponse(order)
	return &res, nil
}

func toCharges(reqs []dto.ChargeRequest) []lifecycle.NewCharge {
	charges := make([]lifecycle.NewCharge, 0, len(reqs))
	for _, c := range reqs {
		charges = append(charges, lifecycle.NewCharge{
			ChargeTypeId: c.ChargeTypeId,
			ChargeName:   c.ChargeName,
			ChargeMode:   entity.ChargeMode(c.ChargeMode),
			ChargeAmount: c.ChargeAmount,
		})
	}
	return charges
}
