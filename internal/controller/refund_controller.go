package controller

import (
	"booking-order-be/internal/dto"
	"booking-order-be/internal/pkg/serverutils"
	"booking-order-be/internal/service"
	"booking-order-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRefundController interface {
	RegisterRoutes(orders fiber.Router)
	Apply(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type refundController struct {
	service service.IRefundService
}

func NewRefundController(service service.IRefundService) IRefundController {
	return &refundController{service: service}
}

func (c *refundController) RegisterRoutes(orders fiber.Router) {
	h := orders.Group("/:orderNo/refunds")
	h.Post("/", c.Apply)
	h.Get("/progress", c.Progress)
	h.Post("/:applyId/approve", c.Approve)
	h.Post("/:applyId/reject", c.Reject)
	h.Post("/:applyId/cancel", c.Cancel)
}

func (c *refundController) Apply(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	var req dto.ApplyRefundRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ApplyRefund(ctx.UserContext(), actor, ctx.Params("orderNo"), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Refund applied", res))
}

func (c *refundController) Progress(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetRefundProgress(ctx.UserContext(), actor, ctx.Params("orderNo"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching refund progress", res))
}

func (c *refundController) Approve(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	applyId, err := applyIdParam(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ApproveRefund(ctx.UserContext(), actor, ctx.Params("orderNo"), applyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund approved", res))
}

func (c *refundController) Reject(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	applyId, err := applyIdParam(ctx)
	if err != nil {
		return err
	}
	var req dto.RejectRefundRequest
	if len(ctx.Body()) > 0 {
		if err := serverutils.ValidateRequest(ctx, &req); err != nil {
			return err
		}
	}
	res, err := c.service.RejectRefund(ctx.UserContext(), actor, ctx.Params("orderNo"), applyId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund rejected", res))
}

func (c *refundController) Cancel(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	applyId, err := applyIdParam(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.CancelRefund(ctx.UserContext(), actor, ctx.Params("orderNo"), applyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund apply cancelled", res))
}

func applyIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("applyId"))
	if err != nil {
		return uuid.Nil, apperror.ErrInvalidParam.WithMessage("invalid refund apply id")
	}
	return id, nil
}
