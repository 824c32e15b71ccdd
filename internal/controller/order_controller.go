package controller

import (
	"booking-order-be/internal/dto"
	"booking-order-be/internal/entity"
	"booking-order-be/internal/pkg/serverutils"
	"booking-order-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOrderController interface {
	RegisterRoutes(orders fiber.Router)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
}

type orderController struct {
	service service.IOrderService
}

func NewOrderController(service service.IOrderService) IOrderController {
	return &orderController{service: service}
}

// RegisterRoutes mounts on the authenticated /orders group.
func (c *orderController) RegisterRoutes(orders fiber.Router) {
	orders.Post("/", c.Create)
	orders.Get("/:orderNo", c.Get)
	orders.Post("/:orderNo/cancel", c.Cancel)
	orders.Post("/:orderNo/confirm", c.Confirm)
	orders.Post("/:orderNo/complete", c.Complete)
}

func (c *orderController) Create(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CreateOrder(ctx.UserContext(), actor, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Order created", res))
}

func (c *orderController) Get(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetOrder(ctx.UserContext(), actor, ctx.Params("orderNo"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching order", res))
}

func (c *orderController) Cancel(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.CancelOrder(ctx.UserContext(), actor, ctx.Params("orderNo"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Order cancelled", res))
}

func (c *orderController) Confirm(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	var req dto.ConfirmOrderRequest
	if len(ctx.Body()) > 0 {
		if err := serverutils.ValidateRequest(ctx, &req); err != nil {
			return err
		}
	}
	res, err := c.service.ConfirmOrder(ctx.UserContext(), actor, ctx.Params("orderNo"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Order confirmed", res))
}

func (c *orderController) Complete(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.CompleteOrder(ctx.UserContext(), actor, ctx.Params("orderNo"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Order completed", res))
}

func currentActor(ctx *fiber.Ctx) (entity.Actor, error) {
	actor, ok := serverutils.ActorFrom(ctx)
	if !ok {
		return entity.Actor{}, fiber.ErrUnauthorized
	}
	return actor, nil
}
