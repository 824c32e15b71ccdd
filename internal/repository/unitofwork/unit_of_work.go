package unitofwork

import (
	"context"

	"booking-order-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	InTransaction() bool

	OrderRepository() contract.OrderRepository
	RefundRepository() contract.RefundRepository
	ExtraChargeRepository() contract.ExtraChargeRepository
	StatusLogRepository() contract.StatusLogRepository
	OutboxRepository() contract.OutboxRepository
}
