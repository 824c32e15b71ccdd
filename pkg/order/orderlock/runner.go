package orderlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-order-be/internal/pkg/logger"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/lock"
	"booking-order-be/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Work runs inside the order lock and the unit-of-work transaction. Every read and write
// must go through uow.
type Work func(ctx context.Context, uow unitofwork.UnitOfWork) error

// Notifier is told after a commit that new outbox rows may be waiting.
type Notifier interface {
	Nudge()
}

// Key is the lock name for an order.
func Key(orderNo string) string {
	return "order:lock:" + orderNo
}

// Runner composes lock acquisition with a database transaction.
type Runner struct {
	locker   lock.Locker
	factory  unitofwork.RepositoryFactory
	notifier Notifier
	logger   logger.ILogger
	tracer   trace.Tracer
}

func NewRunner(locker lock.Locker, factory unitofwork.RepositoryFactory, notifier Notifier, log logger.ILogger) *Runner {
	return &Runner{
		locker:   locker,
		factory:  factory,
		notifier: notifier,
		logger:   log,
		tracer:   otel.Tracer("booking-order-be/order"),
	}
}

// WithOrderLock acquires the order lock, runs fn in a transaction, commits, and releases the
// lock on every exit path. fn's error rolls the transaction back and is returned unchanged.
// A lock that cannot be acquired in time yields apperror.ErrOrderBusy.
func (r *Runner) WithOrderLock(ctx context.Context, action, orderNo string, fn Work) (err error) {
	ctx, span := r.tracer.Start(ctx, "order."+action, trace.WithAttributes(
		attribute.String("order.no", orderNo),
		attribute.String("order.action", action),
	))
	started := time.Now()
	defer func() {
		metrics.UnitOfWorkDuration.WithLabelValues(action).Observe(time.Since(started).Seconds())
		metrics.TransitionsTotal.WithLabelValues(action, outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	held, err := r.locker.Acquire(ctx, Key(orderNo))
	if err != nil {
		metrics.LockFailuresTotal.WithLabelValues(action).Inc()
		r.logger.Warn("ORDER_LOCK", "Order lock busy", map[string]interface{}{
			"orderNo": orderNo,
			"action":  action,
			"error":   err.Error(),
		})
		if errors.Is(err, lock.ErrNotAcquired) {
			return apperror.ErrOrderBusy.Wrap(err)
		}
		return apperror.ErrInternal.Wrap(err)
	}
	defer func() {
		// release on a fresh context: ctx may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if releaseErr := held.Release(releaseCtx); releaseErr != nil {
			r.logger.Warn("ORDER_LOCK", "Failed to release order lock", map[string]interface{}{
				"orderNo": orderNo,
				"error":   releaseErr.Error(),
			})
		}
	}()

	uow := r.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.ErrInternal.Wrap(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			if uow.InTransaction() {
				_ = uow.Rollback()
			}
			panic(p)
		}
		if uow.InTransaction() {
			if rbErr := uow.Rollback(); rbErr != nil {
				r.logger.Error("ORDER_LOCK", "Rollback failed", map[string]interface{}{
					"orderNo": orderNo,
					"error":   rbErr.Error(),
				})
			}
		}
	}()

	if err := fn(ctx, uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return apperror.ErrInternal.Wrap(fmt.Errorf("commit: %w", err))
	}

	if r.notifier != nil {
		r.notifier.Nudge()
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperror.KindOf(err))
}
