package outbox

import (
	"context"
	"time"

	"booking-order-be/internal/pkg/logger"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/metrics"
)

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Minute
	}
	return c
}

// Backoff returns the delay before attempt number attempts+1, doubling from base up to max.
func Backoff(attempts int, base, max time.Duration) time.Duration {
	if attempts < 1 {
		return base
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Dispatcher delivers committed outbox rows at least once.
type Dispatcher struct {
	factory unitofwork.RepositoryFactory
	sink    Sink
	logger  logger.ILogger
	cfg     Config
	nudge   chan struct{}
	now     func() time.Time
}

func NewDispatcher(factory unitofwork.RepositoryFactory, sink Sink, log logger.ILogger, cfg Config) *Dispatcher {
	return &Dispatcher{
		factory: factory,
		sink:    sink,
		logger:  log,
		cfg:     cfg.withDefaults(),
		nudge:   make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Nudge wakes the dispatcher without waiting for the next poll. Never blocks.
func (d *Dispatcher) Nudge() {
	select {
	case d.nudge <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.logger.Info("OUTBOX", "Dispatcher started", map[string]interface{}{
		"pollInterval": d.cfg.PollInterval.String(),
		"batchSize":    d.cfg.BatchSize,
	})

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("OUTBOX", "Dispatcher stopped", nil)
			return
		case <-ticker.C:
		case <-d.nudge:
		}

		for {
			n, err := d.DispatchOnce(ctx)
			if err != nil {
				d.logger.Error("OUTBOX", "Dispatch batch failed", map[string]interface{}{"error": err.Error()})
				break
			}
			// a full batch likely means more rows are due
			if n < d.cfg.BatchSize || ctx.Err() != nil {
				break
			}
		}
	}
}

// DispatchOnce claims one batch of due rows and tries each of them once. It returns how many
// rows were claimed.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	uow := d.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		if uow.InTransaction() {
			_ = uow.Rollback()
		}
	}()

	repo := uow.OutboxRepository()
	msgs, err := repo.ClaimPending(ctx, d.now().UTC(), d.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	for _, msg := range msgs {
		deliverErr := d.sink.Deliver(ctx, msg)
		now := d.now().UTC()

		if deliverErr == nil {
			if err := repo.MarkSent(ctx, msg.Id, now); err != nil {
				return 0, err
			}
			metrics.OutboxDeliveredTotal.WithLabelValues(msg.Topic).Inc()
			continue
		}

		attempts := msg.Attempts + 1
		next := now.Add(Backoff(attempts, d.cfg.BaseBackoff, d.cfg.MaxBackoff))
		if err := repo.MarkRetry(ctx, msg.Id, attempts, next, deliverErr.Error()); err != nil {
			return 0, err
		}
		metrics.OutboxFailedTotal.WithLabelValues(msg.Topic).Inc()
		d.logger.Error("OUTBOX", "Delivery failed, rescheduled", map[string]interface{}{
			"id":          msg.Id.String(),
			"topic":       msg.Topic,
			"aggregateId": msg.AggregateId,
			"attempts":    attempts,
			"nextAttempt": next,
			"error":       deliverErr.Error(),
		})
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return len(msgs), nil
}
