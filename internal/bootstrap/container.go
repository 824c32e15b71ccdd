package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"booking-order-be/internal/config"
	"booking-order-be/internal/controller"
	"booking-order-be/internal/handler"
	"booking-order-be/internal/pkg/logger"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/internal/service"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/lock"
	pktNats "booking-order-be/pkg/nats"
	"booking-order-be/pkg/order/lifecycle"
	"booking-order-be/pkg/order/orderlock"
	"booking-order-be/pkg/order/policy"
	"booking-order-be/pkg/order/refund"
	"booking-order-be/pkg/outbox"
	"booking-order-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	OrderController  controller.IOrderController
	RefundController controller.IRefundController

	// Background services, started by Start
	Dispatcher    *outbox.Dispatcher
	Scheduler     *scheduler.Server
	PaymentEvents *handler.PaymentEventHandler
	AutoCancel    *handler.AutoCancelHandler

	Logger logger.ILogger

	natsSub *pktNats.Subscriber
	pubSub  *gochannel.GoChannel
	closers []func() error
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	outboxLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "outbox.log"))

	c := &Container{Logger: sysLogger}

	// 2. Infrastructure
	// Redis
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.Redis.URL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.closers = append(c.closers, rdb.Close)

	lockOpts := lock.Options{
		TTL:        cfg.Order.LockTTL,
		Wait:       cfg.Order.LockWait,
		RetryDelay: cfg.Order.LockRetryDelay,
	}
	var locker lock.Locker
	if cfg.Redis.UseLocalLock {
		log.Printf("[INFO] Using in-process order locks")
		locker = lock.NewLocalLocker(lockOpts)
	} else {
		locker = lock.NewRedsyncLocker(rdb, lockOpts)
	}

	// Event bus: JetStream when reachable, in-process gochannel otherwise
	c.pubSub = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, c.pubSub.Close)

	var fallback outbox.Sink = outbox.NewWatermillSink(c.pubSub)
	natsPub, err := pktNats.NewPublisher(cfg.Nats.URL, cfg.Nats.Stream, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v. Events stay in-process", err)
	} else {
		fallback = outbox.NewNatsSink(natsPub)
		c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
	}
	natsSub, err := pktNats.NewSubscriber(cfg.Nats.URL, cfg.Nats.Stream, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.natsSub = natsSub
		c.closers = append(c.closers, func() error { natsSub.Close(); return nil })
	}

	// Asynq timers share the Redis instance
	redisOpt, err := asynq.ParseRedisURI(cfg.Redis.URL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URI for scheduler: %v. Using direct Addr", err)
		redisOpt = asynq.RedisClientOpt{Addr: cfg.Redis.URL}
	}
	taskClient := asynq.NewClient(redisOpt)
	c.closers = append(c.closers, taskClient.Close)

	sink := outbox.NewRouter(fallback).
		Route(events.TopicOrderAutoCancel, outbox.NewAutoCancelSink(taskClient))

	c.Dispatcher = outbox.NewDispatcher(uowFactory, sink, outboxLogger, outbox.Config{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxBackoff:   cfg.Outbox.MaxBackoff,
	})

	// 3. Domain
	runner := orderlock.NewRunner(locker, uowFactory, c.Dispatcher, sysLogger)
	emitter := outbox.NewRecorder()

	manager := lifecycle.NewManager(runner, uowFactory, emitter, sysLogger, lifecycle.Config{
		AutoCancelDelay: cfg.Order.AutoCancelDelay,
		DirectSink:      fallback,
	})
	processor := refund.NewProcessor(runner, uowFactory, emitter, policy.DefaultRegistry(), sysLogger)

	// 4. Services & Handlers
	orderService := service.NewOrderService(manager)
	refundService := service.NewRefundService(processor)

	c.PaymentEvents = handler.NewPaymentEventHandler(manager, processor, sysLogger)
	c.AutoCancel = handler.NewAutoCancelHandler(manager, sysLogger)

	c.Scheduler = scheduler.NewServer(redisOpt, cfg.Order.WorkerCount, sysLogger)
	c.Scheduler.Handle(scheduler.TypeOrderAutoCancel, c.AutoCancel.ProcessTask)

	// 5. Controllers
	c.OrderController = controller.NewOrderController(orderService)
	c.RefundController = controller.NewRefundController(refundService)

	return c
}

// Start launches the outbox dispatcher, the timer workers and the payment consumers. They stop
// when ctx is cancelled or Close is called.
func (c *Container) Start(ctx context.Context) error {
	go c.Dispatcher.Run(ctx)

	if err := c.Scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	subscriptions := map[string]pktNats.MessageHandler{
		events.TopicPaymentRefundSucceeded: c.PaymentEvents.HandleRefundSucceeded,
		events.TopicPaymentOrderPaid:       c.PaymentEvents.HandleOrderPaid,
	}

	for topic, h := range subscriptions {
		if c.natsSub != nil {
			if err := c.natsSub.Subscribe(ctx, topic, durableName(topic), h); err != nil {
				return fmt.Errorf("subscribe %s: %w", topic, err)
			}
			continue
		}
		if err := c.consumeLocal(ctx, topic, h); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	c.Logger.Info("BOOTSTRAP", "Background services started", map[string]interface{}{
		"nats": c.natsSub != nil,
	})
	return nil
}

// consumeLocal feeds gochannel messages to h with the same ack rules as the JetStream consumer.
func (c *Container) consumeLocal(ctx context.Context, topic string, h pktNats.MessageHandler) error {
	messages, err := c.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			err := h(msg.Context(), topic, msg.Payload)
			if err != nil && !errors.Is(err, pktNats.ErrMalformed) {
				c.Logger.Warn("BOOTSTRAP", "Local event handler failed, redelivering", map[string]interface{}{
					"topic": topic,
					"error": err.Error(),
				})
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close stops the workers and releases every connection.
func (c *Container) Close() {
	c.Scheduler.Shutdown()
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = c.Logger.Sync()
}

func durableName(topic string) string {
	return "booking-order-" + strings.ReplaceAll(topic, ".", "_")
}
