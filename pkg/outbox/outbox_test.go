package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/order/ordertest"
	"booking-order-be/pkg/outbox"
	"booking-order-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []*entity.OutboxMessage
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, msg *entity.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, msg)
	return nil
}

func emit(t *testing.T, env *ordertest.Env, evts ...events.Event) {
	t.Helper()
	ctx := context.Background()
	uow := env.Factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	rec := outbox.NewRecorder()
	for _, e := range evts {
		require.NoError(t, rec.Emit(ctx, uow, e))
	}
	require.NoError(t, uow.Commit())
}

func allRows(t *testing.T, env *ordertest.Env, orderNo string) []*entity.OutboxMessage {
	t.Helper()
	rows, err := env.Factory.NewUnitOfWork(context.Background()).OutboxRepository().
		FindAll(context.Background(), specification.Filter("aggregate_id", orderNo))
	require.NoError(t, err)
	return rows
}

func TestBackoff(t *testing.T) {
	base, max := time.Second, 30*time.Second
	tests := []struct {
		attempts int
		expected time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{40, 30 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, outbox.Backoff(tt.attempts, base, max), "attempts=%d", tt.attempts)
	}
}

func TestRecorder_RequiresTransaction(t *testing.T) {
	env := ordertest.NewEnv(t)
	uow := env.Factory.NewUnitOfWork(context.Background())

	err := outbox.NewRecorder().Emit(context.Background(), uow, events.UnlockSlotMessage{OrderNo: "BO1"})
	assert.Error(t, err)
	assert.Empty(t, allRows(t, env, "BO1"))
}

func TestRecorder_RolledBackEventIsDropped(t *testing.T) {
	env := ordertest.NewEnv(t)
	ctx := context.Background()
	uow := env.Factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, outbox.NewRecorder().Emit(ctx, uow, events.UnlockSlotMessage{OrderNo: "BO2"}))
	require.NoError(t, uow.Rollback())

	assert.Empty(t, allRows(t, env, "BO2"))
}

func TestDispatcher_DeliversAndMarksSent(t *testing.T) {
	env := ordertest.NewEnv(t)
	emit(t, env,
		events.UnlockSlotMessage{OrderNo: "BO3", RecordIds: []string{"s1"}},
		events.OrderNotifyMerchantConfirmMessage{OrderNo: "BO3", CurrentOrderStatus: "PAID"},
	)
	sink := &recordingSink{}
	d := outbox.NewDispatcher(env.Factory, sink, env.Logger, outbox.Config{BatchSize: 10})

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.delivered, 2)

	for _, row := range allRows(t, env, "BO3") {
		assert.Equal(t, entity.OutboxStatusSent, row.Status)
		assert.NotNil(t, row.SentAt)
	}

	n, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatcher_FailedDeliveryIsRescheduled(t *testing.T) {
	env := ordertest.NewEnv(t)
	emit(t, env, events.UnlockSlotMessage{OrderNo: "BO4"})
	sink := &recordingSink{err: errors.New("broker down")}
	d := outbox.NewDispatcher(env.Factory, sink, env.Logger, outbox.Config{BaseBackoff: time.Minute})

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := allRows(t, env, "BO4")
	require.Len(t, rows, 1)
	assert.Equal(t, entity.OutboxStatusPending, rows[0].Status)
	assert.Equal(t, 1, rows[0].Attempts)
	assert.Equal(t, "broker down", rows[0].LastError)
	assert.True(t, rows[0].AvailableAt.After(time.Now().Add(30*time.Second)))

	// not due again until the backoff elapses
	n, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatcher_RunDeliversOnNudge(t *testing.T) {
	env := ordertest.NewEnv(t)
	sink := &recordingSink{}
	d := outbox.NewDispatcher(env.Factory, sink, env.Logger, outbox.Config{PollInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	emit(t, env, events.UnlockSlotMessage{OrderNo: "BO5"})
	d.Nudge()
	d.Nudge()

	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.delivered) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatermillSink(t *testing.T) {
	env := ordertest.NewEnv(t)
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	received, err := pubSub.Subscribe(context.Background(), events.TopicMerchantConfirmNotify)
	require.NoError(t, err)

	emit(t, env, events.OrderNotifyMerchantConfirmMessage{OrderNo: "BO6", CurrentOrderStatus: "REFUND_REJECTED"})
	d := outbox.NewDispatcher(env.Factory, outbox.NewWatermillSink(pubSub), env.Logger, outbox.Config{})
	_, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)

	select {
	case msg := <-received:
		msg.Ack()
		assert.Equal(t, "BO6", msg.Metadata.Get("aggregate_id"))
		var payload events.OrderNotifyMerchantConfirmMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "REFUND_REJECTED", payload.CurrentOrderStatus)
	case <-time.After(2 * time.Second):
		t.Fatal("message not published")
	}
}

func TestRouter(t *testing.T) {
	unlock, fallback := &recordingSink{}, &recordingSink{}
	router := outbox.NewRouter(fallback).Route(events.TopicUnlockSlot, unlock)

	require.NoError(t, router.Deliver(context.Background(), &entity.OutboxMessage{Topic: events.TopicUnlockSlot}))
	require.NoError(t, router.Deliver(context.Background(), &entity.OutboxMessage{Topic: events.TopicUserRefund}))
	assert.Len(t, unlock.delivered, 1)
	assert.Len(t, fallback.delivered, 1)

	err := outbox.NewRouter(nil).Deliver(context.Background(), &entity.OutboxMessage{Topic: "order.unknown"})
	assert.Error(t, err)
}

type fakeEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.task, f.opts = task, opts
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: task.Type()}, nil
}

func option(opts []asynq.Option, typ asynq.OptionType) (interface{}, bool) {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value(), true
		}
	}
	return nil, false
}

func TestAutoCancelSink(t *testing.T) {
	payload, err := json.Marshal(events.OrderAutoCancelMessage{OrderNo: "BO7", DueAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)
	msg := &entity.OutboxMessage{Id: uuid.New(), Topic: events.TopicOrderAutoCancel, Payload: payload}

	t.Run("schedules a delayed task keyed by the outbox id", func(t *testing.T) {
		client := &fakeEnqueuer{}
		require.NoError(t, outbox.NewAutoCancelSink(client).Deliver(context.Background(), msg))

		require.NotNil(t, client.task)
		assert.Equal(t, scheduler.TypeOrderAutoCancel, client.task.Type())
		assert.JSONEq(t, string(payload), string(client.task.Payload()))

		id, ok := option(client.opts, asynq.TaskIDOpt)
		require.True(t, ok)
		assert.Equal(t, msg.Id.String(), id)
		queue, _ := option(client.opts, asynq.QueueOpt)
		assert.Equal(t, scheduler.QueueOrder, queue)
		delay, ok := option(client.opts, asynq.ProcessInOpt)
		require.True(t, ok)
		assert.InDelta(t, (10 * time.Minute).Seconds(), delay.(time.Duration).Seconds(), 5)
	})

	t.Run("duplicate task id counts as delivered", func(t *testing.T) {
		client := &fakeEnqueuer{err: asynq.ErrTaskIDConflict}
		assert.NoError(t, outbox.NewAutoCancelSink(client).Deliver(context.Background(), msg))
	})

	t.Run("other enqueue errors are retried", func(t *testing.T) {
		client := &fakeEnqueuer{err: errors.New("redis down")}
		assert.Error(t, outbox.NewAutoCancelSink(client).Deliver(context.Background(), msg))
	})

	t.Run("overdue timer runs immediately", func(t *testing.T) {
		late, err := json.Marshal(events.OrderAutoCancelMessage{OrderNo: "BO7", DueAt: time.Now().Add(-time.Minute)})
		require.NoError(t, err)
		client := &fakeEnqueuer{}
		require.NoError(t, outbox.NewAutoCancelSink(client).Deliver(context.Background(),
			&entity.OutboxMessage{Id: uuid.New(), Topic: events.TopicOrderAutoCancel, Payload: late}))
		_, delayed := option(client.opts, asynq.ProcessInOpt)
		assert.False(t, delayed)
	})
}
