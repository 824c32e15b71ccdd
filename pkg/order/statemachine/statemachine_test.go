package statemachine

import (
	"testing"

	"booking-order-be/internal/entity"
	"booking-order-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lifecycleActions = []entity.StatusAction{
	entity.ActionPay,
	entity.ActionCancelUnpaid,
	entity.ActionConfirm,
	entity.ActionComplete,
	entity.ActionApplyRefund,
	entity.ActionApproveRefund,
	entity.ActionRejectRefund,
	entity.ActionCancelRefund,
	entity.ActionRefundSuccess,
}

func TestOrderRule_EveryPairOutsideTableIsInvalidState(t *testing.T) {
	for _, state := range entity.AllOrderStatuses {
		for _, action := range lifecycleActions {
			_, inTable := orderRules[orderKey{state, action}]

			// satisfy whichever guard applies so only table membership decides
			o := &entity.Order{OrderStatus: state, PaymentStatus: entity.PaymentStatusUnpaid}
			if rule, ok := orderRules[orderKey{state, action}]; ok && rule.Guard == Confirmed {
				o.Confirmed = true
			}

			_, err := OrderRule(o, action)
			if inTable {
				assert.NoError(t, err, "%s --%s--> should be allowed", state, action)
				continue
			}
			require.Error(t, err, "%s --%s--> must be rejected", state, action)
			assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err), "%s --%s-->", state, action)
		}
	}
}

func TestOrderRule_Guards(t *testing.T) {
	tests := []struct {
		name    string
		order   entity.Order
		action  entity.StatusAction
		wantErr *apperror.Error
	}{
		{
			name:    "confirm already confirmed",
			order:   entity.Order{OrderStatus: entity.OrderStatusRefundRejected, Confirmed: true},
			action:  entity.ActionConfirm,
			wantErr: apperror.ErrOrderStatusNotAllowConfirm,
		},
		{
			name:   "confirm unconfirmed paid",
			order:  entity.Order{OrderStatus: entity.OrderStatusPaid},
			action: entity.ActionConfirm,
		},
		{
			name:    "complete unconfirmed partially refunded",
			order:   entity.Order{OrderStatus: entity.OrderStatusPartiallyRefunded},
			action:  entity.ActionComplete,
			wantErr: apperror.ErrOrderStatusNotAllowComplete,
		},
		{
			name:   "complete confirmed partially refunded",
			order:  entity.Order{OrderStatus: entity.OrderStatusPartiallyRefunded, Confirmed: true},
			action: entity.ActionComplete,
		},
		{
			name:    "cancel pending but already paid",
			order:   entity.Order{OrderStatus: entity.OrderStatusPending, PaymentStatus: entity.PaymentStatusPaid},
			action:  entity.ActionCancelUnpaid,
			wantErr: apperror.ErrOrderStatusNotAllowCancel,
		},
		{
			name:    "pay cancelled order",
			order:   entity.Order{OrderStatus: entity.OrderStatusCancelled, PaymentStatus: entity.PaymentStatusUnpaid},
			action:  entity.ActionPay,
			wantErr: apperror.ErrOrderStatusNotAllowPay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OrderRule(&tt.order, tt.action)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderSources(t *testing.T) {
	assert.Equal(t, []entity.OrderStatus{entity.OrderStatusPending}, OrderSources(entity.ActionCancelUnpaid))
	assert.ElementsMatch(t, []entity.OrderStatus{
		entity.OrderStatusPaid,
		entity.OrderStatusRefundRejected,
		entity.OrderStatusRefundCancelled,
		entity.OrderStatusPartiallyRefunded,
	}, OrderSources(entity.ActionConfirm))
	assert.ElementsMatch(t, []entity.OrderStatus{
		entity.OrderStatusPaid,
		entity.OrderStatusConfirmed,
		entity.OrderStatusPartiallyRefunded,
		entity.OrderStatusRefundRejected,
		entity.OrderStatusRefundCancelled,
	}, OrderSources(entity.ActionApplyRefund))
	assert.Empty(t, OrderSources(entity.ActionCreate))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(entity.OrderStatusRefunding, entity.ActionRefundSuccess, entity.OrderStatusRefunded))
	assert.True(t, CanTransition(entity.OrderStatusRefunding, entity.ActionRefundSuccess, entity.OrderStatusPartiallyRefunded))
	assert.False(t, CanTransition(entity.OrderStatusRefunding, entity.ActionRefundSuccess, entity.OrderStatusCompleted))
	assert.False(t, CanTransition(entity.OrderStatusCompleted, entity.ActionApplyRefund, entity.OrderStatusRefundApplying))
}

func TestTableTargetsAreKnownStates(t *testing.T) {
	known := make(map[entity.OrderStatus]bool)
	for _, s := range entity.AllOrderStatuses {
		known[s] = true
	}
	for key, rule := range orderRules {
		require.NotEmpty(t, rule.To, "%v has no target", key)
		for _, target := range rule.To {
			assert.True(t, known[target], "%v targets unknown state %s", key, target)
		}
		_, hasErr := orderErrors[key.action]
		assert.True(t, hasErr, "action %s has no error mapping", key.action)
	}
}

func TestNextItemStatus(t *testing.T) {
	tests := []struct {
		from    entity.ItemRefundStatus
		action  entity.StatusAction
		want    entity.ItemRefundStatus
		wantErr *apperror.Error
	}{
		{entity.ItemRefundStatusNone, entity.ActionApplyRefund, entity.ItemRefundStatusWaitApproving, nil},
		{entity.ItemRefundStatusWaitApproving, entity.ActionApplyRefund, "", apperror.ErrRefundItemAlreadyPending},
		{entity.ItemRefundStatusApproved, entity.ActionApplyRefund, "", apperror.ErrRefundItemAlreadyApproved},
		{entity.ItemRefundStatusCompleted, entity.ActionApplyRefund, "", apperror.ErrRefundItemAlreadyCompleted},
		{entity.ItemRefundStatusWaitApproving, entity.ActionApproveRefund, entity.ItemRefundStatusApproved, nil},
		{entity.ItemRefundStatusWaitApproving, entity.ActionRejectRefund, entity.ItemRefundStatusNone, nil},
		{entity.ItemRefundStatusWaitApproving, entity.ActionCancelRefund, entity.ItemRefundStatusNone, nil},
		{entity.ItemRefundStatusApproved, entity.ActionRejectRefund, "", apperror.ErrRefundItemStatusNotAllow},
		{entity.ItemRefundStatusNone, entity.ActionRefundSuccess, "", apperror.ErrRefundItemStatusNotAllow},
		{entity.ItemRefundStatusApproved, entity.ActionRefundSuccess, entity.ItemRefundStatusCompleted, nil},
		{entity.ItemRefundStatusCompleted, entity.ActionRefundSuccess, entity.ItemRefundStatusCompleted, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := NextItemStatus(tt.from, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestItemSources(t *testing.T) {
	assert.Equal(t, []entity.ItemRefundStatus{entity.ItemRefundStatusWaitApproving}, ItemSources(entity.ActionRejectRefund))
	assert.Equal(t, []entity.ItemRefundStatus{entity.ItemRefundStatusApproved, entity.ItemRefundStatusCompleted}, ItemSources(entity.ActionRefundSuccess))
}
