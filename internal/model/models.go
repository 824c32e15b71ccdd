package model

// LedgerModels lists every table the order service owns, in migration order.
func LedgerModels() []interface{} {
	return []interface{}{
		&Order{},
		&OrderItem{},
		&ExtraCharge{},
		&ExtraChargeLink{},
		&RefundApply{},
		&RefundApplyItem{},
		&ItemRefundFact{},
		&RefundExtraCharge{},
		&OrderStatusLog{},
		&OutboxMessage{},
	}
}
