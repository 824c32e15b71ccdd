package lifecycle

import (
	"booking-order-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewCharge is an extra charge already priced by the caller.
type NewCharge struct {
	ChargeTypeId uuid.UUID
	ChargeName   string
	ChargeMode   entity.ChargeMode
	ChargeAmount decimal.Decimal
}

// NewItem is one booked slot. Its slot lock is already held by the inventory service.
type NewItem struct {
	ResourceId   uuid.UUID
	ResourceName string
	SlotRecordId string
	BookingDate  string
	StartTime    string
	EndTime      string
	UnitPrice    decimal.Decimal
	Charges      []NewCharge
}

type CreateOrderCommand struct {
	Buyer          entity.Actor
	SellerId       uuid.UUID
	SellerType     entity.SellerType
	VenueId        uuid.UUID
	DiscountAmount decimal.Decimal
	Items          []NewItem
	OrderCharges   []NewCharge
}

type PaySuccessCommand struct {
	OrderNo     string
	OutTradeNo  string
	PaymentType string
}

type CancelResult struct {
	Order            *entity.Order
	AlreadyCancelled bool
}

// ConfirmResult reports Confirmed=false when the order was already confirmed or a
// concurrent confirmer won.
type ConfirmResult struct {
	Order     *entity.Order
	Confirmed bool
}

type PayResult struct {
	Order       *entity.Order
	AlreadyPaid bool
}
