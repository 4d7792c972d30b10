package models

import "time"

type OrderState string

const (
	OrderStateConfirmed OrderState = "confirmed"
	OrderStateVoid      OrderState = "void"
)

type FulfillmentType string

const (
	FulfillmentEatIn    FulfillmentType = "eat_in" // comer no local
	FulfillmentTakeAway FulfillmentType = "take_away"
	FulfillmentDelivery FulfillmentType = "delivery" // entrega ao domicílio
)

func (f FulfillmentType) Valid() bool {
	switch f {
	case FulfillmentEatIn, FulfillmentTakeAway, FulfillmentDelivery:
		return true
	}
	return false
}

type Order struct {
	ID uint `gorm:"primaryKey"`

	// Número visível para o cliente, único por dia de criação
	DailySequenceNumber int    `gorm:"not null;uniqueIndex:idx_orders_day_seq"`
	CreatedDateKey      string `gorm:"size:10;not null;uniqueIndex:idx_orders_day_seq"` // "YYYY-MM-DD"

	CustomerName    string          `gorm:"size:100;not null"`
	Contact         string          `gorm:"size:100"` // opcional
	FulfillmentType FulfillmentType `gorm:"size:20;not null;default:'eat_in'"`
	Notes           string          `gorm:"size:255"`

	RegisteredBy uint `gorm:"not null"` // utilizador que registou
	EventID      uint `gorm:"index;not null"`
	Event        Event

	State OrderState `gorm:"size:20;not null;index"`

	// Se a encomenda foi anulada por edição, aponta para a sucessora
	SupersededByID *uint

	CreatedAt time.Time
	UpdatedAt time.Time

	Lines []OrderLine
}
