package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine é append-only: criada com a encomenda, nunca alterada.
// Preço e taxa são copiados do catálogo no momento do registo, para que
// alterações de preço posteriores não mudem totais históricos.
type OrderLine struct {
	ID      uint `gorm:"primaryKey"`
	OrderID uint `gorm:"index;not null"`
	ItemID  uint `gorm:"index;not null"`
	Item    Item

	Quantity              int             `gorm:"not null"`
	UnitPriceAtOrder      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TaxRatePercentAtOrder int             `gorm:"not null"`

	CreatedAt time.Time
}
