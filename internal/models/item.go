package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemCategory string

const (
	CategorySoup     ItemCategory = "soup"     // sopas
	CategoryFood     ItemCategory = "food"     // comida
	CategoryDessert  ItemCategory = "dessert"  // sobremesa
	CategoryDrink    ItemCategory = "drink"    // bebida
	CategoryAlcohol  ItemCategory = "alcohol"  // bebida alcoólica
	CategoryGiveaway ItemCategory = "giveaway" // oferta
)

func (c ItemCategory) Valid() bool {
	switch c {
	case CategorySoup, CategoryFood, CategoryDessert, CategoryDrink, CategoryAlcohol, CategoryGiveaway:
		return true
	}
	return false
}

// Taxas de IVA permitidas (%)
var TaxRatePercents = []int{23, 13, 6, 0}

func ValidTaxRatePercent(rate int) bool {
	for _, r := range TaxRatePercents {
		if r == rate {
			return true
		}
	}
	return false
}

type Item struct {
	ID             uint            `gorm:"primaryKey"`
	Name           string          `gorm:"size:100;not null;unique"`
	Category       ItemCategory    `gorm:"size:20;not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"` // preço de venda, IVA incluído
	TaxRatePercent int             `gorm:"not null"`                    // 23 | 13 | 6 | 0
	OnMenu         bool            `gorm:"not null;default:true"`
	ImageRef       string          `gorm:"size:255"` // nome do ficheiro guardado (opcional)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
