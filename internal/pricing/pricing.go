package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Breakdown decompõe o valor de uma linha: o preço de catálogo já inclui
// IVA, por isso o subtotal sem IVA é calculado por subtração e não por soma.
type Breakdown struct {
	ExclusiveSubtotal decimal.Decimal // base tributável
	TaxAmount         decimal.Decimal // IVA
}

// Line calcula o subtotal sem IVA e o valor de IVA de uma linha de encomenda
// a partir do preço unitário com IVA incluído. O IVA é arredondado a 2 casas
// e o subtotal é obtido por diferença, garantindo sempre
// ExclusiveSubtotal + TaxAmount == quantity * unitPrice ao cêntimo.
func Line(unitPrice decimal.Decimal, taxRatePercent int, quantity int) Breakdown {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	tax := gross.Mul(decimal.NewFromInt(int64(taxRatePercent))).Div(hundred).Round(2)
	return Breakdown{
		ExclusiveSubtotal: gross.Sub(tax),
		TaxAmount:         tax,
	}
}

// Total devolve o valor com IVA incluído da decomposição.
func (b Breakdown) Total() decimal.Decimal {
	return b.ExclusiveSubtotal.Add(b.TaxAmount)
}

// Add acumula outra decomposição (soma de linhas de uma encomenda ou evento).
func (b Breakdown) Add(other Breakdown) Breakdown {
	return Breakdown{
		ExclusiveSubtotal: b.ExclusiveSubtotal.Add(other.ExclusiveSubtotal),
		TaxAmount:         b.TaxAmount.Add(other.TaxAmount),
	}
}
