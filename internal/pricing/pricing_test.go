package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLineBreakdown(t *testing.T) {
	tests := []struct {
		name         string
		unitPrice    string
		taxRate      int
		quantity     int
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{"iva 23, qty 2", "10.00", 23, 2, "15.40", "4.60", "20.00"},
		{"iva 13", "2.50", 13, 1, "2.17", "0.33", "2.50"},
		{"iva 6", "1.20", 6, 3, "3.38", "0.22", "3.60"},
		{"isento", "5.00", 0, 4, "20.00", "0.00", "20.00"},
		{"quantidade zero", "10.00", 23, 0, "0.00", "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := Line(dec(tt.unitPrice), tt.taxRate, tt.quantity)
			assert.True(t, bd.ExclusiveSubtotal.Equal(dec(tt.wantSubtotal)), "subtotal: esperado %s, obtido %s", tt.wantSubtotal, bd.ExclusiveSubtotal)
			assert.True(t, bd.TaxAmount.Equal(dec(tt.wantTax)), "IVA: esperado %s, obtido %s", tt.wantTax, bd.TaxAmount)
			assert.True(t, bd.Total().Equal(dec(tt.wantTotal)), "total: esperado %s, obtido %s", tt.wantTotal, bd.Total())
		})
	}
}

// O preço de catálogo inclui IVA: subtotal + IVA tem de reconstruir
// exatamente quantidade * preço, para qualquer taxa permitida.
func TestLineInvariantAcrossRates(t *testing.T) {
	prices := []string{"0.01", "0.10", "1.00", "1.15", "2.33", "9.99", "10.00", "123.45"}
	quantities := []int{1, 2, 3, 7, 10, 99}

	for _, rate := range []int{0, 6, 13, 23} {
		for _, p := range prices {
			for _, q := range quantities {
				price := dec(p)
				bd := Line(price, rate, q)

				gross := price.Mul(decimal.NewFromInt(int64(q)))
				sum := bd.ExclusiveSubtotal.Add(bd.TaxAmount)
				require.True(t, sum.Equal(gross),
					"taxa %d%%, preço %s, qty %d: %s + %s = %s != %s",
					rate, p, q, bd.ExclusiveSubtotal, bd.TaxAmount, sum, gross)

				assert.False(t, bd.TaxAmount.IsNegative())
				assert.True(t, bd.TaxAmount.Exponent() >= -2, "IVA com mais de 2 casas: %s", bd.TaxAmount)
			}
		}
	}
}

func TestBreakdownAdd(t *testing.T) {
	a := Line(dec("10.00"), 23, 2) // 15.40 + 4.60
	b := Line(dec("2.00"), 6, 1)   // 1.88 + 0.12

	sum := a.Add(b)
	assert.True(t, sum.ExclusiveSubtotal.Equal(dec("17.28")), "subtotal: %s", sum.ExclusiveSubtotal)
	assert.True(t, sum.TaxAmount.Equal(dec("4.72")), "IVA: %s", sum.TaxAmount)
	assert.True(t, sum.Total().Equal(dec("22.00")))
}
