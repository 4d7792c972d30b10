package orders

import (
	"time"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

// OrderStore é o contrato de persistência do ledger. A implementação GORM
// vive em internal/store; os testes usam uma versão em memória.
type OrderStore interface {
	// MaxSequenceForDate devolve o maior daily_sequence_number do dia, ou 0.
	MaxSequenceForDate(dateKey string) (int, error)

	// InsertOrderHeader grava o cabeçalho e preenche o ID. Devolve
	// ErrDuplicateSequence se (dateKey, número) já existir.
	InsertOrderHeader(o *models.Order) error

	InsertOrderLines(lines []models.OrderLine) error

	UpdateOrderState(orderID uint, state models.OrderState) error

	// SetSupersededBy liga uma encomenda anulada à sua sucessora de edição.
	SetSupersededBy(orderID, successorID uint) error

	// GetOrder devolve ErrNotFound se não existir.
	GetOrder(orderID uint) (*models.Order, error)
}

// CatalogStore é a vista do ledger sobre o catálogo: só precisa de resolver
// artigos para copiar preço e taxa no momento do registo.
type CatalogStore interface {
	// GetItem devolve ErrNotFound se o artigo não existir.
	GetItem(itemID uint) (*models.Item, error)
}

// Clock injetado para que a derivação da chave de dia seja determinística
// nos testes.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// DateKey projeta um instante para a chave de dia usada no âmbito dos
// números sequenciais.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
