package orders

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

// Tentativas de atribuição do número diário antes de desistir com
// ErrSequenceAllocationFailed.
const maxSequenceAttempts = 5

const sequenceRetryBackoff = 10 * time.Millisecond

// NewOrderLine é uma linha candidata: o preço e a taxa são sempre copiados
// do catálogo pelo ledger, nunca aceites do chamador.
type NewOrderLine struct {
	ItemID   uint
	Quantity int
}

// NewOrder são os campos de um registo ou edição de encomenda. A identidade
// de quem regista chega já resolvida pelo chamador; o ledger nunca lê sessão.
type NewOrder struct {
	CustomerName    string
	Contact         string
	FulfillmentType models.FulfillmentType
	Notes           string
	RegisteredBy    uint
	EventID         uint
	Lines           []NewOrderLine
}

// Ledger é a máquina de estados das encomendas: regista, anula e substitui.
// Estados: confirmed → void, sem transição inversa.
type Ledger struct {
	store     OrderStore
	catalog   CatalogStore
	allocator *SequenceAllocator
	clock     Clock
}

func NewLedger(store OrderStore, catalog CatalogStore, clock Clock) *Ledger {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	return &Ledger{
		store:     store,
		catalog:   catalog,
		allocator: NewSequenceAllocator(store),
		clock:     clock,
	}
}

// Register valida, atribui o número diário, grava o cabeçalho e depois as
// linhas. Se as linhas falharem depois do cabeçalho, o cabeçalho é anulado
// por compensação — nunca fica uma encomenda Confirmed sem linhas legível.
//
// Atenção: repetir a chamada após um timeout NÃO é idempotente — um novo
// registo atribui um novo número diário. Um invólucro com chave de
// idempotência fica como trabalho futuro.
func (l *Ledger) Register(in NewOrder) (*models.Order, error) {
	in, err := l.validate(in)
	if err != nil {
		return nil, err
	}

	lines, err := l.snapshotLines(in.Lines)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	dateKey := DateKey(now)

	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * sequenceRetryBackoff)
		}

		seq, err := l.allocator.NextNumber(dateKey)
		if err != nil {
			return nil, fmt.Errorf("consulta do número diário falhou: %w", err)
		}

		order := &models.Order{
			DailySequenceNumber: seq,
			CreatedDateKey:      dateKey,
			CustomerName:        in.CustomerName,
			Contact:             in.Contact,
			FulfillmentType:     in.FulfillmentType,
			Notes:               in.Notes,
			RegisteredBy:        in.RegisteredBy,
			EventID:             in.EventID,
			State:               models.OrderStateConfirmed,
			CreatedAt:           now,
		}

		err = l.store.InsertOrderHeader(order)
		if errors.Is(err, ErrDuplicateSequence) {
			// Outro registo concorrente ficou com este número; reler o máximo.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cabeçalho da encomenda não gravado: %w", err)
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := l.store.InsertOrderLines(lines); err != nil {
			// Compensação: sem transação entre tabelas, o cabeçalho já gravado
			// é anulado em vez de apagado. Se a própria compensação falhar,
			// o erro tem de ser distinto do original.
			if voidErr := l.store.UpdateOrderState(order.ID, models.OrderStateVoid); voidErr != nil {
				return nil, &OrphanedHeaderError{OrderID: order.ID, InsertErr: err, VoidErr: voidErr}
			}
			return nil, fmt.Errorf("linhas da encomenda %d não gravadas (cabeçalho anulado): %w", order.ID, err)
		}

		order.Lines = lines
		return order, nil
	}

	return nil, ErrSequenceAllocationFailed
}

// Void anula uma encomenda Confirmed. Anular uma encomenda já anulada não é
// erro: devolve alreadyVoid=true e deixa aviso no log.
func (l *Ledger) Void(orderID uint) (alreadyVoid bool, err error) {
	order, err := l.store.GetOrder(orderID)
	if err != nil {
		return false, err
	}

	if order.State == models.OrderStateVoid {
		log.Printf("[WARN] encomenda %d já estava anulada", orderID)
		return true, nil
	}

	if err := l.store.UpdateOrderState(orderID, models.OrderStateVoid); err != nil {
		return false, fmt.Errorf("anulação da encomenda %d falhou: %w", orderID, err)
	}
	return false, nil
}

// Edit substitui uma encomenda Confirmed: anula a original e regista uma
// nova (novo id, novo número diário). Se o registo da sucessora falhar
// depois da anulação, devolve ReplacementFailedError — o chamador tem de
// saber que a original já não está Confirmed.
func (l *Ledger) Edit(orderID uint, in NewOrder) (*models.Order, error) {
	original, err := l.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if original.State == models.OrderStateVoid {
		return nil, fmt.Errorf("encomenda %d: %w", orderID, ErrInvalidTransition)
	}

	// Validar e resolver os artigos ANTES de anular a original: um pedido de
	// edição inválido não pode destruir a encomenda existente.
	in, err = l.validate(in)
	if err != nil {
		return nil, err
	}
	if _, err := l.snapshotLines(in.Lines); err != nil {
		return nil, err
	}

	if err := l.store.UpdateOrderState(orderID, models.OrderStateVoid); err != nil {
		return nil, fmt.Errorf("anulação da encomenda %d falhou: %w", orderID, err)
	}

	successor, err := l.Register(in)
	if err != nil {
		return nil, &ReplacementFailedError{VoidedOrderID: orderID, Err: err}
	}

	// Ligação para auditoria. Best-effort: a sucessora já existe, por isso a
	// edição conta como bem sucedida mesmo que a ligação falhe.
	if err := l.store.SetSupersededBy(orderID, successor.ID); err != nil {
		log.Printf("[WARN] encomenda %d: ligação à sucessora %d não gravada: %v", orderID, successor.ID, err)
	}

	return successor, nil
}

// Get devolve a encomenda com as linhas.
func (l *Ledger) Get(orderID uint) (*models.Order, error) {
	return l.store.GetOrder(orderID)
}

func (l *Ledger) validate(in NewOrder) (NewOrder, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return in, &ValidationError{Field: "customer_name", Reason: "nome do cliente é obrigatório"}
	}

	if in.FulfillmentType == "" {
		in.FulfillmentType = models.FulfillmentEatIn
	}
	if !in.FulfillmentType.Valid() {
		return in, &ValidationError{Field: "fulfillment_type", Reason: "tipo inválido (eat_in|take_away|delivery)"}
	}

	if in.EventID == 0 {
		return in, &ValidationError{Field: "event_id", Reason: "evento é obrigatório"}
	}

	if len(in.Lines) == 0 {
		return in, &ValidationError{Field: "lines", Reason: "a encomenda tem de ter pelo menos uma linha"}
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return in, &ValidationError{Field: "lines", Reason: fmt.Sprintf("quantidade do artigo %d tem de ser positiva", line.ItemID)}
		}
	}

	return in, nil
}

// snapshotLines resolve cada artigo no catálogo e copia preço e taxa atuais
// para a linha, congelando os valores históricos.
func (l *Ledger) snapshotLines(in []NewOrderLine) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, len(in))
	for _, nl := range in {
		item, err := l.catalog.GetItem(nl.ItemID)
		if errors.Is(err, ErrNotFound) {
			return nil, &ValidationError{Field: "lines", Reason: fmt.Sprintf("artigo %d não existe", nl.ItemID)}
		}
		if err != nil {
			return nil, fmt.Errorf("consulta do artigo %d falhou: %w", nl.ItemID, err)
		}
		lines = append(lines, models.OrderLine{
			ItemID:                item.ID,
			Quantity:              nl.Quantity,
			UnitPriceAtOrder:      item.UnitPrice,
			TaxRatePercentAtOrder: item.TaxRatePercent,
		})
	}
	return lines, nil
}
