package stats

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/pricing"
)

// ErrUnavailable: falha de leitura dos dados. Nunca confundir com "evento
// sem encomendas" — um dashboard não pode apresentar zeros quando a consulta
// falhou.
var ErrUnavailable = errors.New("estatísticas indisponíveis")

// Mode controla os artigos incluídos no ranking: só os vendidos (dashboard
// ao vivo) ou o catálogo inteiro com quantidades a zero (relatórios).
type Mode string

const (
	ModeSoldOnly    Mode = "sold"
	ModeFullCatalog Mode = "catalog"
)

// Store é a vista do agregador sobre os dados. ErrNotFound, do ponto de
// vista do agregador, só interessa em GetEvent (evento desconhecido → zeros).
type Store interface {
	GetEvent(eventID uint) (*models.Event, error)
	QueryOrders(eventID uint, state *models.OrderState) ([]models.Order, error)
	QueryOrderLines(orderIDs []uint) ([]models.OrderLine, error)
	ListItems() ([]models.Item, error)
}

// ErrEventNotFound é o sentinel que Store.GetEvent devolve para evento
// inexistente (reexportado de orders para não criar dependência circular).
var ErrEventNotFound = errors.New("evento não encontrado")

// Os nomes destes campos são o contrato estável consumido pela camada de
// relatórios/exportação — não renomear.
type PopularItem struct {
	ItemID              uint                `json:"itemId"`
	Name                string              `json:"name"`
	Category            models.ItemCategory `json:"category"`
	UnitPrice           decimal.Decimal     `json:"unitPrice"`
	QuantitySold        int                 `json:"quantitySold"`
	RevenueContribution decimal.Decimal     `json:"revenueContribution"`
}

type Summary struct {
	TotalOrders     int             `json:"totalOrders"`
	ConfirmedCount  int             `json:"confirmedCount"`
	VoidCount       int             `json:"voidCount"`
	RevenueSubtotal decimal.Decimal `json:"revenueSubtotal"`
	RevenueTax      decimal.Decimal `json:"revenueTax"`
	RevenueTotal    decimal.Decimal `json:"revenueTotal"`
	PopularItems    []PopularItem   `json:"popularItems"`
}

type Aggregator struct {
	store Store
	coll  *collate.Collator
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{
		store: store,
		// desempate do ranking por nome, insensível a maiúsculas e acentos
		coll: collate.New(language.Portuguese, collate.IgnoreCase),
	}
}

// EventSummary agrega as encomendas de um evento. stateFilter=nil conta
// todas as encomendas em TotalOrders; a receita vem SEMPRE apenas das
// Confirmed, independentemente do filtro de apresentação. Evento
// desconhecido devolve agregados a zero com sucesso.
func (a *Aggregator) EventSummary(eventID uint, stateFilter *models.OrderState, mode Mode) (*Summary, error) {
	summary := &Summary{
		RevenueSubtotal: decimal.Zero,
		RevenueTax:      decimal.Zero,
		RevenueTotal:    decimal.Zero,
		PopularItems:    []PopularItem{},
	}

	if _, err := a.store.GetEvent(eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			// Dashboard ainda sem evento selecionado: sucesso com zeros.
			return summary, nil
		}
		return nil, fmt.Errorf("%w: consulta do evento %d: %v", ErrUnavailable, eventID, err)
	}

	allOrders, err := a.store.QueryOrders(eventID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: consulta de encomendas do evento %d: %v", ErrUnavailable, eventID, err)
	}

	confirmedIDs := make([]uint, 0, len(allOrders))
	for _, o := range allOrders {
		switch o.State {
		case models.OrderStateConfirmed:
			summary.ConfirmedCount++
			confirmedIDs = append(confirmedIDs, o.ID)
		case models.OrderStateVoid:
			summary.VoidCount++
		}
		if stateFilter == nil || o.State == *stateFilter {
			summary.TotalOrders++
		}
	}

	items, err := a.store.ListItems()
	if err != nil {
		return nil, fmt.Errorf("%w: consulta do catálogo: %v", ErrUnavailable, err)
	}
	itemByID := make(map[uint]models.Item, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	var lines []models.OrderLine
	if len(confirmedIDs) > 0 {
		lines, err = a.store.QueryOrderLines(confirmedIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: consulta de linhas do evento %d: %v", ErrUnavailable, eventID, err)
		}
	}

	type tally struct {
		quantity int
		revenue  decimal.Decimal
	}
	sold := make(map[uint]*tally)

	for _, line := range lines {
		bd := pricing.Line(line.UnitPriceAtOrder, line.TaxRatePercentAtOrder, line.Quantity)
		summary.RevenueSubtotal = summary.RevenueSubtotal.Add(bd.ExclusiveSubtotal)
		summary.RevenueTax = summary.RevenueTax.Add(bd.TaxAmount)

		t, ok := sold[line.ItemID]
		if !ok {
			t = &tally{revenue: decimal.Zero}
			sold[line.ItemID] = t
		}
		t.quantity += line.Quantity
		// contribuição com o preço congelado na linha, não o preço atual
		t.revenue = t.revenue.Add(line.UnitPriceAtOrder.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	summary.RevenueTotal = summary.RevenueSubtotal.Add(summary.RevenueTax)

	switch mode {
	case ModeFullCatalog:
		for _, it := range items {
			entry := PopularItem{
				ItemID:              it.ID,
				Name:                it.Name,
				Category:            it.Category,
				UnitPrice:           it.UnitPrice,
				RevenueContribution: decimal.Zero,
			}
			if t, ok := sold[it.ID]; ok {
				entry.QuantitySold = t.quantity
				entry.RevenueContribution = t.revenue
			}
			summary.PopularItems = append(summary.PopularItems, entry)
		}
	default: // ModeSoldOnly
		for itemID, t := range sold {
			it, ok := itemByID[itemID]
			if !ok {
				// linha histórica cujo artigo já não existe no catálogo
				log.Printf("[WARN] artigo %d de linhas do evento %d não existe no catálogo", itemID, eventID)
				continue
			}
			summary.PopularItems = append(summary.PopularItems, PopularItem{
				ItemID:              it.ID,
				Name:                it.Name,
				Category:            it.Category,
				UnitPrice:           it.UnitPrice,
				QuantitySold:        t.quantity,
				RevenueContribution: t.revenue,
			})
		}
	}

	sort.SliceStable(summary.PopularItems, func(i, j int) bool {
		pi, pj := summary.PopularItems[i], summary.PopularItems[j]
		if pi.QuantitySold != pj.QuantitySold {
			return pi.QuantitySold > pj.QuantitySold
		}
		return a.coll.CompareString(pi.Name, pj.Name) < 0
	})

	return summary, nil
}
