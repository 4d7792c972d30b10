package orders

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

// fakeOrderStore imita o comportamento do Postgres que interessa ao ledger:
// IDs atribuídos na inserção e índice único em (dia, número diário).
type fakeOrderStore struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*models.Order
	lines  map[uint][]models.OrderLine

	headerErr error // injeção de falha em InsertOrderHeader
	linesErr  error // injeção de falha em InsertOrderLines
	stateErr  error // injeção de falha em UpdateOrderState
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[uint]*models.Order),
		lines:  make(map[uint][]models.OrderLine),
	}
}

func (s *fakeOrderStore) MaxSequenceForDate(dateKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, o := range s.orders {
		if o.CreatedDateKey == dateKey && o.DailySequenceNumber > max {
			max = o.DailySequenceNumber
		}
	}
	return max, nil
}

func (s *fakeOrderStore) InsertOrderHeader(o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headerErr != nil {
		return s.headerErr
	}
	for _, existing := range s.orders {
		if existing.CreatedDateKey == o.CreatedDateKey && existing.DailySequenceNumber == o.DailySequenceNumber {
			return ErrDuplicateSequence
		}
	}
	s.nextID++
	o.ID = s.nextID
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) InsertOrderLines(lines []models.OrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.linesErr != nil {
		return s.linesErr
	}
	for _, l := range lines {
		s.lines[l.OrderID] = append(s.lines[l.OrderID], l)
	}
	return nil
}

func (s *fakeOrderStore) UpdateOrderState(orderID uint, state models.OrderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateErr != nil {
		return s.stateErr
	}
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.State = state
	return nil
}

func (s *fakeOrderStore) SetSupersededBy(orderID, successorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.SupersededByID = &successorID
	return nil
}

func (s *fakeOrderStore) GetOrder(orderID uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Lines = append([]models.OrderLine(nil), s.lines[orderID]...)
	return &cp, nil
}

type fakeCatalog struct {
	mu    sync.Mutex
	items map[uint]models.Item
}

func (c *fakeCatalog) GetItem(itemID uint) (*models.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (c *fakeCatalog) setPrice(itemID uint, price string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.items[itemID]
	item.UnitPrice = decimal.RequireFromString(price)
	c.items[itemID] = item
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: map[uint]models.Item{
		1: {ID: 1, Name: "Bifana", Category: models.CategoryFood, UnitPrice: decimal.RequireFromString("10.00"), TaxRatePercent: 23, OnMenu: true},
		2: {ID: 2, Name: "Água", Category: models.CategoryDrink, UnitPrice: decimal.RequireFromString("1.00"), TaxRatePercent: 6, OnMenu: true},
	}}
}

func validOrder() NewOrder {
	return NewOrder{
		CustomerName:    "Maria Santos",
		Contact:         "912345678",
		FulfillmentType: models.FulfillmentTakeAway,
		RegisteredBy:    7,
		EventID:         1,
		Lines: []NewOrderLine{
			{ItemID: 1, Quantity: 2},
			{ItemID: 2, Quantity: 1},
		},
	}
}

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

var day1 = time.Date(2026, 8, 29, 18, 30, 0, 0, time.UTC)

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*NewOrder)
		wantField string
	}{
		{"nome vazio", func(o *NewOrder) { o.CustomerName = "   " }, "customer_name"},
		{"sem linhas", func(o *NewOrder) { o.Lines = nil }, "lines"},
		{"quantidade zero", func(o *NewOrder) { o.Lines[0].Quantity = 0 }, "lines"},
		{"quantidade negativa", func(o *NewOrder) { o.Lines[0].Quantity = -3 }, "lines"},
		{"artigo inexistente", func(o *NewOrder) { o.Lines[0].ItemID = 99 }, "lines"},
		{"sem evento", func(o *NewOrder) { o.EventID = 0 }, "event_id"},
		{"fulfillment inválido", func(o *NewOrder) { o.FulfillmentType = "drive_thru" }, "fulfillment_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeOrderStore()
			ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

			in := validOrder()
			tt.mutate(&in)

			_, err := ledger.Register(in)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			// rejeição antes de qualquer escrita
			assert.Empty(t, store.orders)
			assert.Empty(t, store.lines)
		})
	}
}

func TestRegisterAssignsDailySequence(t *testing.T) {
	store := newFakeOrderStore()
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	first, err := ledger.Register(validOrder())
	require.NoError(t, err)
	assert.Equal(t, 1, first.DailySequenceNumber)
	assert.Equal(t, "2026-08-29", first.CreatedDateKey)
	assert.Equal(t, models.OrderStateConfirmed, first.State)

	second, err := ledger.Register(validOrder())
	require.NoError(t, err)
	assert.Equal(t, 2, second.DailySequenceNumber)

	// dia seguinte recomeça em 1, sem pré-carregar nada
	nextDay := NewLedger(store, newFakeCatalog(), fixedClock(day1.Add(24*time.Hour)))
	third, err := nextDay.Register(validOrder())
	require.NoError(t, err)
	assert.Equal(t, 1, third.DailySequenceNumber)
	assert.Equal(t, "2026-08-30", third.CreatedDateKey)
}

func TestRegisterSnapshotsCatalogPrice(t *testing.T) {
	store := newFakeOrderStore()
	catalog := newFakeCatalog()
	ledger := NewLedger(store, catalog, fixedClock(day1))

	order, err := ledger.Register(validOrder())
	require.NoError(t, err)

	require.Len(t, order.Lines, 2)
	assert.True(t, order.Lines[0].UnitPriceAtOrder.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 23, order.Lines[0].TaxRatePercentAtOrder)

	// alterar o preço no catálogo não pode mudar a linha histórica
	catalog.setPrice(1, "12.50")
	stored, err := ledger.Get(order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Lines[0].UnitPriceAtOrder.Equal(decimal.RequireFromString("10.00")))
}

func TestRegisterCompensatesWhenLinesFail(t *testing.T) {
	store := newFakeOrderStore()
	store.linesErr = errors.New("disco cheio")
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	_, err := ledger.Register(validOrder())
	require.Error(t, err)

	var oErr *OrphanedHeaderError
	assert.False(t, errors.As(err, &oErr), "compensação bem sucedida não é cabeçalho órfão")

	// o cabeçalho ficou gravado mas anulado: nunca Confirmed sem linhas
	require.Len(t, store.orders, 1)
	for _, o := range store.orders {
		assert.Equal(t, models.OrderStateVoid, o.State)
	}
}

func TestRegisterSurfacesOrphanedHeader(t *testing.T) {
	store := newFakeOrderStore()
	store.linesErr = errors.New("disco cheio")
	store.stateErr = errors.New("ligação perdida")
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	_, err := ledger.Register(validOrder())

	var oErr *OrphanedHeaderError
	require.ErrorAs(t, err, &oErr)
	assert.NotZero(t, oErr.OrderID)
	assert.Error(t, oErr.InsertErr)
	assert.Error(t, oErr.VoidErr)
}

func TestVoidIsIdempotent(t *testing.T) {
	store := newFakeOrderStore()
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	order, err := ledger.Register(validOrder())
	require.NoError(t, err)

	already, err := ledger.Void(order.ID)
	require.NoError(t, err)
	assert.False(t, already)

	// segunda anulação: aviso, não erro
	already, err = ledger.Void(order.ID)
	require.NoError(t, err)
	assert.True(t, already)

	stored, err := ledger.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateVoid, stored.State)
}

func TestVoidUnknownOrder(t *testing.T) {
	ledger := NewLedger(newFakeOrderStore(), newFakeCatalog(), fixedClock(day1))

	_, err := ledger.Void(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditReplacesOrder(t *testing.T) {
	store := newFakeOrderStore()
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	original, err := ledger.Register(validOrder())
	require.NoError(t, err)

	edited := validOrder()
	edited.CustomerName = "Maria S. Santos"
	edited.Lines = []NewOrderLine{{ItemID: 2, Quantity: 5}}

	successor, err := ledger.Edit(original.ID, edited)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, successor.ID)
	assert.Greater(t, successor.DailySequenceNumber, original.DailySequenceNumber)
	assert.Equal(t, models.OrderStateConfirmed, successor.State)
	require.Len(t, successor.Lines, 1)
	assert.Equal(t, uint(2), successor.Lines[0].ItemID)

	voided, err := ledger.Get(original.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateVoid, voided.State)
	require.NotNil(t, voided.SupersededByID)
	assert.Equal(t, successor.ID, *voided.SupersededByID)
}

func TestEditVoidedOrderRejected(t *testing.T) {
	store := newFakeOrderStore()
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	original, err := ledger.Register(validOrder())
	require.NoError(t, err)
	_, err = ledger.Void(original.ID)
	require.NoError(t, err)

	_, err = ledger.Edit(original.ID, validOrder())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEditInvalidInputKeepsOriginal(t *testing.T) {
	store := newFakeOrderStore()
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	original, err := ledger.Register(validOrder())
	require.NoError(t, err)

	bad := validOrder()
	bad.Lines = nil

	_, err = ledger.Edit(original.ID, bad)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	// edição inválida não pode ter anulado a original
	stored, err := ledger.Get(original.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateConfirmed, stored.State)
}

func TestEditReplacementFailureIsDistinguishable(t *testing.T) {
	store := newFakeOrderStore()
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	original, err := ledger.Register(validOrder())
	require.NoError(t, err)

	// a anulação ainda funciona; só o registo da substituta falha
	store.headerErr = errors.New("ligação perdida")

	_, err = ledger.Edit(original.ID, validOrder())

	var rErr *ReplacementFailedError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, original.ID, rErr.VoidedOrderID)

	stored, getErr := ledger.Get(original.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.OrderStateVoid, stored.State)
}

// Propriedade de concorrência: N registos simultâneos no mesmo dia acabam
// com exatamente os números {1..N}, sem duplicados nem buracos. Um registo
// que esgote as tentativas pode ser repetido pelo chamador (documentado como
// nova tentativa de registo).
func TestConcurrentRegistrationsGetUniqueSequence(t *testing.T) {
	const n = 10

	store := newFakeOrderStore()
	ledger := NewLedger(store, newFakeCatalog(), fixedClock(day1))

	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for attempt := 0; attempt < n; attempt++ {
				_, err := ledger.Register(validOrder())
				if err == nil {
					return
				}
				if !errors.Is(err, ErrSequenceAllocationFailed) {
					errs <- err
					return
				}
			}
			errs <- errors.New("tentativas de registo esgotadas")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	seen := make(map[int]bool)
	for _, o := range store.orders {
		assert.Equal(t, "2026-08-29", o.CreatedDateKey)
		assert.False(t, seen[o.DailySequenceNumber], "número %d duplicado", o.DailySequenceNumber)
		seen[o.DailySequenceNumber] = true
	}
	require.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "número %d em falta", i)
	}
}
