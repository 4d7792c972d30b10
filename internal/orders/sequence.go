package orders

// SequenceAllocator calcula o próximo número de encomenda visível para o
// cliente, por dia. O número em si não é reservado: a unicidade de
// (dia, número) é garantida pelo índice único do armazenamento, e o ledger
// repete a atribuição quando a inserção devolve ErrDuplicateSequence.
type SequenceAllocator struct {
	store OrderStore
}

func NewSequenceAllocator(store OrderStore) *SequenceAllocator {
	return &SequenceAllocator{store: store}
}

// NextNumber devolve max(números do dia) + 1, ou 1 no primeiro registo do dia.
func (a *SequenceAllocator) NextNumber(dateKey string) (int, error) {
	max, err := a.store.MaxSequenceForDate(dateKey)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
