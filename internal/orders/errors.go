package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: a encomenda referida não existe.
	ErrNotFound = errors.New("encomenda não encontrada")

	// ErrInvalidTransition: operação sobre uma encomenda já anulada.
	ErrInvalidTransition = errors.New("encomenda já anulada")

	// ErrDuplicateSequence é devolvido pelo armazenamento quando a inserção
	// do cabeçalho viola a unicidade de (created_date_key, daily_sequence_number).
	// O ledger reage repetindo a atribuição do número.
	ErrDuplicateSequence = errors.New("número diário já atribuído")

	// ErrSequenceAllocationFailed: esgotadas as tentativas de atribuir um
	// número diário sob concorrência. O chamador pode repetir o registo.
	ErrSequenceAllocationFailed = errors.New("não foi possível atribuir número de encomenda")
)

// ValidationError: pedido rejeitado antes de qualquer escrita.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// OrphanedHeaderError: a inserção das linhas falhou e a anulação
// compensatória do cabeçalho também falhou. Fica um cabeçalho Confirmed sem
// linhas na base de dados; requer reconciliação manual.
type OrphanedHeaderError struct {
	OrderID   uint
	InsertErr error
	VoidErr   error
}

func (e *OrphanedHeaderError) Error() string {
	return fmt.Sprintf("cabeçalho órfão (encomenda %d): linhas não gravadas (%v) e anulação compensatória falhou (%v)",
		e.OrderID, e.InsertErr, e.VoidErr)
}

// ReplacementFailedError: numa edição, a encomenda original foi anulada mas
// o registo da sucessora falhou. A encomenda do cliente desapareceu do
// conjunto Confirmed — nunca tratar como falha limpa.
type ReplacementFailedError struct {
	VoidedOrderID uint
	Err           error
}

func (e *ReplacementFailedError) Error() string {
	return fmt.Sprintf("encomenda %d anulada mas o registo da substituta falhou: %v", e.VoidedOrderID, e.Err)
}

func (e *ReplacementFailedError) Unwrap() error { return e.Err }
