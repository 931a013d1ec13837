package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/billing"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Sequencer numeración de facturas por (boutique, año, mes). El bloqueo de fila de la terna
// serializa solo a quienes compiten por el mismo mes de la misma boutique.
type Sequencer struct {
	store repository.Store
	now   func() time.Time
}

// NewSequencer construye el secuenciador. now nil = time.Now.
func NewSequencer(store repository.Store, now func() time.Time) *Sequencer {
	if now == nil {
		now = time.Now
	}
	return &Sequencer{store: store, now: now}
}

// NextInTx toma el siguiente número dentro de la transacción del llamante.
// Si la transacción hace rollback el número no se consume.
func (s *Sequencer) NextInTx(ctx context.Context, uow repository.UnitOfWork, warehouseID int64, at time.Time) (int64, string, error) {
	n, err := uow.Sequences().Next(ctx, warehouseID, at.Year(), int(at.Month()))
	if err != nil {
		return 0, "", fmt.Errorf("secuencia FA%d %04d-%02d: %w", warehouseID, at.Year(), at.Month(), err)
	}
	return n, billing.FormatNumber(warehouseID, at, n), nil
}

// NextNumber toma un número en su propia transacción.
func (s *Sequencer) NextNumber(ctx context.Context, warehouseID int64) (int64, error) {
	n, _, err := s.next(ctx, warehouseID)
	return n, err
}

// NextFormatted igual que NextNumber pero devuelve FA<W>-<YYMMDD>-<NNNN>.
func (s *Sequencer) NextFormatted(ctx context.Context, warehouseID int64) (string, error) {
	_, f, err := s.next(ctx, warehouseID)
	return f, err
}

func (s *Sequencer) next(ctx context.Context, warehouseID int64) (int64, string, error) {
	var (
		n int64
		f string
	)
	at := s.now()
	err := s.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		n, f, err = s.NextInTx(ctx, uow, warehouseID, at)
		return err
	})
	return n, f, err
}
