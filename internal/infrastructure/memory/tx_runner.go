package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks sobre una Tx optimista del Store. Si fn falla no se aplica
// nada; si otra transacción confirmó antes sobre las mismas llaves, Run devuelve
// domain.ErrConcurrencyConflict y el motor reintenta.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockLevelRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTx(r.store)
	if err := fn(&MovementRepo{store: r.store, tx: tx}, &StockLevelRepo{store: r.store, tx: tx}); err != nil {
		return err
	}
	return tx.commit()
}
