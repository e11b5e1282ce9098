package main

import (
	"context"
	"fmt"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// storage repositorios y TxRunner del backend elegido con LEDGER_STORAGE.
type storage struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	stock      repository.StockLevelRepository
	movements  repository.MovementRepository
	txRunner   appinv.TxRunner
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.Ledger.Storage {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			products:   memory.NewProductRepository(s),
			warehouses: memory.NewWarehouseRepository(s),
			stock:      memory.NewStockLevelRepository(s),
			movements:  memory.NewMovementRepository(s),
			txRunner:   memory.NewTxRunner(s),
			close:      func() {},
		}, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		if v, err := postgres.SchemaVersion(ctx, pool); err == nil {
			log.Info().Int64("schema_version", v).Msg("esquema de base de datos")
		}
		return &storage{
			products:   postgres.NewProductRepository(pool),
			warehouses: postgres.NewWarehouseRepository(pool),
			stock:      postgres.NewStockLevelRepository(pool),
			movements:  postgres.NewMovementRepository(pool),
			txRunner:   postgres.NewTxRunner(pool),
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("LEDGER_STORAGE desconocido: %q", cfg.Ledger.Storage)
}
