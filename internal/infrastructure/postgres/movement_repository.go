package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos y sus líneas sobre PostgreSQL (usable con pool o tx).
// Alta y actualización escriben cabecera y líneas en una misma transacción; fuera de la
// tx del motor se abre una propia, dentro se usa un savepoint.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, type, status, COALESCE(reference, ''), version,
	COALESCE(reversal_of, ''), COALESCE(reversed_by, ''), COALESCE(created_by, ''),
	created_at, updated_at, done_at, cancelled_at`

// Create persiste el movimiento con Version = 1.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	// PostgreSQL guarda microsegundos; el cursor debe coincidir con lo almacenado.
	m.CreatedAt = m.CreatedAt.Truncate(time.Microsecond)
	m.UpdatedAt = m.UpdatedAt.Truncate(time.Microsecond)
	m.Version = 1
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO movements (id, type, status, reference, version, reversal_of, reversed_by,
			                       created_by, created_at, updated_at, done_at, cancelled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			m.ID, m.Type, m.Status, nullable(m.Reference), m.Version,
			nullable(m.ReversalOf), nullable(m.ReversedBy), nullable(m.CreatedBy),
			m.CreatedAt, m.UpdatedAt, m.DoneAt, m.CancelledAt,
		)
		if err != nil {
			return mapError("insert movement", err)
		}
		return insertLines(ctx, tx, m)
	})
}

// GetByID devuelve nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get movement", err)
	}
	if err := r.loadLines(ctx, []*entity.Movement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// Update compara la versión (CAS) y reemplaza cabecera y líneas.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement, expectedVersion int64) error {
	m.UpdatedAt = m.UpdatedAt.Truncate(time.Microsecond)
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE movements
			SET status = $3, reference = $4, reversal_of = $5, reversed_by = $6,
			    updated_at = $7, done_at = $8, cancelled_at = $9, version = version + 1
			WHERE id = $1 AND version = $2`,
			m.ID, expectedVersion, m.Status, nullable(m.Reference),
			nullable(m.ReversalOf), nullable(m.ReversedBy),
			m.UpdatedAt, m.DoneAt, m.CancelledAt,
		)
		if err != nil {
			return mapError("update movement", err)
		}
		if cmd.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movements WHERE id = $1)`, m.ID).Scan(&exists); err != nil {
				return mapError("update movement", err)
			}
			if !exists {
				return domain.ErrNotFound
			}
			return domain.ErrConcurrencyConflict
		}
		if _, err := tx.Exec(ctx, `DELETE FROM movement_lines WHERE movement_id = $1`, m.ID); err != nil {
			return mapError("replace movement lines", err)
		}
		return insertLines(ctx, tx, m)
	})
	if err != nil {
		return err
	}
	m.Version = expectedVersion + 1
	return nil
}

func (r *MovementRepo) CountByTypeAndStatus(ctx context.Context, movementType entity.MovementType, statuses []entity.MovementStatus) (int, error) {
	where, args := buildMovementFilter(repository.MovementFilter{Type: movementType, Statuses: statuses}, nil)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM movements m`+where, args...).Scan(&n); err != nil {
		return 0, mapError("count movements", err)
	}
	return n, nil
}

// List orden (created_at DESC, id DESC); limit <= 0 devuelve todo.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter, after *repository.MovementCursor, limit int) ([]*entity.Movement, error) {
	where, args := buildMovementFilter(f, after)
	query := `SELECT ` + movementColumns + ` FROM movements m` + where + ` ORDER BY m.created_at DESC, m.id DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError("list movements", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *MovementRepo) IsProductReferenced(ctx context.Context, productID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movement_lines WHERE product_id = $1)`, productID).Scan(&ok)
	if err != nil {
		return false, mapError("product referenced", err)
	}
	return ok, nil
}

// loadLines trae las líneas de todos los movimientos en una sola consulta.
func (r *MovementRepo) loadLines(ctx context.Context, list []*entity.Movement) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Movement, len(list))
	ids := make([]string, 0, len(list))
	for _, m := range list {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT movement_id, line_no, product_id, COALESCE(source_warehouse_id, ''), COALESCE(dest_warehouse_id, ''), quantity
		FROM movement_lines WHERE movement_id = ANY($1) ORDER BY movement_id, line_no`, ids)
	if err != nil {
		return mapError("list movement lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var movementID string
		var l entity.MovementLine
		if err := rows.Scan(&movementID, &l.LineNo, &l.ProductID, &l.SourceWarehouseID, &l.DestWarehouseID, &l.Quantity); err != nil {
			return fmt.Errorf("scan movement line: %w", err)
		}
		m := byID[movementID]
		m.Lines = append(m.Lines, l)
	}
	return rows.Err()
}

func insertLines(ctx context.Context, tx pgx.Tx, m *entity.Movement) error {
	batch := &pgx.Batch{}
	for _, l := range m.Lines {
		batch.Queue(`
			INSERT INTO movement_lines (movement_id, line_no, product_id, source_warehouse_id, dest_warehouse_id, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, l.LineNo, l.ProductID, nullable(l.SourceWarehouseID), nullable(l.DestWarehouseID), l.Quantity,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapError("insert movement lines", err)
	}
	return nil
}

// buildMovementFilter arma el WHERE parametrizado sobre movements m.
func buildMovementFilter(f repository.MovementFilter, after *repository.MovementCursor) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		conds = append(conds, "m.type = "+arg(string(f.Type)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "m.status = ANY("+arg(statuses)+")")
	}
	if f.ProductID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM movement_lines l WHERE l.movement_id = m.id AND l.product_id = "+arg(f.ProductID)+")")
	}
	if f.WarehouseID != "" {
		p := arg(f.WarehouseID)
		conds = append(conds, "EXISTS (SELECT 1 FROM movement_lines l WHERE l.movement_id = m.id AND (l.source_warehouse_id = "+p+" OR l.dest_warehouse_id = "+p+"))")
	}
	if f.From != nil {
		conds = append(conds, "m.created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "m.created_at < "+arg(*f.To))
	}
	if after != nil {
		conds = append(conds, "(m.created_at, m.id) < ("+arg(after.CreatedAt)+", "+arg(after.ID)+")")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(&m.ID, &m.Type, &m.Status, &m.Reference, &m.Version,
		&m.ReversalOf, &m.ReversedBy, &m.CreatedBy,
		&m.CreatedAt, &m.UpdatedAt, &m.DoneAt, &m.CancelledAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
