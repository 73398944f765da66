package storage

// sqlite.go: historial de cálculos.
//
// Estrategia:
//   - `runs`: una fila por cálculo con parámetros, precio y constantes del modelo.
//   - `nodes`: el retículo completo, una fila por (run_id, step, up_moves).
//     Se inserta en la misma transacción que el run, con un statement preparado.
//   - Prune automático al arrancar: runs > 30d (los nodos caen en cascada).

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/binotree/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    id           TEXT PRIMARY KEY,
    created_at   DATETIME NOT NULL,
    option_type  TEXT     NOT NULL,
    s0           REAL     NOT NULL,
    k            REAL     NOT NULL,
    r            REAL     NOT NULL,
    t            REAL     NOT NULL,
    sigma        REAL     NOT NULL,
    n            INTEGER  NOT NULL,
    option_price REAL     NOT NULL,
    u            REAL     NOT NULL,
    d            REAL     NOT NULL,
    p            REAL     NOT NULL,
    dt           REAL     NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
    run_id       TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step         INTEGER NOT NULL,
    up_moves     INTEGER NOT NULL,
    stock_price  REAL    NOT NULL,
    option_value REAL    NOT NULL,
    PRIMARY KEY (run_id, step, up_moves)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
`

const retentionRuns = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia los runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; además ":memory:" es por conexión
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db, now: time.Now}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el resultado y todos sus nodos en una transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, result domain.PricingResult) (string, error) {
	id := uuid.New().String()
	p := result.Params

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, option_type, s0, k, r, t, sigma, n,
		                  option_price, u, d, p, dt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UTC(), p.Type.String(), p.S0, p.K, p.R, p.T, p.Sigma, p.N,
		result.OptionPrice, result.U, result.D, result.P, result.Dt,
	); err != nil {
		return "", fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (run_id, step, up_moves, stock_price, option_value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for _, step := range result.Lattice {
		for _, node := range step {
			if _, err := stmt.ExecContext(ctx, id, node.Step, node.UpMoves, node.StockPrice, node.OptionValue); err != nil {
				return "", fmt.Errorf("storage.SaveRun: insert node (%d,%d): %w", node.Step, node.UpMoves, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return id, nil
}

// GetRun reconstruye un cálculo con su retículo completo.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, option_type, s0, k, r, t, sigma, n,
		       option_price, u, d, p, dt
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Run{}, fmt.Errorf("storage.GetRun %s: %w", id, domain.ErrRunNotFound)
	}
	if err != nil {
		return domain.Run{}, fmt.Errorf("storage.GetRun %s: %w", id, err)
	}

	lattice, err := s.loadLattice(ctx, id, run.Result.Params.N)
	if err != nil {
		return domain.Run{}, err
	}
	run.Result.Lattice = lattice
	return run, nil
}

// ListRuns devuelve las cabeceras de los runs creados en [from, to], más recientes primero.
func (s *SQLiteStorage) ListRuns(ctx context.Context, from, to time.Time) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, option_type, s0, k, r, t, sigma, n,
		       option_price, u, d, p, dt
		FROM runs
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at DESC, id
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (domain.Run, error) {
	var run domain.Run
	var typ string
	r := &run.Result
	if err := sc.Scan(
		&run.ID, &run.CreatedAt, &typ,
		&r.Params.S0, &r.Params.K, &r.Params.R, &r.Params.T, &r.Params.Sigma, &r.Params.N,
		&r.OptionPrice, &r.U, &r.D, &r.P, &r.Dt,
	); err != nil {
		return domain.Run{}, err
	}
	r.Params.Type = domain.OptionType(typ)
	return run, nil
}

// loadLattice lee los nodos de un run y los coloca en su posición (step, up_moves).
func (s *SQLiteStorage) loadLattice(ctx context.Context, id string, n int) (domain.Lattice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, up_moves, stock_price, option_value
		FROM nodes WHERE run_id = ?
		ORDER BY step, up_moves`, id)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRun %s: query nodes: %w", id, err)
	}
	defer rows.Close()

	lattice := make(domain.Lattice, n+1)
	for i := range lattice {
		lattice[i] = make([]domain.TreeNode, i+1)
	}

	count := 0
	for rows.Next() {
		var node domain.TreeNode
		if err := rows.Scan(&node.Step, &node.UpMoves, &node.StockPrice, &node.OptionValue); err != nil {
			return nil, fmt.Errorf("storage.GetRun %s: scan node: %w", id, err)
		}
		if node.Step < 0 || node.Step > n || node.UpMoves < 0 || node.UpMoves > node.Step {
			return nil, fmt.Errorf("storage.GetRun %s: node (%d,%d) outside lattice of %d steps",
				id, node.Step, node.UpMoves, n)
		}
		lattice[node.Step][node.UpMoves] = node
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetRun %s: %w", id, err)
	}
	if want := (n + 1) * (n + 2) / 2; count != want {
		return nil, fmt.Errorf("storage.GetRun %s: incomplete lattice: %d of %d nodes", id, count, want)
	}
	return lattice, nil
}

// pruneOld elimina runs antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := s.now().UTC().Add(-retentionRuns)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
}
