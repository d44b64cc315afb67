package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
// Money is stored as decimal text to keep it exact.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets history reads proceed while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			generated_at   INTEGER NOT NULL,
			source         TEXT,
			duration_ms    INTEGER,
			scenario_count INTEGER,
			sweep_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at)`,

		`CREATE TABLE IF NOT EXISTS scenario_results (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			position      INTEGER NOT NULL,
			name          TEXT NOT NULL,
			periods       INTEGER,
			compounding   TEXT,
			final_balance TEXT,
			principal     TEXT,
			gain          TEXT,
			total_tax     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scenario_run ON scenario_results(run_id)`,

		`CREATE TABLE IF NOT EXISTS period_balances (
			run_id    TEXT NOT NULL,
			scenario  TEXT NOT NULL,
			period    INTEGER NOT NULL,
			balance   TEXT,
			principal TEXT,
			gain      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_period_run ON period_balances(run_id, scenario)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun stores the run, its scenario summaries and every period balance in one transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, report *domain.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, generated_at, source, duration_ms, scenario_count, sweep_count) VALUES (?, ?, ?, ?, ?, ?)`,
		report.RunID, report.GeneratedAt.UnixMilli(), report.Source, report.DurationMs,
		len(report.Scenarios), len(report.Sweeps),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	scenStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scenario_results (run_id, position, name, periods, compounding, final_balance, principal, gain, total_tax)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare scenario insert: %w", err)
	}
	defer scenStmt.Close()

	rowStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO period_balances (run_id, scenario, period, balance, principal, gain) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare period insert: %w", err)
	}
	defer rowStmt.Close()

	for i, s := range report.Scenarios {
		if _, err := scenStmt.ExecContext(ctx, report.RunID, i, s.Name, s.Periods, s.Compounding,
			s.Summary.FinalBalance.String(), s.Summary.Principal.String(),
			s.Summary.Gain.String(), s.Summary.TotalTax.String(),
		); err != nil {
			return fmt.Errorf("insert scenario %s: %w", s.Name, err)
		}
		for _, row := range s.Rows {
			if _, err := rowStmt.ExecContext(ctx, report.RunID, s.Name, row.Period,
				row.Balance.String(), row.Principal.String(), row.Gain.String(),
			); err != nil {
				return fmt.Errorf("insert period %d of %s: %w", row.Period, s.Name, err)
			}
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRecorder) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, generated_at, source, duration_ms, scenario_count, sweep_count
		 FROM runs ORDER BY generated_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var generated int64
		if err := rows.Scan(&s.RunID, &generated, &s.Source, &s.DurationMs, &s.Scenarios, &s.Sweeps); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.GeneratedAt = time.UnixMilli(generated).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// RunScenarios returns the scenario summaries of a run in deck order.
func (r *SQLiteRecorder) RunScenarios(ctx context.Context, runID string) ([]ScenarioRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, periods, compounding, final_balance, principal, gain, total_tax
		 FROM scenario_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	var out []ScenarioRecord
	for rows.Next() {
		var rec ScenarioRecord
		var final, principal, gain, tax string
		if err := rows.Scan(&rec.Name, &rec.Periods, &rec.Compounding, &final, &principal, &gain, &tax); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		if err := parseAmounts(
			amount{final, &rec.FinalBalance}, amount{principal, &rec.Principal},
			amount{gain, &rec.Gain}, amount{tax, &rec.TotalTax},
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ScenarioBalances returns the stored period balances of one scenario of a run.
func (r *SQLiteRecorder) ScenarioBalances(ctx context.Context, runID, scenario string) ([]PeriodBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT period, balance, principal, gain
		 FROM period_balances WHERE run_id = ? AND scenario = ? ORDER BY period`, runID, scenario)
	if err != nil {
		return nil, fmt.Errorf("query period balances: %w", err)
	}
	defer rows.Close()

	var out []PeriodBalance
	for rows.Next() {
		var pb PeriodBalance
		var balance, principal, gain string
		if err := rows.Scan(&pb.Period, &balance, &principal, &gain); err != nil {
			return nil, fmt.Errorf("scan period balance: %w", err)
		}
		if err := parseAmounts(
			amount{balance, &pb.Balance}, amount{principal, &pb.Principal}, amount{gain, &pb.Gain},
		); err != nil {
			return nil, err
		}
		out = append(out, pb)
	}
	return out, rows.Err()
}

type amount struct {
	src string
	dst *decimal.Decimal
}

func parseAmounts(amounts ...amount) error {
	for _, a := range amounts {
		d, err := decimal.NewFromString(a.src)
		if err != nil {
			return fmt.Errorf("parse stored amount %q: %w", a.src, err)
		}
		*a.dst = d
	}
	return nil
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
