package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres

	"github.com/xela07ax/cyberinvest-pro/internal/audit"
	"github.com/xela07ax/cyberinvest-pro/internal/infra"
)

const schema = `CREATE TABLE IF NOT EXISTS analysis_runs (
	id           UUID PRIMARY KEY,
	trace_id     TEXT NOT NULL,
	kind         TEXT NOT NULL,
	industry     TEXT NOT NULL,
	company_size TEXT NOT NULL,
	budget       BIGINT NOT NULL,
	used_assets  INTEGER NOT NULL,
	status       TEXT NOT NULL,
	attempts     INTEGER NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	duration_ms  BIGINT NOT NULL,
	timestamp    TIMESTAMPTZ NOT NULL
)`

// Количество колонок в таблице analysis_runs
const numFields = 12

// RunRepo — хранилище журнала запусков. Реализует audit.Storage.
type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(cfg infra.DatabaseConfig) (*RunRepo, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(int(cfg.MinConns))
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	return &RunRepo{db: db}, nil
}

// NewRunRepoWithDB используется в тестах и для общего пула соединений.
func NewRunRepoWithDB(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema создает таблицу, если ее нет.
func (r *RunRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create analysis_runs: %w", err)
	}
	return nil
}

func (r *RunRepo) Close() error {
	return r.db.Close()
}

func (r *RunRepo) WriteBatch(ctx context.Context, events []audit.RunEvent) error {
	if len(events) == 0 {
		return nil
	}
	query, vals := buildInsert(events)
	_, err := r.db.ExecContext(ctx, query, vals...)
	return err
}

// buildInsert динамически строит запрос для пакетной вставки
func buildInsert(events []audit.RunEvent) (string, []interface{}) {
	placeholders := make([]string, 0, len(events))
	vals := make([]interface{}, 0, len(events)*numFields)

	for i, e := range events {
		p := i * numFields
		ph := make([]string, numFields)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", p+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")

		vals = append(vals,
			e.ID, e.TraceID, e.Kind, e.Industry, e.CompanySize, e.Budget,
			e.UsedAssets, e.Status, int64(e.Attempts), e.Error, e.DurationMs, e.Timestamp,
		)
	}

	query := "INSERT INTO analysis_runs (id, trace_id, kind, industry, company_size, budget, used_assets, status, attempts, error, duration_ms, timestamp) VALUES " +
		strings.Join(placeholders, ", ")
	return query, vals
}
