// Package postgres provides the optional run-history store: one row per
// processed document recording what the pipeline found and how long it took.
// The store is entirely off the hot path; extraction works without it.
package postgres

import (
	"context"
	"embed"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brankow/citation-extraction/internal/config"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunRecord is one processed document.
type RunRecord struct {
	ID         string
	File       string
	Paragraphs int
	Articles   int
	Accessions int
	Standards  int
	Duration   time.Duration
	Status     string
	CreatedAt  time.Time
}

// Store persists extraction runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// New connects to the database and verifies the connection.  Callers should
// not construct a store when cfg.DSN is empty; that disables run recording.
func New(ctx context.Context, cfg config.PostgresConfig, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreConn, "parse postgres DSN")
	}
	poolCfg.MaxConns = cfg.MaxConns

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreConn, "create postgres pool")
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreConn, "postgres connection failed")
	}

	store := &Store{pool: pool, log: log.Named("runstore")}
	if cfg.MigrateOnStart {
		if err := Migrate(cfg.DSN); err != nil {
			pool.Close()
			return nil, err
		}
	}

	log.Info("run store connected", logging.Int("max_conns", int(cfg.MaxConns)))
	return store, nil
}

// Migrate applies all pending schema migrations from the embedded files.
func Migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreMigrate, "load embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreMigrate, "create migrate instance")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreMigrate, "apply migrations")
	}
	return nil
}

// migrateURL rewrites a postgres DSN to the scheme the migrate pgx/v5 driver
// registers under.
func migrateURL(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgresql://"):
		return "pgx5://" + strings.TrimPrefix(dsn, "postgresql://")
	case strings.HasPrefix(dsn, "postgres://"):
		return "pgx5://" + strings.TrimPrefix(dsn, "postgres://")
	default:
		return dsn
	}
}

// SaveRun inserts one run record.
func (s *Store) SaveRun(ctx context.Context, run RunRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO extraction_runs (
			id, file, paragraphs, articles, accessions, standards,
			duration_ms, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		run.ID, run.File, run.Paragraphs, run.Articles, run.Accessions,
		run.Standards, run.Duration.Milliseconds(), run.Status, run.CreatedAt,
	)
	if err != nil {
		s.log.Error("insert run failed", logging.String("run_id", run.ID), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "insert extraction run")
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, file, paragraphs, articles, accessions, standards,
		       duration_ms, status, created_at
		FROM extraction_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "query extraction runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.File, &r.Paragraphs, &r.Articles,
			&r.Accessions, &r.Standards, &durationMs, &r.Status, &r.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "scan extraction run")
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "iterate extraction runs")
	}
	return runs, nil
}

// HealthCheck reports store reachability for readiness checks.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreConn, "run store health check failed")
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
