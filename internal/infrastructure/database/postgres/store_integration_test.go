//go:build integration

// Integration tests for the run store against a real PostgreSQL instance.
// They require Docker and are gated behind the "integration" build tag.
package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/brankow/citation-extraction/internal/config"
	"github.com/brankow/citation-extraction/internal/infrastructure/database/postgres"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
)

// startStore launches a PostgreSQL 16 container and returns a connected store
// with the embedded migrations applied.
func startStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "citex_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	store, err := postgres.New(ctx, config.PostgresConfig{
		DSN:            fmt.Sprintf("postgres://test:test@%s:%s/citex_test?sslmode=disable", host, port.Port()),
		MaxConns:       2,
		ConnectTimeout: 10 * time.Second,
		MigrateOnStart: true,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func newTestRun(file string) postgres.RunRecord {
	return postgres.RunRecord{
		ID:         uuid.NewString(),
		File:       file,
		Paragraphs: 42,
		Articles:   7,
		Accessions: 2,
		Standards:  1,
		Duration:   1500 * time.Millisecond,
		Status:     "ok",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestStore_SaveAndListRuns(t *testing.T) {
	store := startStore(t)
	ctx := context.Background()

	run := newTestRun("EP1234567.xml")
	require.NoError(t, store.SaveRun(ctx, run))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	var found bool
	for _, r := range runs {
		if r.ID == run.ID {
			found = true
			assert.Equal(t, run.File, r.File)
			assert.Equal(t, run.Articles, r.Articles)
			assert.Equal(t, run.Duration, r.Duration)
			assert.Equal(t, "ok", r.Status)
		}
	}
	assert.True(t, found, "saved run not returned by ListRuns")
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	store := startStore(t)
	ctx := context.Background()

	older := newTestRun("older.xml")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newTestRun("newer.xml")
	require.NoError(t, store.SaveRun(ctx, older))
	require.NoError(t, store.SaveRun(ctx, newer))

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer.xml", runs[0].File)
	assert.Equal(t, "older.xml", runs[1].File)
}

func TestStore_HealthCheck(t *testing.T) {
	store := startStore(t)
	require.NoError(t, store.HealthCheck(context.Background()))
}
