package service

import (
	"context"
	"sync"
	"testing"

	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/audit"
	"analytics/internal/warehouse"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate catalog")
	return db
}

type runnerCall struct {
	query string
	args  []any
}

// fakeRunner records every statement and answers with a canned result.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []runnerCall
	result *warehouse.QueryResult
	err    error
}

func (f *fakeRunner) Query(_ context.Context, query string, args ...any) (*warehouse.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, runnerCall{query: query, args: args})
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &warehouse.QueryResult{Columns: []string{}, Rows: []map[string]any{}}, nil
	}
	return f.result, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() {}

type fakeColumns struct {
	names []string
	err   error
}

func (f fakeColumns) Columns(context.Context, models.Dataset) ([]string, error) {
	return f.names, f.err
}

// chartFixture wires the chart services over an in-memory catalog.
type chartFixture struct {
	db        *gorm.DB
	runner    *fakeRunner
	publisher *recordingPublisher
	datasets  *DatasetService
	queries   *ChartQueryService
	charts    *ChartService
	dataset   models.Dataset
}

func newChartFixture(t *testing.T, columns ColumnCatalog) *chartFixture {
	db := setupServiceTestDB(t)
	log := zerolog.Nop()

	f := &chartFixture{db: db, runner: &fakeRunner{}, publisher: &recordingPublisher{}}
	f.datasets = NewDatasetService(repo.NewDatasetRepository(db), log)
	f.queries = NewChartQueryService(f.datasets, f.runner, columns, f.publisher, log)
	f.charts = NewChartService(repo.NewChartRepository(db), repo.NewShareRepository(db), f.datasets, f.queries, log)

	ds, err := f.datasets.Create(models.Dataset{Database: "dev", SchemaName: "public", Table: "sales"})
	require.NoError(t, err)
	f.dataset = *ds
	return f
}
