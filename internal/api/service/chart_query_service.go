package service

import (
	"context"
	"time"

	"analytics/internal/api/models"
	"analytics/internal/audit"
	"analytics/internal/chartquery"
	"analytics/internal/domain"
	"analytics/internal/warehouse"

	"github.com/rs/zerolog"
)

// QueryRunner executes one parameterized statement. *warehouse.Executor satisfies it.
type QueryRunner interface {
	Query(ctx context.Context, query string, args ...any) (*warehouse.QueryResult, error)
}

// ChartQueryService runs the chart-data pipeline: resolve the dataset, validate
// the spec, build SQL, execute it and shape the rows.
type ChartQueryService struct {
	datasets  *DatasetService
	runner    QueryRunner
	columns   ColumnCatalog
	publisher audit.Publisher
	logger    zerolog.Logger
}

// NewChartQueryService builds the pipeline. columns may be nil, in which case
// identifiers are only checked lexically.
func NewChartQueryService(datasets *DatasetService, runner QueryRunner, columns ColumnCatalog, publisher audit.Publisher, logger zerolog.Logger) *ChartQueryService {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &ChartQueryService{
		datasets:  datasets,
		runner:    runner,
		columns:   columns,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute runs spec for username. Nothing reaches the warehouse unless the spec
// validates.
func (slf *ChartQueryService) Execute(ctx context.Context, username string, spec models.ChartQuerySpec) (*chartquery.Response, error) {
	dataset, err := slf.datasets.Resolve(spec.DatasetID)
	if err != nil {
		return nil, err
	}

	plan, err := chartquery.Validate(spec)
	if err != nil {
		return nil, err
	}

	if slf.columns != nil {
		known, err := slf.columns.Columns(ctx, dataset)
		if err != nil {
			slf.logger.Error().Err(err).Uint("datasetId", dataset.ID).Msg("Failed to load warehouse columns")
			return nil, &domain.QueryExecutionError{Op: "columns", Err: err}
		}
		if err := chartquery.CheckColumns(plan, known); err != nil {
			return nil, err
		}
	}

	query, args, err := chartquery.Build(plan, dataset)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := slf.runner.Query(ctx, query, args...)
	if err != nil {
		slf.logger.Error().Err(err).Uint("datasetId", dataset.ID).Str("username", username).Msg("Chart query failed")
		return nil, err
	}
	elapsed := time.Since(start)

	shaped, err := chartquery.ShapeRows(plan, result.Rows)
	if err != nil {
		slf.logger.Error().Err(err).Uint("datasetId", dataset.ID).Str("variant", plan.Variant.String()).Msg("Failed to shape chart rows")
		return nil, err
	}

	slf.publish(ctx, audit.Event{
		Kind:       audit.KindChart,
		Username:   username,
		DatasetID:  dataset.ID,
		Tables:     []string{dataset.QualifiedName()},
		Rows:       len(result.Rows),
		DurationMs: elapsed.Milliseconds(),
		At:         time.Now().UTC(),
	})
	return shaped, nil
}

func (slf *ChartQueryService) publish(ctx context.Context, event audit.Event) {
	if err := slf.publisher.Publish(ctx, event); err != nil {
		slf.logger.Warn().Err(err).Str("kind", event.Kind).Msg("Failed to publish audit event")
	}
}
