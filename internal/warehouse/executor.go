// Package warehouse runs single parameterized SELECT statements against the
// columnar stores. A connection lives for exactly one Query call.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"analytics/internal/domain"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// QueryResult holds the fetched rows keyed by result column name, in warehouse order.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

type Executor struct {
	provider ConnectionProvider
	logger   zerolog.Logger
}

func NewExecutor(provider ConnectionProvider, logger zerolog.Logger) *Executor {
	return &Executor{provider: provider, logger: logger}
}

// Query opens a connection, runs query with args and closes the connection on
// every path. query uses `?` placeholders. Failures are *domain.QueryExecutionError
// and are never retried here.
func (slf *Executor) Query(ctx context.Context, query string, args ...any) (result *QueryResult, err error) {
	bound, err := slf.provider.Placeholder().ReplacePlaceholders(query)
	if err != nil {
		return nil, &domain.QueryExecutionError{Op: "bind", Err: err}
	}

	start := time.Now()
	db, err := slf.provider.Open(ctx)
	if err != nil {
		slf.logger.Error().Err(err).Str("warehouse", slf.provider.Name()).Msg("Failed to connect to warehouse")
		return nil, &domain.QueryExecutionError{Op: "connect", Err: err}
	}
	defer func() {
		closeErr := db.Close()
		if closeErr == nil {
			return
		}
		slf.logger.Warn().Err(closeErr).Str("warehouse", slf.provider.Name()).Msg("Failed to close warehouse connection")
		var execErr *domain.QueryExecutionError
		if errors.As(err, &execErr) {
			execErr.Err = multierr.Append(execErr.Err, closeErr)
		}
	}()

	rows, err := db.QueryContext(ctx, bound, args...)
	if err != nil {
		slf.logger.Error().Err(err).Str("warehouse", slf.provider.Name()).Str("sql", bound).Msg("Warehouse query failed")
		return nil, &domain.QueryExecutionError{Op: "query", Err: err}
	}
	defer rows.Close()

	result, err = scanRows(rows)
	if err != nil {
		slf.logger.Error().Err(err).Str("warehouse", slf.provider.Name()).Msg("Failed to read warehouse rows")
		return nil, &domain.QueryExecutionError{Op: "scan", Err: err}
	}

	slf.logger.Debug().
		Str("warehouse", slf.provider.Name()).
		Int("rows", len(result.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("Warehouse query executed")
	return result, nil
}

func scanRows(rows *sql.Rows) (*QueryResult, error) {
	colNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get column names: %w", err)
	}

	result := &QueryResult{Columns: colNames, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(colNames))
		valuePtrs := make([]any, len(colNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]any, len(colNames))
		for i, col := range colNames {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return result, nil
}
