package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"analytics/internal/chartquery"
	"analytics/internal/domain"
	"analytics/internal/warehouse"
	"analytics/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// WarehouseIntrospector reads the warehouse's information_schema.
type WarehouseIntrospector interface {
	Schemas(ctx context.Context) ([]string, error)
	Tables(ctx context.Context, schema string) ([]pkg.TableMetadata, error)
	Columns(ctx context.Context, schema, table string) ([]pkg.ColumnMetadata, error)
}

// PgxIntrospector opens a short-lived pgx pool on the warehouse for each call.
type PgxIntrospector struct {
	cfg     warehouse.Config
	timeout time.Duration
}

func NewPgxIntrospector(cfg warehouse.Config) *PgxIntrospector {
	return &PgxIntrospector{cfg: cfg, timeout: 30 * time.Second}
}

func (slf *PgxIntrospector) withPool(ctx context.Context, fn func(context.Context, *pgxpool.Pool) error) error {
	ctx, cancel := context.WithTimeout(ctx, slf.timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, slf.cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer pool.Close()
	return fn(ctx, pool)
}

func (slf *PgxIntrospector) Schemas(ctx context.Context) ([]string, error) {
	var schemas []string
	err := slf.withPool(ctx, func(ctx context.Context, pool *pgxpool.Pool) (err error) {
		schemas, err = pkg.FindWarehouseSchemas(ctx, pool)
		return err
	})
	return schemas, err
}

func (slf *PgxIntrospector) Tables(ctx context.Context, schema string) ([]pkg.TableMetadata, error) {
	var tables []pkg.TableMetadata
	err := slf.withPool(ctx, func(ctx context.Context, pool *pgxpool.Pool) (err error) {
		tables, err = pkg.FindWarehouseTables(ctx, pool, schema)
		return err
	})
	return tables, err
}

func (slf *PgxIntrospector) Columns(ctx context.Context, schema, table string) ([]pkg.ColumnMetadata, error) {
	var columns []pkg.ColumnMetadata
	err := slf.withPool(ctx, func(ctx context.Context, pool *pgxpool.Pool) (err error) {
		columns, err = pkg.FindWarehouseColumns(ctx, pool, schema, table)
		return err
	})
	return columns, err
}

// DatabaseMetadataService browses warehouse schemas, tables and columns.
type DatabaseMetadataService struct {
	introspector WarehouseIntrospector
	logger       zerolog.Logger
}

func NewDatabaseMetadataService(introspector WarehouseIntrospector, logger zerolog.Logger) *DatabaseMetadataService {
	return &DatabaseMetadataService{introspector: introspector, logger: logger}
}

func (slf *DatabaseMetadataService) IntrospectSchemas(ctx context.Context) ([]string, error) {
	schemas, err := slf.introspector.Schemas(ctx)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to fetch warehouse schemas")
		return nil, fmt.Errorf("failed to fetch schemas: %w", err)
	}
	if schemas == nil {
		schemas = []string{}
	}
	return schemas, nil
}

func (slf *DatabaseMetadataService) IntrospectTables(ctx context.Context, schema string) ([]pkg.TableMetadata, error) {
	schema = strings.TrimSpace(schema)
	if err := requireIdentifier("schema_name", schema); err != nil {
		return nil, err
	}

	tables, err := slf.introspector.Tables(ctx, schema)
	if err != nil {
		slf.logger.Error().Err(err).Str("schema", schema).Msg("Failed to fetch warehouse tables")
		return nil, fmt.Errorf("failed to fetch tables: %w", err)
	}
	if tables == nil {
		tables = []pkg.TableMetadata{}
	}
	return tables, nil
}

// IntrospectColumns fails with NotFound when the table is missing or has no columns.
func (slf *DatabaseMetadataService) IntrospectColumns(ctx context.Context, schema, table string) ([]pkg.ColumnMetadata, error) {
	schema, table = strings.TrimSpace(schema), strings.TrimSpace(table)
	if err := requireIdentifier("schema_name", schema); err != nil {
		return nil, err
	}
	if err := requireIdentifier("table_name", table); err != nil {
		return nil, err
	}

	columns, err := slf.introspector.Columns(ctx, schema, table)
	if err != nil {
		slf.logger.Error().Err(err).Str("table", schema+"."+table).Msg("Failed to fetch warehouse columns")
		return nil, fmt.Errorf("failed to fetch columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, domain.ErrNotFound("table %s.%s not found or has no columns", schema, table)
	}
	return columns, nil
}

func requireIdentifier(name, value string) error {
	if value == "" {
		return domain.ErrValidation("%s is required", name)
	}
	if !chartquery.IsIdentifier(value) {
		return domain.ErrValidation("invalid %s: %q", name, value)
	}
	return nil
}
