package pkg

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
	"github.com/jackc/pgx/v5"
)

// ColumnMetadata describes one column of a warehouse table.
type ColumnMetadata struct {
	TableSchema string `json:"table_schema"`
	TableName   string `json:"table_name"`
	ColumnName  string `json:"column_name"`
	DataType    string `json:"data_type"`
	IsNullable  string `json:"is_nullable"`
}

// PgxQuerier is satisfied by *pgx.Conn and *pgxpool.Pool.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FindWarehouseColumns reads the column catalog of schema.table from information_schema.
func FindWarehouseColumns(ctx context.Context, conn PgxQuerier, schema, table string) ([]ColumnMetadata, error) {
	query := `
        SELECT
            table_schema,
            table_name,
            column_name,
            data_type,
            is_nullable
        FROM information_schema.columns
        WHERE table_schema = $1 AND table_name = $2
        ORDER BY ordinal_position
    `

	rows, err := conn.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var metadata []ColumnMetadata
	for rows.Next() {
		var cm ColumnMetadata
		if err := rows.Scan(&cm.TableSchema, &cm.TableName, &cm.ColumnName, &cm.DataType, &cm.IsNullable); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		metadata = append(metadata, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return metadata, nil
}

// TableMetadata names one base table of the warehouse.
type TableMetadata struct {
	SchemaName string `json:"schema_name"`
	TableName  string `json:"table_name"`
}

// FindWarehouseSchemas lists user schemas, skipping the system catalogs.
func FindWarehouseSchemas(ctx context.Context, conn PgxQuerier) ([]string, error) {
	query := `
        SELECT schema_name
        FROM information_schema.schemata
        WHERE schema_name NOT IN ('pg_catalog', 'information_schema')
        ORDER BY schema_name
    `

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		schemas = append(schemas, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return schemas, nil
}

// FindWarehouseTables lists the base tables of schema.
func FindWarehouseTables(ctx context.Context, conn PgxQuerier, schema string) ([]TableMetadata, error) {
	query := `
        SELECT table_schema, table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN ('pg_catalog', 'information_schema')
          AND table_schema = $1
        ORDER BY table_schema, table_name
    `

	rows, err := conn.Query(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var tables []TableMetadata
	for rows.Next() {
		var tm TableMetadata
		if err := rows.Scan(&tm.SchemaName, &tm.TableName); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		tables = append(tables, tm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tables, nil
}

var selectPrefix = regexp.MustCompile(`(?i)^\s*SELECT\b`)

// IsSafeSelect reports whether sql is a single read-only SELECT. Statements the
// MySQL-flavoured parser cannot read (ClickHouse functions, for instance) are
// accepted when they start with SELECT and hold no statement separator.
func IsSafeSelect(sql string) bool {
	trimmed := strings.TrimSuffix(strings.TrimSpace(sql), ";")
	if trimmed == "" || strings.Contains(trimmed, ";") {
		return false
	}
	stmt, err := sqlparser.Parse(trimmed)
	if err != nil {
		return selectPrefix.MatchString(trimmed)
	}
	switch stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union:
		return true
	default:
		return false
	}
}
