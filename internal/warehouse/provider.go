package warehouse

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

// ConnectionProvider hands out a fresh connection per operation. The caller
// owns the returned handle and must close it.
type ConnectionProvider interface {
	Open(ctx context.Context) (*sql.DB, error)
	// Placeholder is the bind-parameter style the driver expects.
	Placeholder() sq.PlaceholderFormat
	Name() string
}

// Config is the connection bundle of a warehouse endpoint.
type Config struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN renders the keyword/value form understood by both lib/pq and pgx.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s connect_timeout=10",
		c.Host, c.Port, c.Database, c.User, c.Password, sslMode)
}

// PostgresProvider connects to Redshift or any Postgres wire-compatible warehouse.
type PostgresProvider struct {
	cfg Config
}

func NewPostgresProvider(cfg Config) *PostgresProvider {
	return &PostgresProvider{cfg: cfg}
}

func (p *PostgresProvider) Name() string { return "redshift" }

func (p *PostgresProvider) Placeholder() sq.PlaceholderFormat { return sq.Dollar }

func (p *PostgresProvider) Open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", p.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	db.SetConnMaxLifetime(30 * time.Second)
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}
	return db, nil
}

// ClickHouseConfig describes the ClickHouse endpoint used by the natural-language path.
type ClickHouseConfig struct {
	Addr         string
	Database     string
	User         string
	Password     string
	MaxExecution int
	TLS          bool
}

type ClickHouseProvider struct {
	cfg ClickHouseConfig
}

func NewClickHouseProvider(cfg ClickHouseConfig) *ClickHouseProvider {
	return &ClickHouseProvider{cfg: cfg}
}

func (p *ClickHouseProvider) Name() string { return "clickhouse" }

func (p *ClickHouseProvider) Placeholder() sq.PlaceholderFormat { return sq.Question }

func (p *ClickHouseProvider) Open(ctx context.Context) (*sql.DB, error) {
	maxExecution := p.cfg.MaxExecution
	if maxExecution <= 0 {
		maxExecution = 60
	}
	opts := &clickhouse.Options{
		Addr: []string{p.cfg.Addr},
		Auth: clickhouse.Auth{
			Database: p.cfg.Database,
			Username: p.cfg.User,
			Password: p.cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": maxExecution,
		},
		DialTimeout: 10 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}
	if p.cfg.TLS {
		opts.TLS = &tls.Config{}
	}

	db := clickhouse.OpenDB(opts)
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Second)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return db, nil
}
