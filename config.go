package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Mode    string
	ApiPort string
	Tenant  string
	Catalog struct {
		Driver       string // postgres | mysql
		Host         string
		Port         string
		User         string
		Password     string
		DatabaseName string
		SSLMode      string
	}
	Warehouse struct {
		Host         string
		Port         string
		User         string
		Password     string
		DatabaseName string
		SSLMode      string
		// When enabled, chart field names are checked against information_schema before execution.
		StrictColumnCheck bool
		ColumnCacheTTL    time.Duration
	}
	ClickHouse struct {
		Addr         string
		User         string
		Password     string
		DatabaseName string
		MaxExecution int // seconds
	}
	JWTConfig struct {
		Secret     string
		Expiration int // in minutes
	}
	RedisConfig struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Lockout struct {
		MaxAttempts int
		Window      time.Duration
	}
	LLM struct {
		Provider string // ollama | gemini
		Host     string
		Model    string
		APIKey   string
		Timeout  time.Duration
	}
	NATS struct {
		URL string
	}
}

var config AppConfig

// InitConfig loads envfile (when present) into the process environment and builds the AppConfig.
// It does not open any connection, see Connect.
func InitConfig(envfile string) {
	if err := godotenv.Load(envfile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading %s file: %s", envfile, err)
	}
	config = AppConfig{
		Mode:    GetEnv("RUN_MODE", "production"),
		ApiPort: GetEnv("API_PORT", "8000"),
		Tenant:  GetEnv("TENANT", "default"),
	}

	config.Catalog.Driver = GetEnv("CATALOG_DRIVER", "postgres")
	config.Catalog.Host = getEnvOrPanic("DB_HOSTNAME")
	config.Catalog.Port = getEnvOrPanic("DB_PORT")
	config.Catalog.User = getEnvOrPanic("DB_USERNAME")
	config.Catalog.Password = getEnvOrPanic("DB_PASSWORD")
	config.Catalog.DatabaseName = getEnvOrPanic("DB_NAME")
	config.Catalog.SSLMode = GetEnv("DB_SSL_MODE", "disable")

	config.Warehouse.Host = getEnvOrPanic("REDSHIFT_HOST")
	config.Warehouse.Port = GetEnv("REDSHIFT_PORT", "5439")
	config.Warehouse.User = getEnvOrPanic("REDSHIFT_USER")
	config.Warehouse.Password = getEnvOrPanic("REDSHIFT_PASSWORD")
	config.Warehouse.DatabaseName = getEnvOrPanic("REDSHIFT_DB")
	config.Warehouse.SSLMode = GetEnv("REDSHIFT_SSL_MODE", "require")
	config.Warehouse.StrictColumnCheck = GetEnv("STRICT_COLUMN_CHECK", "false") == "true"
	config.Warehouse.ColumnCacheTTL = time.Duration(getIntEnvOrDefault("COLUMN_CACHE_TTL_SECONDS", 300)) * time.Second

	config.ClickHouse.Addr = GetEnv("CLICKHOUSE_ADDR", "localhost:9000")
	config.ClickHouse.User = GetEnv("CLICKHOUSE_USER", "default")
	config.ClickHouse.Password = GetEnv("CLICKHOUSE_PASSWORD", "")
	config.ClickHouse.DatabaseName = GetEnv("CLICKHOUSE_DB", "default")
	config.ClickHouse.MaxExecution = getIntEnvOrDefault("CLICKHOUSE_MAX_EXECUTION_SECONDS", 60)

	config.JWTConfig.Secret = getEnvOrPanic("JWT_SECRET")
	config.JWTConfig.Expiration = getIntEnvOrDefault("JWT_EXPIRATION_MINUTES", 60)

	config.RedisConfig.Host = GetEnv("REDIS_HOST", "localhost")
	config.RedisConfig.Port = GetEnv("REDIS_PORT", "6379")
	config.RedisConfig.Password = GetEnv("REDIS_PASSWORD", "")
	config.RedisConfig.DB = getIntEnvOrDefault("REDIS_DB", 0)

	config.Lockout.MaxAttempts = getIntEnvOrDefault("MAX_ATTEMPTS", 5)
	config.Lockout.Window = time.Duration(getIntEnvOrDefault("LOCKOUT_TIME", 300)) * time.Second

	config.LLM.Provider = strings.ToLower(GetEnv("LLM_PROVIDER", "ollama"))
	config.LLM.Host = GetEnv("LLM_HOST", "http://localhost:11434")
	config.LLM.Model = GetEnv("LLM_MODEL", "llama3.1")
	config.LLM.APIKey = GetEnv("LLM_API_KEY", "")
	config.LLM.Timeout = time.Duration(getIntEnvOrDefault("LLM_TIMEOUT_SECONDS", 120)) * time.Second

	config.NATS.URL = GetEnv("NATS_URL", "")

	Logger = initLogger()
}

func GetConfig() AppConfig {
	return config
}

// Connect opens the catalog database and the redis client described by cfg.
func Connect(cfg AppConfig) (*Clients, error) {
	db, err := connectToCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	rdb, err := connectToRedis(cfg.RedisConfig.Host, cfg.RedisConfig.Port, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return &Clients{DB: db, Redis: rdb}, nil
}

func getEnvOrPanic(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s must be set", key)
	}
	return value
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func connectToCatalog(cfg AppConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	c := cfg.Catalog
	switch c.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.DatabaseName, c.Port, c.SSLMode)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DatabaseName)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", c.Driver)
	}

	var err error
	var db *gorm.DB
	var conn *sql.DB
	if db, err = gorm.Open(dialector,
		&gorm.Config{
			Logger: logger.New(
				log.New(os.Stdout, "\r\n", log.LstdFlags),
				logger.Config{
					SlowThreshold: 0,
					LogLevel:      logger.Error,
				},
			),
			TranslateError: true,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
			NamingStrategy: schema.NamingStrategy{
				SingularTable: false,
			}}); err != nil {
		return nil, err
	}
	if conn, err = db.DB(); err != nil {
		return nil, err
	}
	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

func connectToRedis(host string, port string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
