package testutil

import (
	"database/sql"
	"os"
	"strconv"

	"github.com/pthm/pgquery/internal/cli"
)

// DatabaseConfig describes an external database for integration tests.
// An empty URL means a testcontainers PostgreSQL instance is started instead.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// GetDatabaseConfig reads the test database from the environment.
//
// DATABASE_URL wins. Otherwise DATABASE_HOST (with DATABASE_USER,
// DATABASE_PASSWORD, DATABASE_PORT, DATABASE_NAME and DATABASE_SSLMODE)
// builds a URL the same way the CLI does.
func GetDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		MaxOpenConns: getEnvInt("DATABASE_MAX_CONNS", 10),
		MaxIdleConns: getEnvInt("DATABASE_MAX_IDLE_CONNS", 2),
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.URL = url
		return cfg
	}

	host := os.Getenv("DATABASE_HOST")
	if host == "" {
		return cfg
	}

	c := cli.Config{Database: cli.DatabaseConfig{
		Host:     host,
		Port:     getEnvInt("DATABASE_PORT", 5432),
		Name:     getEnv("DATABASE_NAME", "postgres"),
		User:     getEnv("DATABASE_USER", "postgres"),
		Password: os.Getenv("DATABASE_PASSWORD"),
		SSLMode:  getEnv("DATABASE_SSLMODE", "prefer"),
	}}
	if dsn, err := c.DSN(); err == nil {
		cfg.URL = dsn
	}
	return cfg
}

// apply sizes the connection pool of db.
func (c DatabaseConfig) apply(db *sql.DB) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
