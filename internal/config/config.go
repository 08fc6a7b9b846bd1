// Package config reads process configuration from the environment, in
// the teacher's cmd/server/main.go style: os.Getenv with fallbacks, no
// configuration framework.
package config

import (
	"fmt"
	"os"
)

// Config is the engine's process-level configuration.
type Config struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
	// DBConnStr, if non-empty, selects the Postgres repositories and
	// postgres.Scope instead of the in-memory default. Built the same way the teacher's
	// main.go assembles its Postgres DSN from individual DB_* vars when
	// DB_CONN_STR itself is unset.
	DBConnStr string
}

// Load reads Config from the environment.
func Load() Config {
	return Config{
		LogLevel:  getenv("LOG_LEVEL", "info"),
		DBConnStr: resolveDBConnStr(),
	}
}

// resolveDBConnStr prefers DB_CONN_STR whole; failing that, it assembles
// a DSN from the individual DB_* vars the way the teacher's main.go does.
// An unset DB_HOST (alongside an unset DB_CONN_STR) means "no Postgres
// backend configured" and returns "", selecting the in-memory default.
func resolveDBConnStr() string {
	if v := os.Getenv("DB_CONN_STR"); v != "" {
		return v
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}

	port := getenv("DB_PORT", "5432")
	user := getenv("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	dbname := getenv("DB_NAME", "auctions")
	sslmode := getenv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
