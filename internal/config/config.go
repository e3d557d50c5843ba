// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Postgres PostgresConfig
	MySQL    MySQLConfig
	SQLite   SQLiteConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PostgresConfig holds connection settings for the author store.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

// MySQLConfig holds connection settings for the book store.
type MySQLConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// SQLiteConfig holds settings for the embedded review store.
type SQLiteConfig struct {
	Path string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	pgHost := flag.String("pg-host", "", "PostgreSQL host (default: localhost)")
	pgPort := flag.String("pg-port", "", "PostgreSQL port (default: 5432)")
	pgUser := flag.String("pg-user", "", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "", "PostgreSQL database (default: authors)")
	pgSSLMode := flag.String("pg-sslmode", "", "PostgreSQL sslmode (default: disable)")
	pgMaxConns := flag.String("pg-max-conns", "", "PostgreSQL pool max connections (default: 10)")
	pgMinConns := flag.String("pg-min-conns", "", "PostgreSQL pool min connections (default: 2)")

	mysqlHost := flag.String("mysql-host", "", "MySQL host (default: localhost)")
	mysqlPort := flag.String("mysql-port", "", "MySQL port (default: 3306)")
	mysqlUser := flag.String("mysql-user", "", "MySQL user")
	mysqlPassword := flag.String("mysql-password", "", "MySQL password")
	mysqlDatabase := flag.String("mysql-database", "", "MySQL database (default: books)")
	mysqlMaxOpenConns := flag.String("mysql-max-open-conns", "", "MySQL pool max open connections (default: 10)")
	mysqlMaxIdleConns := flag.String("mysql-max-idle-conns", "", "MySQL pool max idle connections (default: 5)")

	sqlitePath := flag.String("sqlite-path", "", "Path to the reviews database file (default: reviews.db)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Postgres: PostgresConfig{
			Host:     getConfigValue(*pgHost, "PG_HOST", "localhost"),
			Port:     getIntConfigValue(*pgPort, "PG_PORT", 5432),
			User:     getConfigValue(*pgUser, "PG_USER", "postgres"),
			Password: getConfigValue(*pgPassword, "PG_PASSWORD", ""),
			Database: getConfigValue(*pgDatabase, "PG_DATABASE", "authors"),
			SSLMode:  getConfigValue(*pgSSLMode, "PG_SSLMODE", "disable"),
			MaxConns: getIntConfigValue(*pgMaxConns, "PG_MAX_CONNS", 10),
			MinConns: getIntConfigValue(*pgMinConns, "PG_MIN_CONNS", 2),
		},
		MySQL: MySQLConfig{
			Host:     getConfigValue(*mysqlHost, "MYSQL_HOST", "localhost"),
			Port:     getIntConfigValue(*mysqlPort, "MYSQL_PORT", 3306),
			User:     getConfigValue(*mysqlUser, "MYSQL_USER", "root"),
			Password: getConfigValue(*mysqlPassword, "MYSQL_PASSWORD", ""),
			Database:     getConfigValue(*mysqlDatabase, "MYSQL_DATABASE", "books"),
			MaxOpenConns: getIntConfigValue(*mysqlMaxOpenConns, "MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getIntConfigValue(*mysqlMaxIdleConns, "MYSQL_MAX_IDLE_CONNS", 5),
		},
		SQLite: SQLiteConfig{
			Path: getConfigValue(*sqlitePath, "SQLITE_PATH", "reviews.db"),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Postgres.Host == "" || c.Postgres.Database == "" {
		return errors.New("postgres host and database are required")
	}
	if c.Postgres.MaxConns < 1 || c.Postgres.MinConns < 0 || c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("invalid postgres pool sizes: min %d, max %d", c.Postgres.MinConns, c.Postgres.MaxConns)
	}
	if c.MySQL.Host == "" || c.MySQL.Database == "" {
		return errors.New("mysql host and database are required")
	}
	if c.MySQL.MaxOpenConns < 1 || c.MySQL.MaxIdleConns < 0 || c.MySQL.MaxIdleConns > c.MySQL.MaxOpenConns {
		return fmt.Errorf("invalid mysql pool sizes: idle %d, open %d", c.MySQL.MaxIdleConns, c.MySQL.MaxOpenConns)
	}
	if c.SQLite.Path == "" {
		return errors.New("sqlite path is required")
	}

	return nil
}

// parseDurationValue resolves a duration setting through the usual precedence
// chain and parses it.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), s, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
