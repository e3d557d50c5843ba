package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Postgres: PostgresConfig{Host: "localhost", Database: "authors", MaxConns: 10, MinConns: 2},
		MySQL:    MySQLConfig{Host: "localhost", Database: "books", MaxOpenConns: 10, MaxIdleConns: 5},
		SQLite:   SQLiteConfig{Path: "reviews.db"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_MissingStoreSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.Database = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.MySQL.Host = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.SQLite.Path = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_PoolSizes(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.MaxConns = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Postgres.MinConns = 20
	assert.Error(t, cfg.Validate(), "min above max")

	cfg = validConfig()
	cfg.MySQL.MaxOpenConns = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.MySQL.MaxIdleConns = 20
	assert.Error(t, cfg.Validate(), "idle above open")

	cfg = validConfig()
	cfg.Postgres.MinConns = 0
	assert.NoError(t, cfg.Validate())
}

func TestGetIntConfigValue_PoolSizesFromEnv(t *testing.T) {
	t.Setenv("BOOKGRAPH_TEST_POOL", "25")

	assert.Equal(t, 25, getIntConfigValue("", "BOOKGRAPH_TEST_POOL", 10))
	assert.Equal(t, 7, getIntConfigValue("7", "BOOKGRAPH_TEST_POOL", 10))
	assert.Equal(t, 10, getIntConfigValue("", "BOOKGRAPH_TEST_POOL_MISSING", 10))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("BOOKGRAPH_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "BOOKGRAPH_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "BOOKGRAPH_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "BOOKGRAPH_TEST_MISSING", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nBOOKGRAPH_ENV_FILE_KEY=quoted\n\nBOOKGRAPH_ENV_FILE_OTHER=\"value\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("BOOKGRAPH_ENV_FILE_KEY", "")
	os.Unsetenv("BOOKGRAPH_ENV_FILE_KEY")
	t.Setenv("BOOKGRAPH_ENV_FILE_OTHER", "")
	os.Unsetenv("BOOKGRAPH_ENV_FILE_OTHER")

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "quoted", os.Getenv("BOOKGRAPH_ENV_FILE_KEY"))
	assert.Equal(t, "value", os.Getenv("BOOKGRAPH_ENV_FILE_OTHER"))
}
