//go:build integration

package integration

import (
	"fmt"
	"os"
	"testing"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
)

func pgPort(t *testing.T) int {
	t.Helper()
	p := envOrDefault("DFMETA_TEST_PG_PORT", "25432")
	var port int
	fmt.Sscanf(p, "%d", &port)
	return port
}

func pgDatabaseConfig(t *testing.T, schemaName string) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Type:     "postgresql",
		Host:     envOrDefault("DFMETA_TEST_PG_HOST", "localhost"),
		Port:     pgPort(t),
		Database: envOrDefault("DFMETA_TEST_PG_DATABASE", "dfmeta_test"),
		Username: envOrDefault("DFMETA_TEST_PG_USER", "postgres"),
		Password: envOrDefault("DFMETA_TEST_PG_PASSWORD", "postgres"),
		Schema:   schemaName,
	}
}

func pgConnString(t *testing.T) string {
	t.Helper()
	c := pgDatabaseConfig(t, "")
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", c.Username, c.Password, c.Host, c.Port, c.Database)
}

func skipIfNoPostgres(t *testing.T) {
	t.Helper()
	if os.Getenv("DFMETA_TEST_PG_HOST") == "" && os.Getenv("DFMETA_TEST_PG_PORT") == "" {
		t.Skip("skipping: DFMETA_TEST_PG_HOST/PORT not set")
	}
}

func testConfig(db config.DatabaseConfig) *config.Config {
	return &config.Config{
		Version:  config.CurrentVersion,
		Database: db,
		Tables: config.TableConfig{
			ObjectTypeTargets: config.DefaultObjectTypeTargets,
			ColumnExcepts:     map[string][]string{},
		},
		Procedure: config.ProcedureConfig{Enabled: true, SynonymHandling: config.SynonymNone},
		Logging:   config.LogConfig{Level: "debug"},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
