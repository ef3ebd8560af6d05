package testutil

import (
	"testing"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, key := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(key, "")
		}
		cfg := DefaultTestDBConfig()

		if cfg.Host != "localhost" {
			t.Errorf("expected Host=localhost, got %s", cfg.Host)
		}
		if cfg.Port != "55432" {
			t.Errorf("expected Port=55432 (test DB), got %s", cfg.Port)
		}
		if cfg.User != "queue" || cfg.Password != "queue" {
			t.Errorf("unexpected credentials %s/%s", cfg.User, cfg.Password)
		}
		if cfg.DBName != "queue_monitor" {
			t.Errorf("expected DBName=queue_monitor, got %s", cfg.DBName)
		}
	})

	t.Run("respects TEST_DB_PORT environment variable", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")

		cfg := DefaultTestDBConfig()

		if cfg.Host != "postgres" {
			t.Errorf("expected Host=postgres, got %s", cfg.Host)
		}
		if cfg.Port != "5432" {
			t.Errorf("expected Port=5432 (CI DB), got %s", cfg.Port)
		}
	})
}

func TestBuildBaseDSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	dsn := buildBaseDSN(TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"})
	if dsn != "postgres://u:p@db:5432/n?sslmode=disable" {
		t.Errorf("unexpected dsn %s", dsn)
	}
}
