package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - collector",
			input:    "collector",
			expected: map[ServiceMode]bool{ServiceModeCollector: true},
		},
		{
			name:  "multiple services with whitespace",
			input: " http , collector ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:      true,
				ServiceModeCollector: true,
			},
		},
		{
			name:     "trailing comma ignored",
			input:    "http,",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,",
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestAppConfig_ServiceHelpers(t *testing.T) {
	cfg := AppConfig{Services: "http,collector"}
	cfg.Observability.Metrics.Enabled = true
	if !cfg.IsHTTPServerEnabled() || !cfg.IsCollectorEnabled() {
		t.Fatalf("expected http and collector enabled")
	}

	cfg.Observability.Metrics.Enabled = false
	if cfg.IsCollectorEnabled() {
		t.Errorf("collector must be disabled without metrics")
	}

	cfg.Services = "bogus"
	if cfg.IsHTTPServerEnabled() {
		t.Errorf("invalid services must not enable http")
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.DB.Driver != DriverPostgres || cfg.DB.Port != 5432 {
		t.Errorf("db defaults = %s:%d", cfg.DB.Driver, cfg.DB.Port)
	}
	if cfg.Cache.Backend != CacheBackendMemory {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
	if cfg.Monitor.PushTable != "queue_push" || cfg.Monitor.ListCacheTTL != time.Hour {
		t.Errorf("monitor defaults = %+v", cfg.Monitor)
	}
	if cfg.Monitor.CachePrefix != "queue-monitor" {
		t.Errorf("cache prefix = %q", cfg.Monitor.CachePrefix)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.HTTP.ShutdownTimeout != 15*time.Second {
		t.Errorf("http defaults = %+v", cfg.HTTP)
	}
	if !cfg.Observability.Metrics.IsEnabled() || cfg.Observability.Metrics.Namespace != "queue_monitor" {
		t.Errorf("metrics defaults = %+v", cfg.Observability.Metrics)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestAppConfig_SanitizeGuards(t *testing.T) {
	cfg := AppConfig{
		LogLevel: " DEBUG ",
		DB:       DBConfig{Driver: "MariaDB", MaxOpenConns: 2, MaxIdleConns: 9},
		Cache:    CacheConfig{Backend: "memcached"},
		Monitor:  MonitorConfig{CachePrefix: "  ", ListCacheTTL: -time.Second},
		Observability: ObservabilityConfig{
			Metrics: ObservabilityMetricsConfig{Namespace: " ", CollectInterval: time.Millisecond},
		},
	}
	cfg.Sanitize()

	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.DB.Driver != DriverMySQL || cfg.DB.Port != 3306 {
		t.Errorf("db = %s:%d", cfg.DB.Driver, cfg.DB.Port)
	}
	if cfg.DB.MaxIdleConns != 2 {
		t.Errorf("idle conns = %d, want capped at 2", cfg.DB.MaxIdleConns)
	}
	if cfg.Cache.Backend != CacheBackendMemory || cfg.Cache.MemoryCapacity != 256 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Monitor.CachePrefix != "queue-monitor" || cfg.Monitor.ListCacheTTL != time.Hour {
		t.Errorf("monitor = %+v", cfg.Monitor)
	}
	if cfg.Observability.Metrics.Namespace != "queue_monitor" || cfg.Observability.Metrics.CollectInterval != time.Minute {
		t.Errorf("metrics = %+v", cfg.Observability.Metrics)
	}

	cfg.LogLevel = "verbose"
	cfg.Sanitize()
	if cfg.LogLevel != "info" {
		t.Errorf("unknown log level should fall back to info, got %q", cfg.LogLevel)
	}
}

func TestDBConfig_DSN(t *testing.T) {
	pg := DBConfig{Driver: DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p@ss", Name: "q", SSLMode: "disable"}
	dsn, err := pg.DSN()
	if err != nil {
		t.Fatalf("pg dsn: %v", err)
	}
	if dsn != "postgres://u:p%40ss@db:5432/q?sslmode=disable" {
		t.Errorf("pg dsn = %s", dsn)
	}

	my := DBConfig{Driver: DriverMySQL, Host: "db", Port: 3306, User: "u", Password: "p", Name: "q"}
	dsn, err = my.DSN()
	if err != nil {
		t.Fatalf("mysql dsn: %v", err)
	}
	if !strings.HasPrefix(dsn, "u:p@tcp(db:3306)/q?") || !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("mysql dsn = %s", dsn)
	}

	if _, err := (DBConfig{Driver: DriverMemory}).DSN(); err == nil {
		t.Errorf("memory driver has no DSN")
	}
}

func TestMonitorConfig_Location(t *testing.T) {
	loc, err := MonitorConfig{}.Location()
	if err != nil || loc != time.Local {
		t.Errorf("empty timezone = %v, %v", loc, err)
	}
	loc, err = MonitorConfig{Timezone: "UTC"}.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("UTC = %v, %v", loc, err)
	}
	if _, err := (MonitorConfig{Timezone: "Nowhere/Special"}).Location(); err == nil {
		t.Errorf("expected error for unknown zone")
	}
}

func TestMonitorConfig_EnvOverrides(t *testing.T) {
	var cfg AppConfig
	err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
		"MONITOR_TABLE_EXEC":     "jobs_exec",
		"MONITOR_LIST_CACHE_TTL": "5m",
		"DB_DRIVER":              "memory",
		"REDIS_CLUSTER_NODES":    "a:1,b:2",
	}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()
	if cfg.Monitor.ExecTable != "jobs_exec" || cfg.Monitor.ListCacheTTL != 5*time.Minute {
		t.Errorf("monitor = %+v", cfg.Monitor)
	}
	if cfg.DB.Driver != DriverMemory {
		t.Errorf("driver = %q", cfg.DB.Driver)
	}
	if !reflect.DeepEqual(cfg.Redis.ClusterNodes, []string{"a:1", "b:2"}) {
		t.Errorf("cluster nodes = %v", cfg.Redis.ClusterNodes)
	}
}

func TestLoadFileEnvironment(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cfg.yml")
	writeFile(t, yamlPath, `
services: http
db:
  port: 6543
redis:
  sentinel_nodes: [s1:26379, s2:26379]
observability:
  metrics:
    enabled: false
`)
	got, err := LoadFileEnvironment(yamlPath)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	want := map[string]string{
		"SERVICES":                      "http",
		"DB_PORT":                       "6543",
		"REDIS_SENTINEL_NODES":          "s1:26379,s2:26379",
		"OBSERVABILITY_METRICS_ENABLED": "false",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("yaml env = %v", got)
	}

	tomlPath := filepath.Join(dir, "cfg.toml")
	writeFile(t, tomlPath, `
log_level = "debug"

[monitor]
timezone = "Europe/Berlin"
list_cache_ttl = "30m"
`)
	got, err = LoadFileEnvironment(tomlPath)
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	if got["LOG_LEVEL"] != "debug" || got["MONITOR_TIMEZONE"] != "Europe/Berlin" || got["MONITOR_LIST_CACHE_TTL"] != "30m" {
		t.Errorf("toml env = %v", got)
	}

	badPath := filepath.Join(dir, "cfg.ini")
	writeFile(t, badPath, "a=b")
	if _, err := LoadFileEnvironment(badPath); err == nil {
		t.Errorf("expected error for unsupported extension")
	}

	nestedList := filepath.Join(dir, "nested.yaml")
	writeFile(t, nestedList, "redis:\n  cluster_nodes:\n    - {host: a}\n")
	if _, err := LoadFileEnvironment(nestedList); err == nil {
		t.Errorf("expected error for non-scalar list items")
	}
}

func TestMergeEnvironment(t *testing.T) {
	merged := MergeEnvironment(
		map[string]string{"DB_NAME": "file", "DB_HOST": "file-host"},
		[]string{"DB_NAME=env", "EMPTY=", "MALFORMED"},
	)
	if merged["DB_NAME"] != "env" || merged["DB_HOST"] != "file-host" {
		t.Errorf("merged = %v", merged)
	}
	if v, ok := merged["EMPTY"]; !ok || v != "" {
		t.Errorf("empty values must be kept")
	}
	if _, ok := merged["MALFORMED"]; ok {
		t.Errorf("entries without '=' must be skipped")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
