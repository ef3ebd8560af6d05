package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// DBConfig contains the queue database configuration.
type DBConfig struct {
	// Driver selects the backend: pgx, mysql or memory.
	Driver   string `env:"DRIVER"                  envDefault:"pgx"`
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"` // 0 picks the driver's default port
	User     string `env:"USER"                    envDefault:"queue"`
	Password string `env:"PASSWORD"                envDefault:"queue"`
	Name     string `env:"NAME"                    envDefault:"queue_monitor"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"false"`

	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"    envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`

	// Seed fills the memory backend with demo rows on start.
	Seed bool `env:"SEED" envDefault:"true"`
}

// Sanitize normalizes the driver name and fills the default port.
func (c *DBConfig) Sanitize() {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres", "postgresql", DriverPostgres, "":
		c.Driver = DriverPostgres
	case DriverMySQL, "mariadb":
		c.Driver = DriverMySQL
	case DriverMemory:
		c.Driver = DriverMemory
	}
	if c.Port <= 0 {
		switch c.Driver {
		case DriverMySQL:
			c.Port = 3306
		default:
			c.Port = 5432
		}
	}
	if c.MaxOpenConns < 1 {
		c.MaxOpenConns = 1
	}
	if c.MaxIdleConns < 0 {
		c.MaxIdleConns = 0
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
}

// DSN returns the connection string for the configured driver.
func (c DBConfig) DSN() (string, error) {
	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	switch c.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     addr,
			Path:     "/" + c.Name,
			RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
		}
		return u.String(), nil
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = c.Name
		mc.ParseTime = true
		mc.MultiStatements = true
		return mc.FormatDSN(), nil
	}
	return "", fmt.Errorf("no DSN for driver %q", c.Driver)
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// CacheConfig selects where memoized lists live.
type CacheConfig struct {
	Backend string `env:"CACHE_BACKEND" envDefault:"memory"`
	// MemoryCapacity bounds the in-process cache.
	MemoryCapacity int `env:"CACHE_MEMORY_CAPACITY" envDefault:"256"`
}

// Sanitize falls back to the memory backend for unknown values.
func (c *CacheConfig) Sanitize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		c.Backend = CacheBackendMemory
	}
	if c.MemoryCapacity < 1 {
		c.MemoryCapacity = 256
	}
}
