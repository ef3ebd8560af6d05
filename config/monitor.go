package config

import (
	"fmt"
	"strings"
	"time"
)

// MonitorConfig holds the queue table names and list cache settings.
type MonitorConfig struct {
	PushTable   string `env:"MONITOR_TABLE_PUSH"   envDefault:"queue_push"`
	ExecTable   string `env:"MONITOR_TABLE_EXEC"   envDefault:"queue_exec"`
	WorkerTable string `env:"MONITOR_TABLE_WORKER" envDefault:"queue_worker"`

	// ListCacheTTL is how long sender and class lists are memoized.
	ListCacheTTL time.Duration `env:"MONITOR_LIST_CACHE_TTL" envDefault:"1h"`
	CachePrefix  string        `env:"MONITOR_CACHE_PREFIX"   envDefault:"queue-monitor"`

	// Timezone interprets pushed date ranges. Empty means the process local zone.
	Timezone string `env:"MONITOR_TIMEZONE"`
}

// Sanitize trims names and restores defaults for empty values.
func (c *MonitorConfig) Sanitize() {
	c.PushTable = strings.TrimSpace(c.PushTable)
	c.ExecTable = strings.TrimSpace(c.ExecTable)
	c.WorkerTable = strings.TrimSpace(c.WorkerTable)
	if c.ListCacheTTL <= 0 {
		c.ListCacheTTL = time.Hour
	}
	if c.CachePrefix = strings.TrimSpace(c.CachePrefix); c.CachePrefix == "" {
		c.CachePrefix = "queue-monitor"
	}
	c.Timezone = strings.TrimSpace(c.Timezone)
}

// Location resolves Timezone.
func (c MonitorConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("MONITOR_TIMEZONE: %w", err)
	}
	return loc, nil
}
