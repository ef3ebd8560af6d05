package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/mmk-queue-monitor/internal/bootstrap"
)

func runCacheKeys(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cache-keys", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	client, err := maybeConnectRedis(cmdCtx.Logger, &cmdCtx.Config.Redis)
	if err != nil {
		if errors.Is(err, errRedisNotConfigured) {
			return writeln(os.Stderr, "Redis client is not available")
		}
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	pattern := cmdCtx.Config.Monitor.CachePrefix + ":*"
	cmdCtx.Logger.Info("scanning redis", "pattern", pattern)

	if err := writef(cmdCtx.Out, "Cached lists in Redis\n"); err != nil {
		return err
	}
	total, err := writeCacheKeys(cacheScanInput{
		Ctx:    ctx,
		Iter:   client.Scan(ctx, 0, pattern, 100).Iterator(),
		Client: client,
		Logger: cmdCtx.Logger,
		Out:    cmdCtx.Out,
	})
	if err != nil {
		return err
	}
	if total == 0 {
		return writeln(cmdCtx.Out, "(no keys found)")
	}
	return writef(cmdCtx.Out, "\nTotal keys: %d\n", total)
}

type cacheScanInput struct {
	Ctx    context.Context
	Iter   *redis.ScanIterator
	Client redis.UniversalClient
	Logger *slog.Logger
	Out    io.Writer
}

func writeCacheKeys(input cacheScanInput) (int, error) {
	if input.Iter == nil {
		return 0, errors.New("redis scan: nil iterator")
	}
	total := 0
	for input.Iter.Next(input.Ctx) {
		key := input.Iter.Val()
		total++

		ttl, err := input.Client.TTL(input.Ctx, key).Result()
		if err != nil {
			if input.Logger != nil {
				input.Logger.ErrorContext(input.Ctx, "failed to fetch TTL", "key", key, "error", err)
			}
			if werr := writef(input.Out, "  %s (TTL: error: %v)\n", key, err); werr != nil {
				return 0, werr
			}
			continue
		}
		if err := writef(input.Out, "  %s (TTL: %s)\n", key, renderTTL(ttl)); err != nil {
			return 0, err
		}
	}
	if err := input.Iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return total, nil
}

func renderTTL(d time.Duration) string {
	switch {
	case d == -1*time.Second || d == -1:
		return "no expiry"
	case d == -2*time.Second || d == -2:
		return "key missing"
	default:
		return d.String()
	}
}

func runCacheClear(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cache-clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := confirmAction(cmdCtx, *yes, "About to drop the cached sender and class lists."); err != nil {
		return err
	}
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		if err := svcs.Jobs.InvalidateLists(ctx); err != nil {
			return err
		}
		return writeln(cmdCtx.Out, "cached lists cleared")
	})
}
