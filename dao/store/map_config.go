package store

import (
	"log/slog"
	"runtime"
)

// MaxShardCount caps how many shards a MapStore splits its records across.
const MaxShardCount = 1024

// MapConfig holds MapStore configuration. A nil *MapConfig is valid and
// yields the defaults.
type MapConfig struct {
	// ShardCount sets the number of shards.
	// If <= 0, defaults to runtime.NumCPU().
	// If > MaxShardCount, capped at MaxShardCount.
	ShardCount int

	// Logger receives store diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics, when set, is updated by every store operation.
	Metrics *Metrics
}

// GetShardCount returns the shard count for the store.
// If the shard count is not set, it defaults to runtime.NumCPU().
// If the shard count is greater than MaxShardCount, it is capped at MaxShardCount.
func (cfg *MapConfig) GetShardCount() int {
	var shards int
	if cfg != nil {
		shards = cfg.ShardCount
	}

	if shards <= 0 {
		shards = max(1, runtime.NumCPU())
	}

	if shards > MaxShardCount {
		shards = MaxShardCount
	}

	return shards
}

// GetLogger returns the configured logger or slog.Default().
func (cfg *MapConfig) GetLogger() *slog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return slog.Default()
	}

	return cfg.Logger
}

// GetMetrics returns the configured metrics, which may be nil.
func (cfg *MapConfig) GetMetrics() *Metrics {
	if cfg == nil {
		return nil
	}

	return cfg.Metrics
}
