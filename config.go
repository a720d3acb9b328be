package algebra

import "runtime"

// Config holds the runtime knobs of a Curve.
type Config struct {
	// Workers bounds the goroutines used by parallel operations.
	Workers int
	// BatchChunk is the number of entries each worker handles in batched
	// scalar multiplication.
	BatchChunk int
	// TableCacheSize is the capacity of the fixed-base table cache.
	TableCacheSize int
	// Strategy is the default bucket summation for MultiScalarMul.
	Strategy MSMStrategy
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.GOMAXPROCS(0),
		BatchChunk:     1024,
		TableCacheSize: 16,
		Strategy:       StrategyJacobian,
	}
}

// Option adjusts a Config.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithDefaultWorkers sets Config.Workers.
func WithDefaultWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithBatchChunk sets Config.BatchChunk.
func WithBatchChunk(n int) Option {
	return func(c *Config) {
		c.BatchChunk = n
	}
}

// WithTableCacheSize sets Config.TableCacheSize.
func WithTableCacheSize(n int) Option {
	return func(c *Config) {
		c.TableCacheSize = n
	}
}

// WithDefaultStrategy sets Config.Strategy.
func WithDefaultStrategy(s MSMStrategy) Option {
	return func(c *Config) {
		c.Strategy = s
	}
}

func (c *Config) normalize() {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.BatchChunk < 1 {
		c.BatchChunk = 1024
	}
	if c.TableCacheSize < 1 {
		c.TableCacheSize = 1
	}
}

// MSMOption adjusts a single MultiScalarMul call.
type MSMOption func(*msmConfig)

type msmConfig struct {
	workers  int
	window   uint
	strategy MSMStrategy
}

// WithWorkers bounds the goroutines used by one call.
func WithWorkers(n int) MSMOption {
	return func(c *msmConfig) {
		c.workers = n
	}
}

// WithWindow forces the Pippenger window width in bits.
func WithWindow(c uint) MSMOption {
	return func(m *msmConfig) {
		m.window = c
	}
}

// WithStrategy selects how bucket sums are accumulated.
func WithStrategy(s MSMStrategy) MSMOption {
	return func(c *msmConfig) {
		c.strategy = s
	}
}
