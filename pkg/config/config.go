package config

import (
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pouladzade/swapwatch/internal/common"
	"github.com/pouladzade/swapwatch/internal/logger"
)

// DefaultPoolAddress is the Uniswap v3 DAI/USDC 0.05% pool on mainnet.
const DefaultPoolAddress = "0x5777d92f208679DB4b9778590Fa3CAB3aC9e2168"

// Config represents the complete configuration for swapwatch.
type Config struct {
	// Watcher contains the core pipeline configuration
	Watcher WatcherConfig `yaml:"watcher" json:"watcher" toml:"watcher"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// Store contains the optional confirmed-swap archive configuration
	Store *StoreConfig `yaml:"store,omitempty" json:"store,omitempty" toml:"store,omitempty"`
}

// WatcherConfig represents the configuration for the confirmation pipeline.
type WatcherConfig struct {
	// RPCURL is the Ethereum node endpoint. Must be a websocket endpoint
	// (ws:// or wss://) since the watcher subscribes to new heads.
	RPCURL string `yaml:"rpc_url" json:"rpc_url" toml:"rpc_url"`

	// PoolAddress is the Uniswap pool contract emitting Swap events
	PoolAddress string `yaml:"pool_address" json:"pool_address" toml:"pool_address"`

	// ConfirmationDepth is the number of descendant blocks required before
	// a block's swaps are considered confirmed and emitted
	ConfirmationDepth uint64 `yaml:"confirmation_depth" json:"confirmation_depth" toml:"confirmation_depth"`

	// BufferSlack is additional retained depth beyond ConfirmationDepth,
	// kept for reorg absorption. A reorg deeper than
	// ConfirmationDepth+BufferSlack is unrecoverable.
	BufferSlack uint64 `yaml:"buffer_slack" json:"buffer_slack" toml:"buffer_slack"`

	// Retry contains RPC retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`
}

// ApplyDefaults sets default values for optional watcher configuration fields.
func (w *WatcherConfig) ApplyDefaults() {
	if w.PoolAddress == "" {
		w.PoolAddress = DefaultPoolAddress
	}
	if w.ConfirmationDepth == 0 {
		w.ConfirmationDepth = 5
	}
	// BufferSlack defaults to 0 (zero value): the retained window equals
	// the confirmation depth exactly.

	if w.Retry != nil {
		w.Retry.ApplyDefaults()
	}
}

// RetainedDepth is the total number of blocks kept in the ledger behind head.
func (w *WatcherConfig) RetainedDepth() uint64 {
	return w.ConfirmationDepth + w.BufferSlack
}

// RetryConfig represents RPC retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// StoreConfig configures the optional SQLite archive of confirmed swaps.
type StoreConfig struct {
	// Enabled controls whether confirmed swaps are archived
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// DB contains the SQLite database configuration
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`
}

// ApplyDefaults sets default values for optional store configuration fields.
func (s *StoreConfig) ApplyDefaults() {
	s.DB.ApplyDefaults()
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`

	// EnableForeignKeys enables foreign key constraint enforcement
	EnableForeignKeys bool `yaml:"enable_foreign_keys" json:"enable_foreign_keys" toml:"enable_foreign_keys"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
	// EnableForeignKeys defaults to false (zero value)
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - watcher: Pipeline orchestration and state machine
	//   - log-source: Head subscription and log fetching
	//   - decoder: Swap event decoding
	//   - ledger: In-memory block ledger
	//   - confirmation: Confirmation window
	//   - reorg-handler: Reorg policy decisions
	//   - sink: Confirmed event output
	//   - store: Confirmed swap archive
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	// Development defaults to false (zero value)
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	// Validate default level
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		// Check if component is valid
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		// Check if level is valid
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return level
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
	// Enabled defaults to false (zero value)
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.Watcher.ApplyDefaults()

	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	c.Logging.ApplyDefaults()

	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
	c.Metrics.ApplyDefaults()

	if c.Store != nil {
		c.Store.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Watcher.RPCURL == "" {
		return fmt.Errorf("watcher.rpc_url is required")
	}

	if !ethcommon.IsHexAddress(c.Watcher.PoolAddress) {
		return fmt.Errorf("watcher.pool_address is not a valid address: %s", c.Watcher.PoolAddress)
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.Store != nil && c.Store.Enabled {
		if c.Store.DB.Path == "" {
			return fmt.Errorf("store.db.path is required when the store is enabled")
		}

		if c.Store.DB.JournalMode != "" && c.Store.DB.JournalMode != "WAL" &&
			c.Store.DB.JournalMode != "DELETE" && c.Store.DB.JournalMode != "TRUNCATE" &&
			c.Store.DB.JournalMode != "PERSIST" && c.Store.DB.JournalMode != "MEMORY" {
			return fmt.Errorf("store.db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
		}

		if c.Store.DB.Synchronous != "" && c.Store.DB.Synchronous != "FULL" &&
			c.Store.DB.Synchronous != "NORMAL" && c.Store.DB.Synchronous != "OFF" {
			return fmt.Errorf("store.db.synchronous must be one of: FULL, NORMAL, OFF")
		}
	}

	return nil
}
