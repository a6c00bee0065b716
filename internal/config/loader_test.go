package config

import (
	"testing"

	"github.com/pouladzade/swapwatch/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	cfg, err := LoadFromYAML("../../config.example.yaml")
	if err != nil {
		t.Fatalf("failed to load YAML config: %v", err)
	}

	validateConfig(t, cfg, "YAML")
}

func TestLoadFromJSON(t *testing.T) {
	cfg, err := LoadFromJSON("../../config.example.json")
	if err != nil {
		t.Fatalf("failed to load JSON config: %v", err)
	}

	validateConfig(t, cfg, "JSON")
}

func TestLoadFromTOML(t *testing.T) {
	cfg, err := LoadFromTOML("../../config.example.toml")
	if err != nil {
		t.Fatalf("failed to load TOML config: %v", err)
	}

	validateConfig(t, cfg, "TOML")
}

func TestLoadFromFile_AutoDetect(t *testing.T) {
	for _, path := range []string{
		"../../config.example.yaml",
		"../../config.example.json",
		"../../config.example.toml",
	} {
		cfg, err := LoadFromFile(path)
		require.NoErrorf(t, err, "failed to auto-load %s", path)
		validateConfig(t, cfg, path)
	}
}

func TestLoadFromFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFromFile("config.txt")
	require.Contains(t, err.Error(), "unsupported config file format")
}

// validateConfig checks that the loaded config has expected values
func validateConfig(t *testing.T, cfg *config.Config, format string) {
	t.Helper()

	require.NotEmpty(t, cfg.Watcher.RPCURL, "[%s] watcher.rpc_url should not be empty", format)
	require.Equal(t, config.DefaultPoolAddress, cfg.Watcher.PoolAddress, "[%s] pool address", format)
	require.Equal(t, uint64(5), cfg.Watcher.ConfirmationDepth, "[%s] confirmation depth", format)
	require.Equal(t, uint64(2), cfg.Watcher.BufferSlack, "[%s] buffer slack", format)
	require.Equal(t, uint64(7), cfg.Watcher.RetainedDepth(), "[%s] retained depth", format)

	// Retry config present with values from the example files
	require.NotNil(t, cfg.Watcher.Retry, "[%s] watcher.retry should be set", format)
	require.Equal(t, 5, cfg.Watcher.Retry.MaxAttempts, "[%s] retry attempts", format)

	// Defaults applied to logging and metrics
	require.NotNil(t, cfg.Logging, "[%s] logging should be populated", format)
	require.Equal(t, "info", cfg.Logging.GetDefaultLevel(), "[%s] default log level", format)
	require.Equal(t, "debug", cfg.Logging.GetComponentLevel("ledger"), "[%s] ledger log level", format)

	require.NotNil(t, cfg.Metrics, "[%s] metrics should be populated", format)
	require.True(t, cfg.Metrics.Enabled, "[%s] metrics enabled", format)
	require.Equal(t, ":9090", cfg.Metrics.ListenAddress, "[%s] metrics address", format)

	// Store enabled with DB defaults applied
	require.NotNil(t, cfg.Store, "[%s] store should be set", format)
	require.True(t, cfg.Store.Enabled, "[%s] store enabled", format)
	require.Equal(t, "WAL", cfg.Store.DB.JournalMode, "[%s] store journal mode", format)
	require.Equal(t, 25, cfg.Store.DB.MaxOpenConnections, "[%s] store max open connections", format)
}

func TestConfigDefaults(t *testing.T) {
	cfg := &config.Config{
		Watcher: config.WatcherConfig{
			RPCURL: "wss://test.example/ws",
		},
	}

	cfg.ApplyDefaults()

	require.Equal(t, config.DefaultPoolAddress, cfg.Watcher.PoolAddress)
	require.Equal(t, uint64(5), cfg.Watcher.ConfirmationDepth)
	require.Equal(t, uint64(0), cfg.Watcher.BufferSlack)
	require.Equal(t, uint64(5), cfg.Watcher.RetainedDepth())

	require.NotNil(t, cfg.Logging)
	require.Equal(t, "info", cfg.Logging.DefaultLevel)
	require.NotNil(t, cfg.Metrics)
	require.Equal(t, ":9090", cfg.Metrics.ListenAddress)
	require.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *config.Config) {},
		},
		{
			name: "missing rpc url",
			mutate: func(cfg *config.Config) {
				cfg.Watcher.RPCURL = ""
			},
			wantErr: "watcher.rpc_url is required",
		},
		{
			name: "invalid pool address",
			mutate: func(cfg *config.Config) {
				cfg.Watcher.PoolAddress = "not-an-address"
			},
			wantErr: "watcher.pool_address",
		},
		{
			name: "invalid log level",
			mutate: func(cfg *config.Config) {
				cfg.Logging = &config.LoggingConfig{DefaultLevel: "verbose"}
			},
			wantErr: "logging.default_level",
		},
		{
			name: "unknown component level",
			mutate: func(cfg *config.Config) {
				cfg.Logging = &config.LoggingConfig{
					DefaultLevel:    "info",
					ComponentLevels: map[string]string{"downloader": "debug"},
				}
			},
			wantErr: "unknown component",
		},
		{
			name: "metrics path without slash",
			mutate: func(cfg *config.Config) {
				cfg.Metrics = &config.MetricsConfig{
					Enabled:       true,
					ListenAddress: ":9090",
					Path:          "metrics",
				}
			},
			wantErr: "path must start with '/'",
		},
		{
			name: "store enabled without path",
			mutate: func(cfg *config.Config) {
				cfg.Store = &config.StoreConfig{Enabled: true}
			},
			wantErr: "store.db.path is required",
		},
		{
			name: "store invalid journal mode",
			mutate: func(cfg *config.Config) {
				cfg.Store = &config.StoreConfig{
					Enabled: true,
					DB: config.DatabaseConfig{
						Path:        "test.db",
						JournalMode: "ROLLBACK",
					},
				}
			},
			wantErr: "store.db.journal_mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Watcher: config.WatcherConfig{
					RPCURL:      "wss://test.example/ws",
					PoolAddress: config.DefaultPoolAddress,
				},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvRPCURL, "wss://override.example/ws")
	t.Setenv(EnvConfirmationDepth, "8")
	t.Setenv(EnvBufferSlack, "3")

	cfg, err := LoadFromYAML("../../config.example.yaml")
	require.NoError(t, err)

	require.Equal(t, "wss://override.example/ws", cfg.Watcher.RPCURL)
	require.Equal(t, uint64(8), cfg.Watcher.ConfirmationDepth)
	require.Equal(t, uint64(3), cfg.Watcher.BufferSlack)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvRPCURL, "wss://env-only.example/ws")

	cfg, err := FromEnv()
	require.NoError(t, err)

	require.Equal(t, "wss://env-only.example/ws", cfg.Watcher.RPCURL)
	require.Equal(t, config.DefaultPoolAddress, cfg.Watcher.PoolAddress)
	require.Equal(t, uint64(5), cfg.Watcher.ConfirmationDepth)
}

func TestFromEnv_InvalidDepth(t *testing.T) {
	t.Setenv(EnvRPCURL, "wss://env-only.example/ws")
	t.Setenv(EnvConfirmationDepth, "five")

	_, err := FromEnv()
	require.ErrorContains(t, err, EnvConfirmationDepth)
}
