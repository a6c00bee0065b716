package config

import (
	"fmt"
	"os"

	"github.com/pouladzade/swapwatch/internal/common"
	pkgconfig "github.com/pouladzade/swapwatch/pkg/config"
)

// Environment variable names. These override values loaded from the config
// file, so credentials like the node URL can stay out of checked-in files.
const (
	EnvRPCURL            = "SWAPWATCH_RPC_URL"
	EnvPoolAddress       = "SWAPWATCH_POOL_ADDRESS"
	EnvConfirmationDepth = "SWAPWATCH_CONFIRMATION_DEPTH"
	EnvBufferSlack       = "SWAPWATCH_BUFFER_SLACK"
)

// FromEnv builds a configuration from environment variables alone.
// Used when no config file is given, mirroring a plain .env setup.
func FromEnv() (*pkgconfig.Config, error) {
	cfg := &pkgconfig.Config{}
	if err := overlayEnv(cfg); err != nil {
		return nil, err
	}
	return processConfig(cfg)
}

// overlayEnv applies environment variable overrides onto cfg.
func overlayEnv(cfg *pkgconfig.Config) error {
	if v, ok := os.LookupEnv(EnvRPCURL); ok {
		cfg.Watcher.RPCURL = v
	}
	if v, ok := os.LookupEnv(EnvPoolAddress); ok {
		cfg.Watcher.PoolAddress = v
	}
	if v, ok := os.LookupEnv(EnvConfirmationDepth); ok {
		depth, err := common.ParseUint64(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvConfirmationDepth, err)
		}
		cfg.Watcher.ConfirmationDepth = depth
	}
	if v, ok := os.LookupEnv(EnvBufferSlack); ok {
		slack, err := common.ParseUint64(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBufferSlack, err)
		}
		cfg.Watcher.BufferSlack = slack
	}
	return nil
}
