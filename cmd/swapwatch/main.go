package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/pouladzade/swapwatch/internal/common"
	"github.com/pouladzade/swapwatch/internal/config"
	"github.com/pouladzade/swapwatch/internal/db"
	"github.com/pouladzade/swapwatch/internal/decoder"
	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/pouladzade/swapwatch/internal/metrics"
	"github.com/pouladzade/swapwatch/internal/reorg"
	"github.com/pouladzade/swapwatch/internal/rpc"
	"github.com/pouladzade/swapwatch/internal/sink"
	"github.com/pouladzade/swapwatch/internal/source"
	"github.com/pouladzade/swapwatch/internal/store"
	storemig "github.com/pouladzade/swapwatch/internal/store/migrations"
	"github.com/pouladzade/swapwatch/internal/watcher"
	pkgconfig "github.com/pouladzade/swapwatch/pkg/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

// Exit codes. A halted watcher is distinguishable from ordinary failures
// so operators can page on it.
const (
	exitFailure       = 1
	exitUnrecoverable = 2
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		var reorgErr *reorg.UnrecoverableReorgError
		if errors.As(err, &reorgErr) {
			os.Exit(exitUnrecoverable)
		}
		os.Exit(exitFailure)
	}
}

var rootCmd = &cobra.Command{
	Use:   "swapwatch",
	Short: "swapwatch - reorg-safe Uniswap swap watcher",
	Long: `swapwatch follows the Ethereum chain head and emits DAI/USDC swap events
from the Uniswap V3 pool once they are buried deep enough to survive
chain reorganizations. Shallow reorgs are recovered transparently; a
reorg deeper than the retained window halts the process with exit code 2.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runWatcher,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration file JSON schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := jsonschema.Reflect(&pkgconfig.Config{})
		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(schemaCmd)
}

func loadConfig() (*pkgconfig.Config, error) {
	// .env is optional, absence is not an error
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); err == nil {
		return config.LoadFromFile(configPath)
	}

	return config.FromEnv()
}

func runWatcher(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	// Initialize logger
	log := logger.NewComponentLoggerFromConfig(common.ComponentWatcher, cfg.Logging)

	log.Infof("swapwatch v%s starting, pool %s, confirmation depth %d, buffer slack %d",
		version, cfg.Watcher.PoolAddress, cfg.Watcher.ConfirmationDepth, cfg.Watcher.BufferSlack)

	// Initialize RPC client
	log.Info("Connecting to Ethereum node...")
	ethClient, err := rpc.NewClient(ctx, cfg.Watcher.RPCURL, cfg.Watcher.Retry)
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer ethClient.Close()
	log.Infof("Connected to Ethereum node: %s", cfg.Watcher.RPCURL)

	pool := ethcommon.HexToAddress(cfg.Watcher.PoolAddress)

	dec := decoder.New(pool, logger.NewComponentLoggerFromConfig(common.ComponentDecoder, cfg.Logging))

	logSource := source.NewLogSource(
		ethClient,
		dec,
		pool,
		logger.NewComponentLoggerFromConfig(common.ComponentSource, cfg.Logging),
	)

	out, err := buildSink(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	w := watcher.New(
		&cfg.Watcher,
		logSource,
		out,
		logger.NewComponentLoggerFromConfig(common.ComponentWatcher, cfg.Logging),
	)

	log.Info("Starting swapwatch...")

	// The watcher loop and the metrics server live in one errgroup: when
	// either stops, the shared context winds down the other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(
			cfg.Metrics,
			logger.NewComponentLoggerFromConfig(common.ComponentMetrics, cfg.Logging),
		)
		g.Go(func() error {
			return metricsServer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("watcher failed: %w", err)
	}

	log.Info("swapwatch stopped successfully")
	return nil
}

// buildSink assembles the sink chain: console always, the SQLite archive
// when the store is enabled.
func buildSink(cfg *pkgconfig.Config) (sink.Sink, error) {
	consoleSink := sink.NewConsoleSink(logger.NewComponentLoggerFromConfig(common.ComponentSink, cfg.Logging))

	if cfg.Store == nil || !cfg.Store.Enabled {
		return consoleSink, nil
	}

	if err := storemig.RunMigrations(cfg.Store.DB.Path); err != nil {
		return nil, fmt.Errorf("failed to run store migrations: %w", err)
	}

	database, err := db.NewSQLiteDBFromConfig(cfg.Store.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap archive: %w", err)
	}

	swapStore := store.NewSwapStore(
		database,
		logger.NewComponentLoggerFromConfig(common.ComponentStore, cfg.Logging),
	)

	return sink.NewMultiSink(consoleSink, sink.NewStoreSink(swapStore)), nil
}
