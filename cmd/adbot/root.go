package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flightdeck/adbot"
	fileStore "github.com/flightdeck/adbot/internal/adapters/file"
	memoryStore "github.com/flightdeck/adbot/internal/adapters/memory"
	redisStore "github.com/flightdeck/adbot/internal/adapters/redis"
	"github.com/flightdeck/adbot/internal/config"
	"github.com/flightdeck/adbot/internal/logging"
	"github.com/flightdeck/adbot/pkg/clu"
	"github.com/flightdeck/adbot/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "adbot",
	Short: "Airworthiness Directive document assistant",
	Long:  `adbot answers conversational requests for Airworthiness Directive documents, collecting search criteria through dialog and intent recognition.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file overlaying the environment")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig resolves flags + environment into a validated config and a
// logger at the requested level.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg := config.Load()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return cfg, logging.New(level), nil
}

// buildStore instantiates the configured state backend. The returned
// locker is non-nil only for backends that support distributed locking,
// and cleanup releases any held connections.
func buildStore(cfg *config.Config) (store ports.StateStore, locker ports.DistributedLocker, cleanup func(), err error) {
	switch cfg.StateBackend {
	case "memory":
		return memoryStore.New(), nil, func() {}, nil
	case "file":
		return fileStore.New(cfg.StateDir), nil, func() {}, nil
	case "redis":
		rs := redisStore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redisStore.WithTTL(cfg.SessionTTL))
		return rs, redisStore.NewLocker(rs.Client(), "adbot:"), func() { rs.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

// buildBot assembles the recognizer and the bot from config.
func buildBot(cfg *config.Config, store ports.StateStore, logger *slog.Logger, opts ...adbot.Option) (*adbot.Bot, error) {
	recognizer := clu.New(cfg.CLUEndpoint, cfg.CLUAPIKey, cfg.CLUProject, cfg.CLUDeployment)
	if !recognizer.IsConfigured() {
		logger.Warn("CLU is not configured; falling back to manual slot collection")
	}
	opts = append([]adbot.Option{adbot.WithLogger(logger)}, opts...)
	return adbot.New(store, recognizer, opts...)
}
