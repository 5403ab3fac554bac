package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/flightdeck/adbot"
	"github.com/flightdeck/adbot/internal/metrics"
	"github.com/flightdeck/adbot/pkg/adapters/httpapi"
	"github.com/flightdeck/adbot/pkg/adapters/natsrpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot server",
	Long:  `Starts the bot endpoint over HTTP, and over NATS request/reply when a NATS URL is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		store, locker, cleanup, err := buildStore(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		m := metrics.New(prometheus.DefaultRegisterer)

		opts := []adbot.Option{adbot.WithLifecycleHooks(m.Hooks())}
		if locker != nil {
			opts = append(opts, adbot.WithLocker(locker))
		}
		bot, err := buildBot(cfg, store, logger, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: httpapi.NewHandler(bot, httpapi.WithLogger(logger)),
		}

		if cfg.NatsURL != "" {
			transport, err := natsrpc.New(natsrpc.Config{
				URL:         cfg.NatsURL,
				Subject:     cfg.NatsSubject,
				ServiceName: "adbot",
				TurnTimeout: cfg.NatsTimeout,
			}, bot, natsrpc.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := transport.Start(); err != nil {
				return err
			}
			defer transport.Close()
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting bot server", "addr", srv.Addr, "state_backend", cfg.StateBackend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding turns a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			logger.Info("bot server stopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides HTTP_ADDR)")
}
