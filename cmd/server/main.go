package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dealerdash/internal/api"
	"dealerdash/internal/config"
	"dealerdash/internal/logging"
	"dealerdash/internal/metrics"
	"dealerdash/internal/session"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "dealerdash",
	Short:         "Automotive sales analytics dashboard backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logging.New(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(drilldownCmd)
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}

		logger := slog.Default()
		m := metrics.New()
		sess := session.New(m, logger)

		// The API goes live right away and answers 503 until data is loaded.
		e := api.NewServer(cfg, sess, m, logger)

		if file != "" {
			go func() {
				logger.Info("background import started", slog.String("file", file))
				t0 := time.Now()
				if _, err := sess.ImportFile(file); err != nil {
					logger.Error("background import failed", slog.String("file", file), slog.String("error", err.Error()))
					return
				}
				logger.Info("background import complete", slog.Duration("elapsed", time.Since(t0)))
			}()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server ready", slog.String("addr", cfg.Server.Addr()))
			errCh <- e.Start(cfg.Server.Addr())
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("file", "", "workbook to import at startup")
	serveCmd.Flags().Int("port", 0, "listen port override")
}
