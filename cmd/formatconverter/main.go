package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"FormatConverter/internal/app"
	"FormatConverter/internal/config"
	"FormatConverter/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "formatconverter",
	Short:         "Serve articles with an on-demand AP style rewrite",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		// A missing .env file is fine; the environment may already be populated.
		_ = godotenv.Load()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the cache janitor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withApp(ctx, func(a *app.Application) error {
			return a.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, convertCmd, cacheCmd, articleCmd, previewCmd, hashPasswordCmd)
}

// withApp loads configuration, builds the application and closes it after fn returns.
func withApp(ctx context.Context, fn func(*app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	return fn(application)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
