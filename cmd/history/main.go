// Command history is the league-history pipeline CLI.
//
// Usage:
//
//	history pull
//	history transform
//	history metrics
//	history build --check
//	history run
//	history discover
//	history auth url
//	history auth exchange 'https://localhost/?code=...&state=ser_csrf'
//	history show all-time
//	history load
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/yahoo"
)

var (
	logLevel = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "history",
		Short:         "Fantasy league history pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(pullCmd())
	root.AddCommand(transformCmd())
	root.AddCommand(metricsCmd())
	root.AddCommand(buildCmd())
	root.AddCommand(runCmd())
	root.AddCommand(discoverCmd())
	root.AddCommand(authCmd())
	root.AddCommand(showCmd())
	root.AddCommand(loadCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runStage loads configuration, applies the log level and runs fn with a
// context cancelled on interrupt.
func runStage(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logLevel.Set(cfg.LogLevel)

	return fn(ctx, cfg)
}

func newOAuth(cfg *config.Config) (*yahoo.OAuth, error) {
	return yahoo.NewOAuth(yahoo.OAuthConfig{
		OAuthFile: cfg.OAuthFile,
		TokenFile: cfg.TokenFile,
		AuthURL:   cfg.AuthURL,
		TokenURL:  cfg.TokenURL,
		Timeout:   cfg.HTTPTimeout,
		Logger:    logger,
	})
}

// newClient builds an API client that refreshes its token on demand.
func newClient(cfg *config.Config) (*yahoo.Client, error) {
	oauth, err := newOAuth(cfg)
	if err != nil {
		return nil, err
	}
	return yahoo.NewClient(cfg.APIBaseURL, oauth, cfg.RequestDelay, cfg.HTTPTimeout, logger), nil
}
