package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/abdulachik/litlens/internal/app"
	"github.com/abdulachik/litlens/internal/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Serve the password-gated analysis form. The profile file, when
configured, is reloaded whenever it changes on disk.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	srv, err := a.NewWebServer()
	if err != nil {
		return fmt.Errorf("create web server: %w", err)
	}

	slog.Info("starting LitLens",
		"addr", cfg.ListenAddr,
		"provider", cfg.LLMProvider,
		"profile", a.Profiles.Current().Name,
		"secure_cookies", cfg.SecureCookies,
	)

	// Watch the profile in background
	go func() {
		if err := a.Profiles.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("profile watcher stopped", "error", err)
		}
	}()

	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("web server error: %w", err)
	}

	slog.Info("shut down")
	return nil
}
