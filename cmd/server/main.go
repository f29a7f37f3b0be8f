package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/janisto/codestats/internal/platform/config"
	applog "github.com/janisto/codestats/internal/platform/logging"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

var envDir string

var rootCmd = &cobra.Command{
	Use:           "codestats",
	Short:         "Aggregate coding statistics from external platforms",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&envDir, "env-dir", ".", "directory holding an optional .env file")
	rootCmd.AddCommand(serveCmd, syncCmd)
}

func main() {
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		applog.LogError(context.Background(), "command failed", err, zap.String("command", commandName()))
	}
	if syncErr := applog.Sync(); syncErr != nil {
		applog.LogError(context.Background(), "logger sync error", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envDir)
	if err != nil {
		return nil, err
	}
	if !applog.SetLevel(cfg.Log.Level) {
		applog.LogWarn(context.Background(), "unknown log level, keeping default", zap.String("level", cfg.Log.Level))
	}
	applog.SetProjectID(cfg.Firebase.ProjectID)
	return cfg, nil
}

func commandName() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return rootCmd.Use
}
