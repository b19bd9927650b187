package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gumshoehq/gumshoe/internal/buildinfo"
	"github.com/gumshoehq/gumshoe/internal/config"
	"github.com/gumshoehq/gumshoe/internal/gumshoe"
	"github.com/gumshoehq/gumshoe/internal/mcp"
	"github.com/gumshoehq/gumshoe/internal/transcript"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gumshoe",
	Short: "Client for a remote investigation agent",
	Long: `Gumshoe talks to a remote investigation agent service: ask questions
about your connected systems, stream long-running investigation
responses, and review past exchanges from the local transcript.`,
	Version:       buildinfo.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.FindConfig(configPath)
		if err != nil {
			// version and log work without a config file.
			cfg = config.Default()
		} else {
			cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("load config %s: %w", path, err)
			}
		}

		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: config.ReplaceLogLevelNames,
		}))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command. It owns process exit.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newAgent constructs the RPC and domain clients from the loaded
// config. The caller must Close the returned rpc client.
func newAgent() (*gumshoe.Client, *mcp.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	rpc := mcp.NewClient(mcp.NewHTTPTransport(mcp.HTTPConfig{
		URL:         cfg.Agent.URL,
		Token:       cfg.Agent.Token,
		CallTimeout: cfg.Agent.CallTimeout(),
		Logger:      logger,
	}), logger)

	client := gumshoe.NewClient(gumshoe.ClientConfig{
		RPC:    rpc,
		Logger: logger,
		Stream: gumshoe.StreamConfig{
			SettleDelay:   cfg.Stream.SettleDelay(),
			Timeout:       cfg.Stream.Timeout(),
			RetryFallback: cfg.Stream.RetryFallback(),
		},
	})
	return client, rpc, nil
}

// openTranscript opens the local transcript store, creating the data
// directory if needed.
func openTranscript() (*transcript.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return transcript.NewStore(filepath.Join(cfg.DataDir, "transcript.db"))
}

// relativeTime renders a timestamp compactly for table output.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := time.Since(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
