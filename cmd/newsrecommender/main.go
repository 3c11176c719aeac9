package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"NewsRecommender/internal/app"
	"NewsRecommender/internal/config"
	"NewsRecommender/internal/infrastructure/output"
	"NewsRecommender/internal/logging"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "newsrecommender",
		Short:         "Personalized, diversified news recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Missing .env is fine.
			_ = godotenv.Load()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to $NEWS_RECOMMENDER_CONFIG)")

	root.AddCommand(recommendCmd(), serveCmd(), prefsCmd(), likeCmd(), readCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// withApp loads config, opens the application and closes it after fn.
func withApp(ctx context.Context, fn func(*app.Application, *slog.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()
	return fn(application, logger)
}

func recommendCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Run the ranking pipeline once and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.Application, logger *slog.Logger) error {
				set := a.Recommend(cmd.Context(), userID)
				logger.Info("recommendations ready", "user", userID, "origin", set.Origin, "items", len(set.Items))
				return output.EncodeJSON(cmd.OutOrStdout(), set.Items)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id whose profile drives the ranking")
	return cmd
}

func serveCmd() *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh recommendations on the cron schedule and expose metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, func(a *app.Application, _ *slog.Logger) error {
				return a.Serve(ctx, runNow)
			})
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "refresh once immediately on start")
	return cmd
}

func prefsCmd() *cobra.Command {
	var (
		userID     string
		categories []string
	)
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Replace the preferred categories of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.Application, _ *slog.Logger) error {
				return a.Profiles().SavePreferences(cmd.Context(), userID, categories)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "preferred category (repeatable)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func likeCmd() *cobra.Command {
	return behaviorCmd("like", "Record a liked article", func(ctx context.Context, a *app.Application, user, title, summary string) error {
		return a.Profiles().RecordLike(ctx, user, title, summary, time.Now())
	})
}

func readCmd() *cobra.Command {
	return behaviorCmd("read", "Record a read article", func(ctx context.Context, a *app.Application, user, title, summary string) error {
		return a.Profiles().RecordRead(ctx, user, title, summary, time.Now())
	})
}

func behaviorCmd(use, short string, record func(context.Context, *app.Application, string, string, string) error) *cobra.Command {
	var userID, title, summary string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.Application, _ *slog.Logger) error {
				return record(cmd.Context(), a, userID, title, summary)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&title, "title", "", "article title")
	cmd.Flags().StringVar(&summary, "summary", "", "article summary")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
