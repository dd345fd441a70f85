// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/BartekS5/feedsync/internal/config"
	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/spf13/cobra"
)

// Options are the flags shared by every command.
type Options struct {
	DryRun bool
}

func NewRootCmd() *cobra.Command {
	opts := &Options{}
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "feedsync",
		Short: "feedsync - replace a collection with the latest contents of a public feed",
		Long: `feedsync fetches a public feed once, normalizes its records and replaces
the contents of the target MongoDB collection (or SQL Server table) with them.

Run without a sub-command it syncs the feed named by FEED (default dshield).
It is meant to be invoked periodically by an external scheduler such as cron.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := logger.InitLogger(loaded.LogFile, logger.ParseLevel(loaded.LogLevel)); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd.Context(), cfg, cfg.Feed, opts)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "Fetch and transform only, do not touch the store")

	rootCmd.AddCommand(
		newFeedCmd(config.FeedDShield, "Sync the DShield top attackers feed", &cfg, opts),
		newFeedCmd(config.FeedTrivia, "Sync the Open Trivia DB question feed", &cfg, opts),
	)

	return rootCmd
}

func newFeedCmd(feed, short string, cfg **config.Config, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   feed,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd.Context(), *cfg, feed, opts)
		},
	}
}
