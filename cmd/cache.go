package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mahendrapaipuri/gitlab-activity/internal/cache"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local activity data cache",
	}

	cmd.PersistentFlags().StringVar(&opts.CachePath, "cache-path", "", "Cache directory (default ~/.cache/gitlab-activity-data)")

	cmd.AddCommand(newCmdCacheStats(opts))
	cmd.AddCommand(newCmdCacheClear(opts))

	return cmd
}

func newCmdCacheStats(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many records are cached per repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.New(opts.CachePath)
			if err != nil {
				return fmt.Errorf("failed to access cache: %w", err)
			}
			stats, err := store.Stats()
			if err != nil {
				return fmt.Errorf("failed to get cache stats: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), cache.Describe(stats))
			return nil
		},
	}
}

func newCmdCacheClear(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the activity data cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.New(opts.CachePath)
			if err != nil {
				return fmt.Errorf("failed to access cache: %w", err)
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}
