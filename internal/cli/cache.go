package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docket/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the oracle result cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}
		removed, err := disk.Prune()
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d expired entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}
		if err := disk.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cache cleared")
		return nil
	},
}

func diskCache() (*cache.DiskCache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.DiskTTL), nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd, cacheClearCmd)
}
