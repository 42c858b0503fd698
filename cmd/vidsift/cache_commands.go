package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidsift/internal/probecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Probe result cache maintenance",
	}

	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func withCacheStore(ctx *commandContext, fn func(*cobra.Command, *probecache.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		store, err := probecache.Open(cfg)
		if err != nil {
			return fmt.Errorf("open probe cache: %w", err)
		}
		defer store.Close()
		return fn(cmd, store)
	}
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show probe cache statistics",
		RunE: withCacheStore(ctx, func(cmd *cobra.Command, store *probecache.Store) error {
			cfg, _ := ctx.ensureConfig()
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Database", stats.DBPath},
				{"Entries", strconv.FormatInt(stats.Entries, 10)},
				{"Size", formatBytes(stats.SizeBytes)},
				{"Enabled", yesNo(cfg.Scan.CacheEnabled)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Probe cache", ""}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		}),
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cache entries for files that no longer exist",
		RunE: withCacheStore(ctx, func(cmd *cobra.Command, store *probecache.Store) error {
			removed, err := store.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d stale entries\n", removed)
			return nil
		}),
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached probe result",
		RunE: withCacheStore(ctx, func(cmd *cobra.Command, store *probecache.Store) error {
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		}),
	}
}
