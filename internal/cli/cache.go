package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgen/internal/config"
	"github.com/matzehuels/chartgen/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered chart cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.Cache.Backend == config.BackendRedis {
				return fmt.Errorf("cache clear only supports the file backend; flush the redis database instead")
			}

			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(out, "Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			printSuccess(out, "Cleared %d cached entries", count)
			printDetail(out, "Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the effective cache settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			enabled := "no"
			if cfg.Cache.Enabled || c.flags.cache {
				enabled = "yes"
			}
			printKeyValue(out, "Enabled", enabled)
			printKeyValue(out, "Backend", cfg.Cache.Backend)
			switch cfg.Cache.Backend {
			case config.BackendRedis:
				printKeyValue(out, "Redis", cfg.Cache.RedisURL)
			default:
				dir, err := cfg.CacheDir()
				if err != nil {
					return err
				}
				printKeyValue(out, "Directory", dir)
			}
			ttl, _ := cfg.CacheTTL()
			printKeyValue(out, "TTL", ttl.String())
			if cfg.Path != "" {
				printKeyValue(out, "Config", cfg.Path)
			}
			return nil
		},
	}
}

// newCache opens the configured cache backend. Caching is off unless the
// config enables it or force is set. A backend that cannot be opened is
// logged and replaced by a null cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, force bool) cache.Cache {
	if !cfg.Cache.Enabled && !force {
		return cache.NewNullCache()
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			c.Logger.Debug("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return rc
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Debug("file cache unavailable, caching disabled", "dir", dir, "error", err)
			return cache.NewNullCache()
		}
		return fc
	}
}
