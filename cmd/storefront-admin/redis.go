package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	redisadapter "github.com/target/parapharmacie-storefront/internal/adapters/redis"
	"github.com/target/parapharmacie-storefront/internal/bootstrap"
	"github.com/target/parapharmacie-storefront/internal/cryptoutil"
	"github.com/target/parapharmacie-storefront/internal/service"
)

const redisCommandTimeout = 2 * time.Minute

type clearOptions struct {
	DryRun bool
	Yes    bool
}

func parseClearFlags(name string, args []string, out io.Writer) (clearOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	var opts clearOptions
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Count matching keys without deleting them")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return clearOptions{}, err
	}
	return opts, nil
}

// connectRedis opens the configured Redis deployment; callers close the client.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectRedis(cmdCtx *commandContext) (redis.UniversalClient, error) {
	client, err := bootstrap.ConnectRedis(bootstrap.RedisConnectConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func withRedis(cmdCtx *commandContext, fn func(ctx context.Context, client redis.UniversalClient) error) error {
	client, err := connectRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, redisCommandTimeout)
	defer cancel()
	return fn(ctx, client)
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sealer, err := cryptoutil.NewSealer(cmdCtx.Config.Session.TokenKey)
	if err != nil {
		return fmt.Errorf("session token key: %w", err)
	}

	return withRedis(cmdCtx, func(ctx context.Context, client redis.UniversalClient) error {
		store := redisadapter.NewSessionStore(client, redisadapter.SessionStoreOptions{
			Prefix: cmdCtx.Config.Session.KeyPrefix,
			Sealer: sealer,
		})
		sessions, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		return printSessions(cmdCtx.Out, sessions)
	})
}

func printSessions(out io.Writer, sessions []redisadapter.SessionSummary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tEmail\tRole\tExpires"); err != nil {
		return fmt.Errorf("write session header: %w", err)
	}
	for _, s := range sessions {
		if s.Corrupt {
			if err := writef(w, "%s\t(corrupt)\t-\t-\n", s.ID); err != nil {
				return fmt.Errorf("write session row: %w", err)
			}
			continue
		}
		expires := "-"
		if !s.ExpiresAt.IsZero() {
			expires = s.ExpiresAt.UTC().Format(time.RFC3339)
		}
		if err := writef(w, "%s\t%s\t%s\t%s\n", s.ID, s.Email, s.Role, expires); err != nil {
			return fmt.Errorf("write session row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush sessions: %w", err)
	}
	return writef(out, "%d session(s)\n", len(sessions))
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	return clearPrefix(cmdCtx, args, "clear-sessions", cmdCtx.Config.Session.KeyPrefix, "delete every stored session")
}

func runClearCartSnapshots(cmdCtx *commandContext, args []string) error {
	return clearPrefix(cmdCtx, args, "clear-cart-snapshots", cmdCtx.Config.Store.CartKeyPrefix, "delete every cart snapshot")
}

func runClearCatalogCache(cmdCtx *commandContext, args []string) error {
	return clearPrefix(cmdCtx, args, "clear-catalog-cache", service.CatalogCachePrefix, "drop the catalog cache")
}

func clearPrefix(cmdCtx *commandContext, args []string, name, prefix, action string) error {
	opts, err := parseClearFlags(name, args, cmdCtx.Out)
	if err != nil {
		return err
	}
	if err := confirmAction(cmdCtx, opts, action); err != nil {
		return err
	}

	return withRedis(cmdCtx, func(ctx context.Context, client redis.UniversalClient) error {
		n, err := deleteByPrefix(ctx, client, prefix, opts.DryRun)
		if err != nil {
			return err
		}
		if opts.DryRun {
			return writef(cmdCtx.Out, "dry run: %d key(s) under %q would be deleted\n", n, prefix)
		}
		cmdCtx.Logger.Info("keys deleted", "prefix", prefix, "count", n)
		return writef(cmdCtx.Out, "deleted %d key(s) under %q\n", n, prefix)
	})
}

// deleteByPrefix removes, or only counts, the keys under prefix.
// On a cluster SCAN only covers the node the client routes to.
func deleteByPrefix(ctx context.Context, client redis.UniversalClient, prefix string, dryRun bool) (int, error) {
	if !dryRun {
		return redisadapter.NewCacheRepo(client).DeletePrefix(ctx, prefix)
	}
	count := 0
	iter := client.Scan(ctx, 0, prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("redis scan: %w", err)
	}
	return count, nil
}
