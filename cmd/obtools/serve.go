package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/obstack/obtools/internal/mcpserver"
	"github.com/obstack/obtools/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		listenAddr string
		tokens     []string
		redisURL   string
		cacheTTL   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database tools over MCP streamable HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			dbCfg, err := dbConfig(cmd)
			if err != nil {
				return err
			}
			factory, err := llmFactory(cmd)
			if err != nil {
				return err
			}

			var cache store.SchemaStore
			if redisURL != "" {
				opts, err := redis.ParseURL(redisURL)
				if err != nil {
					return errors.WithMessage(err, "invalid redis URL")
				}
				cache = store.NewRedisStore(redis.NewClient(opts), "obtools", cacheTTL)
			} else {
				cache = store.NewMemoryStore(cacheTTL)
			}

			srv, err := mcpserver.New(mcpserver.Config{
				DB:            dbCfg,
				LLM:           factory,
				Cache:         cache,
				Version:       Version,
				ListenAddr:    listenAddr,
				AllowedTokens: tokens,
			})
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":8080", "address to listen on")
	cmd.Flags().StringSliceVar(&tokens, "token", nil, "bearer tokens allowed on the MCP endpoint, repeatable")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for the schema cache, in-memory cache when empty")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", store.DefaultTTL, "schema cache TTL")

	return cmd
}
