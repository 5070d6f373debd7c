package main

import (
	"context"
	"fmt"
	"time"

	"github.com/obstack/obtools/pkg/obdb"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the database credentials.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dbConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := obdb.ValidateCredentials(ctx, cfg, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s\n", cfg.CacheKey())
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connection timeout")

	return cmd
}
