package main

import (
	"fmt"
	"os"

	"github.com/obstack/obtools/tools/executesql"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Execute a read-only SQL query.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dbConfig(cmd)
			if err != nil {
				return err
			}
			tool, err := executesql.New(cfg)
			if err != nil {
				return err
			}

			res, err := tool.Run(cmd.Context(), &executesql.Request{
				SQL:    args[0],
				Format: format,
			})
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, res.Content, 0644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", res.RowCount, out)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(res.Content)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json, md, csv, yaml, toml, xlsx, html")
	cmd.Flags().StringVar(&out, "out", "", "write the result to a file instead of stdout")

	return cmd
}
