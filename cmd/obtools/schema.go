package main

import (
	"github.com/obstack/obtools/pkg/llmutils"
	"github.com/obstack/obtools/tools/tableschema"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [tables]",
		Short: "Print the schema of the given tables, or of every table when none are given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dbConfig(cmd)
			if err != nil {
				return err
			}
			tool, err := tableschema.New(cfg)
			if err != nil {
				return err
			}

			req := &tableschema.Request{}
			if len(args) > 0 {
				req.Tables = args[0]
			}
			res, err := tool.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write([]byte(llmutils.ToJSONIndent(res.Tables) + "\n"))
			return err
		},
	}

	return cmd
}
