package main

import (
	"fmt"
	"os"

	"github.com/effective-security/xlog"
	"github.com/obstack/obtools/pkg/llmfactory"
	"github.com/obstack/obtools/pkg/obdb"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:     "obtools",
		Short:   "Database tools for OceanBase and SeekDB.",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().String("db-config", envWithDefault("OBTOOLS_DB_CONFIG", "obdb.json"), "path to the database configuration file (env: OBTOOLS_DB_CONFIG)")
	rootCmd.PersistentFlags().String("llm-config", envWithDefault("OBTOOLS_LLM_CONFIG", ""), "path to the LLM provider configuration file (env: OBTOOLS_LLM_CONFIG)")

	cobra.OnInitialize(func() {
		xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
		if verbose {
			xlog.SetGlobalLogLevel(xlog.DEBUG)
		} else {
			xlog.SetGlobalLogLevel(xlog.INFO)
		}
	})

	rootCmd.AddCommand(
		newServeCmd(),
		newValidateCmd(),
		newQueryCmd(),
		newSchemaCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func envWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

func dbConfig(cmd *cobra.Command) (*obdb.Config, error) {
	file, err := cmd.Root().PersistentFlags().GetString("db-config")
	if err != nil {
		return nil, err
	}
	return obdb.LoadConfig(file)
}

func llmFactory(cmd *cobra.Command) (llmfactory.Factory, error) {
	file, err := cmd.Root().PersistentFlags().GetString("llm-config")
	if err != nil {
		return nil, err
	}
	return llmfactory.Load(file)
}
