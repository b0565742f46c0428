package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	debugOutput bool
	configPath  string
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "xmlserde",
	Short: "Decode, encode, and query XML documents through the xmlserde engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil)).With("trace_id", uuid.NewString())
		if configPath == "" {
			return nil
		}
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading --config: %w", err)
		}
		applyConfigDefaults(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugOutput, "debug", false, "pretty-print results with kr/pretty instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file of CLI defaults (pretty, indent)")
	rootCmd.AddCommand(decodeCmd, encodeCmd, queryCmd)
}

// Execute runs the root command, exiting non-zero on failure — every
// subcommand returns its error through cobra's RunE rather than calling
// os.Exit itself from within a helper.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
