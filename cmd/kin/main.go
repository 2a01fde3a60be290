// Package main provides the entry point for the kin CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"

	globalFamily   string
	globalAs       string
	globalAdmin    bool
	globalLogLevel string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "kin",
		Short:         "Consent-based family links and generation-labeled family trees",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalFamily, "family", "F", "", "Named family database to operate on (default: the main database)")
	rootCmd.PersistentFlags().StringVar(&globalAs, "as", "", "numeroH to act as (overrides caller.numero_h)")
	rootCmd.PersistentFlags().BoolVar(&globalAdmin, "admin", false, "Act as an administrator")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCmd(),
		newPersonCmd(),
		newLinkCmd(),
		newTreeCmd(),
		newAdviseCmd(),
		newExportCmd(),
		newFamilyCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
