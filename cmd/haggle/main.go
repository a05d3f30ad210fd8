package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/haggle/internal/cli"
	"github.com/example/haggle/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "haggle",
		Short:   "haggle - negotiation engine for the artisan marketplace",
		Version: version.String(),
		Long: `haggle is a CLI tool for bilateral negotiations between buyers and artisans.
It handles price negotiations against catalog items and custom-order
negotiations for bespoke work, with turn order, expiry and full history.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.NegotiationCmd())
	rootCmd.AddCommand(cli.CatalogCmd())
	rootCmd.AddCommand(cli.SweepCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
