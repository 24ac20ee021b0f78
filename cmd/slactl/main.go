package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/repair-sla-service/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "slactl",
		Short:        "Operator tools for the repair SLA service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.HashJobKeyCmd())
	rootCmd.AddCommand(cli.IssueTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
