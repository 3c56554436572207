package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/postline/cmd/postline/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "postline",
		Short:         "Post and media upload API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.ServeCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
