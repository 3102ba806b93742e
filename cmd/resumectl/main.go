// Package main implements resumectl, an offline companion to the builder API
// for scoring, rendering, importing and exporting résumé documents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Work with resume documents from the command line",
	Long:          "resumectl scores, renders, imports and exports resume documents stored as YAML or JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
