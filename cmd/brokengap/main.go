// Package main provides the brokengap command: it screens a 2D materials
// catalogue for broken-gap heterojunction pairs and prints the ranked result.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brokengap",
	Short: "Broken-gap heterojunction screening",
	Long: "brokengap pairs every record of a 2D materials catalogue with every other record, " +
		"keeps the pairs whose band edges form a type III (broken-gap) alignment and ranks them.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
