// Package main is the rank bootstrap for syncore: a small Cobra CLI that
// wires up the pieces this core needs and otherwise stays out of the
// way. It starts exactly one rank process; running a multi-rank topology
// means starting one process per rank and pointing their --peers flags at
// each other.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "syncored",
	Short: "syncored runs one rank of a parallel discrete-event simulation.",
	Long: `syncored bootstraps one rank's workers, wires the rank-level and ` +
		`thread-level sync tiers described by this module, and runs the ` +
		`rank's event loop to completion or termination.`,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Overload(envFile); err != nil {
			return fmt.Errorf("syncored: loading env file %s: %w", envFile, err)
		}
		return nil
	},
}

// Execute registers the root's persistent --env-file flag and runs the
// command tree; subcommands add themselves to the root in their own init
// functions.
func Execute() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"optional .env file with local overrides")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
