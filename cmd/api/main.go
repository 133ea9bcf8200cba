package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/flatpress/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flatpress",
		Short: "FlatPress blog server",
		Long:  `FlatPress is a single-operator blog platform that keeps its posts in a flat JSON file instead of a database.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewPostCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
