package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versepin",
		Short: "Malayalam Bible verse extraction and Pinterest publishing tool",
		Long: `Versepin extracts Malayalam Bible verse metadata from images using
vision-capable AI models and publishes reviewed records as Pinterest pins.

Run the web interface for interactive review, or use the pin command for a
one-shot extract-and-publish from the terminal.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPinCmd())

	return cmd
}
