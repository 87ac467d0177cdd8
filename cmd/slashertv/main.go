package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "slashertv",
		Short: "Generate 30-second promo spots from a dealer inventory feed",
		Long: `slashertv turns motorcycle inventory feeds into 30-second promo videos.

It downloads listing photos, cuts out the bikes, writes a voiceover script,
synthesizes speech, renders a Ken Burns style spot with ffmpeg, and
optionally uploads the result to R2. Configuration comes from the
environment (and a .env file when present).`,
		SilenceUsage: true,
	}

	root.AddCommand(newListCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCleanCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
