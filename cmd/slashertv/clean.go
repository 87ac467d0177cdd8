package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
	"github.com/Thinkelution/slasher-tv-ai/internal/config"
)

func newCleanCmd() *cobra.Command {
	var (
		feedOpts feedFlags
		rendered bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove listing working directories",
		Long: `clean deletes per-listing asset directories.

With --rendered it prints every listing dir that holds render metadata and
removes nothing; otherwise it removes the directories of the selected
listings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := assets.NewStore(cfg.AssetsDir)

			if rendered {
				dirs, err := store.Rendered()
				if err != nil {
					return err
				}
				for _, dir := range dirs {
					fmt.Println(dir)
				}
				fmt.Printf("%d rendered listing(s)\n", len(dirs))
				return nil
			}

			if len(feedOpts.stock) == 0 {
				return fmt.Errorf("refusing to clean the whole store: pass --stock")
			}
			listings, err := feedOpts.load(cfg)
			if err != nil {
				return err
			}
			for _, l := range listings {
				if err := store.Cleanup(l.DealerID, l.StockNumber); err != nil {
					return err
				}
				log.Printf("Removed assets for %s", l.StockNumber)
			}
			return nil
		},
	}

	feedOpts.register(cmd)
	cmd.Flags().BoolVar(&rendered, "rendered", false, "list rendered listing dirs instead of deleting")
	return cmd
}
