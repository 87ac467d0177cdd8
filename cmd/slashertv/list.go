package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Thinkelution/slasher-tv-ai/internal/config"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

func newListCmd() *cobra.Command {
	var feedOpts feedFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Parse the feed and print the listings that would be processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			listings, err := feedOpts.load(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STOCK\tCONDITION\tBIKE\tPRICE\tPHOTOS")
			for _, l := range listings {
				fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%d\n",
					l.StockNumber, l.Condition, l.DisplayName(),
					models.FormatThousands(int(l.Price)), len(l.PhotoURLs))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d listing(s)\n", len(listings))
			return nil
		},
	}

	feedOpts.register(cmd)
	return cmd
}
