package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Thinkelution/slasher-tv-ai/internal/config"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
	"github.com/Thinkelution/slasher-tv-ai/internal/pipeline"
)

// render re-runs only the compose stage against assets already on disk,
// for iterating on templates without burning API quota.
func newRenderCmd() *cobra.Command {
	var (
		feedOpts feedFlags
		style    string
		template string
		upload   bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Re-render spots from previously generated assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if template != "" {
				cfg.VideoTemplate = template
			}
			if upload && !cfg.R2Enabled() {
				return fmt.Errorf("--upload requires R2 credentials in the environment")
			}

			listings, err := feedOpts.load(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := pipeline.FromConfig(ctx, cfg)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Upload: upload}
			scriptStyle := models.ParseScriptStyle(style)

			var failed int
			for _, listing := range listings {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res, err := p.RenderVideo(ctx, listing, scriptStyle, opts)
				if err != nil {
					failed++
					log.Printf("FAIL %s: %v", listing.StockNumber, err)
					continue
				}
				reportResult(res)
			}
			if failed > 0 {
				return fmt.Errorf("%d listing(s) failed", failed)
			}
			return nil
		},
	}

	feedOpts.register(cmd)
	cmd.Flags().StringVar(&style, "style", "aggressive", "voiceover style: aggressive, smooth, professional")
	cmd.Flags().StringVar(&template, "template", "", "video template (default $VIDEO_TEMPLATE)")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload finished videos to R2")
	return cmd
}
