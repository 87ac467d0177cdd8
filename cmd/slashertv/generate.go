package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Thinkelution/slasher-tv-ai/internal/config"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
	"github.com/Thinkelution/slasher-tv-ai/internal/pipeline"
)

func newGenerateCmd() *cobra.Command {
	var (
		feedOpts    feedFlags
		style       string
		concurrency int
		maxImages   int
		skipRemoval bool
		force       bool
		upload      bool
		template    string
		assetsOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline for every selected listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if template != "" {
				cfg.VideoTemplate = template
			}
			if maxImages > 0 {
				cfg.MaxImagesPerListing = maxImages
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

			opts := pipeline.Options{
				MaxImages:     cfg.MaxImagesPerListing,
				ProcessImages: !skipRemoval,
				ForceDownload: force,
				Upload:        upload,
			}
			scriptStyle := models.ParseScriptStyle(style)

			log.Printf("Generating %d spot(s), concurrency %d", len(listings), concurrency)

			var done, failed atomic.Int64
			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for _, listing := range listings {
				listing := listing
				g.Go(func() error {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					if assetsOnly {
						dir, err := p.GenerateAssets(ctx, listing, scriptStyle, opts)
						if err != nil {
							failed.Add(1)
							log.Printf("FAIL %s: %v", listing.StockNumber, err)
							return nil
						}
						done.Add(1)
						log.Printf("OK   %s assets in %s", listing.StockNumber, dir)
						return nil
					}
					res, err := p.Run(ctx, listing, scriptStyle, opts)
					if err != nil {
						failed.Add(1)
						log.Printf("FAIL %s: %v", listing.StockNumber, err)
						return nil
					}
					done.Add(1)
					reportResult(res)
					return nil
				})
			}
			if err := g.Wait(); err != nil && err != context.Canceled {
				return err
			}

			log.Printf("Done: %d succeeded, %d failed", done.Load(), failed.Load())
			if failed.Load() > 0 {
				return fmt.Errorf("%d listing(s) failed", failed.Load())
			}
			return nil
		},
	}

	feedOpts.register(cmd)
	cmd.Flags().StringVar(&style, "style", "aggressive", "voiceover style: aggressive, smooth, professional")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "listings processed in parallel")
	cmd.Flags().IntVar(&maxImages, "max-images", 0, "photos per listing (default $MAX_IMAGES_PER_LISTING)")
	cmd.Flags().BoolVar(&skipRemoval, "skip-bg-removal", false, "use raw photos instead of cutouts")
	cmd.Flags().BoolVar(&force, "force-download", false, "refetch photos even when already on disk")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload finished videos to R2")
	cmd.Flags().StringVar(&template, "template", "", "video template (default $VIDEO_TEMPLATE)")
	cmd.Flags().BoolVar(&assetsOnly, "assets-only", false, "stop after asset generation, skip the render")
	return cmd
}

func reportResult(res *pipeline.Result) {
	line := fmt.Sprintf("OK   %s %s (%.1fs render)", res.Listing.StockNumber, res.Metadata.VideoPath, res.Elapsed.Seconds())
	if res.Metadata.RemoteVideoURL != "" {
		line += " -> " + res.Metadata.RemoteVideoURL
	}
	log.Print(line)
}
