package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thinkelution/slasher-tv-ai/internal/config"
	"github.com/Thinkelution/slasher-tv-ai/internal/feed"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// feedFlags are the selection flags shared by every subcommand that walks
// the inventory feed.
type feedFlags struct {
	feedPath  string
	stock     []string
	dealer    string
	condition string
	makeName  string
	minYear   int
	maxYear   int
	minPrice  float64
	maxPrice  float64
	minPhotos int
	limit     int
	strict    bool
}

func (f *feedFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.feedPath, "feed", "", "inventory CSV path (default $FEED_PATH)")
	cmd.Flags().StringSliceVar(&f.stock, "stock", nil, "only these stock numbers (overrides other filters)")
	cmd.Flags().StringVar(&f.dealer, "dealer", "", "filter by dealer ID")
	cmd.Flags().StringVar(&f.condition, "condition", "", "filter by condition (New or Used)")
	cmd.Flags().StringVar(&f.makeName, "make", "", "filter by make")
	cmd.Flags().IntVar(&f.minYear, "min-year", 0, "minimum model year")
	cmd.Flags().IntVar(&f.maxYear, "max-year", 0, "maximum model year")
	cmd.Flags().Float64Var(&f.minPrice, "min-price", 0, "minimum selling price")
	cmd.Flags().Float64Var(&f.maxPrice, "max-price", 0, "maximum selling price")
	cmd.Flags().IntVar(&f.minPhotos, "min-photos", 0, "minimum photo count")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after this many listings (0 = all)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on malformed feed rows instead of skipping them")
}

// load parses the feed and applies the selection flags.
func (f *feedFlags) load(cfg *config.Config) ([]*models.MotorcycleListing, error) {
	path := f.feedPath
	if path == "" {
		path = cfg.FeedPath
	}
	if path == "" {
		return nil, fmt.Errorf("no feed file: pass --feed or set FEED_PATH")
	}

	parser := &feed.Parser{Strict: f.strict}
	listings, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", path, err)
	}

	filter := feed.Filter{
		DealerID:     f.dealer,
		Condition:    f.condition,
		MinYear:      f.minYear,
		MaxYear:      f.maxYear,
		Make:         f.makeName,
		MinPrice:     f.minPrice,
		MaxPrice:     f.maxPrice,
		MinPhotos:    f.minPhotos,
		StockNumbers: f.stock,
		Limit:        f.limit,
	}
	selected := filter.Apply(listings)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no listings matched the given filters (%d in feed)", len(listings))
	}
	return selected, nil
}
