package feed

import (
	"strings"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// Filter narrows a parsed feed to the listings worth rendering.
// Zero values mean "no constraint".
type Filter struct {
	DealerID     string // exact match
	Condition    string // "New" or "Used"
	Make         string // case-insensitive match
	MinYear      int
	MaxYear      int
	MinPrice     float64
	MaxPrice     float64
	MinPhotos    int
	StockNumbers []string // exact stock numbers, overrides the rest when set
	Limit        int
}

// Apply returns the listings matching every set constraint, in feed order.
func (f Filter) Apply(listings []*models.MotorcycleListing) []*models.MotorcycleListing {
	wanted := map[string]bool{}
	for _, s := range f.StockNumbers {
		wanted[strings.ToUpper(strings.TrimSpace(s))] = true
	}

	var out []*models.MotorcycleListing
	for _, l := range listings {
		if len(wanted) > 0 {
			if wanted[strings.ToUpper(l.StockNumber)] {
				out = append(out, l)
			}
			continue
		}
		if f.DealerID != "" && f.DealerID != l.DealerID {
			continue
		}
		if f.Condition != "" && !strings.EqualFold(f.Condition, l.Condition) {
			continue
		}
		if f.Make != "" && !strings.EqualFold(f.Make, l.Make) {
			continue
		}
		if f.MinYear > 0 && l.Year < f.MinYear {
			continue
		}
		if f.MaxYear > 0 && l.Year > f.MaxYear {
			continue
		}
		if f.MinPrice > 0 && l.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && l.Price > f.MaxPrice {
			continue
		}
		if len(l.PhotoURLs) < f.MinPhotos {
			continue
		}
		out = append(out, l)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
