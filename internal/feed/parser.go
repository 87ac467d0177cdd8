// Package feed parses dealer inventory CSV exports into listing models.
//
// Feeds in the wild are messy: columns move around between exports, numeric
// cells carry "$" and "," formatting, and missing values show up as "", "#N/A"
// or "N/A". The parser keys every row by header name and treats anything it
// cannot parse as absent rather than failing the whole feed.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// Parser reads inventory feeds. A zero-value Parser is usable.
type Parser struct {
	// Strict rejects the whole feed on the first bad row instead of skipping it.
	Strict bool
}

// ParseFile opens and parses a CSV inventory feed from disk.
func (p *Parser) ParseFile(path string) ([]*models.MotorcycleListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads a CSV inventory feed. Rows missing required fields (stock number,
// year, make, model, price) are skipped with a warning unless Strict is set.
func (p *Parser) Parse(r io.Reader) ([]*models.MotorcycleListing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}

	var listings []*models.MotorcycleListing
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if p.Strict {
				return nil, fmt.Errorf("failed to read feed line %d: %w", line, err)
			}
			log.Printf("[Feed] Skipping unreadable line %d: %v", line, err)
			continue
		}

		listing, err := parseRow(cols, record)
		if err != nil {
			if p.Strict {
				return nil, fmt.Errorf("bad listing at line %d: %w", line, err)
			}
			log.Printf("[Feed] Skipping line %d: %v", line, err)
			continue
		}
		listings = append(listings, listing)
	}

	log.Printf("[Feed] Parsed %d listings", len(listings))
	return listings, nil
}

func parseRow(cols map[string]int, record []string) (*models.MotorcycleListing, error) {
	row := rowReader{cols: cols, record: record}

	stock := row.str("stock_number", "stock", "stock_no")
	if stock == "" {
		return nil, fmt.Errorf("missing stock number")
	}
	year, ok := row.intVal("year")
	if !ok {
		return nil, fmt.Errorf("missing or invalid year")
	}
	make_ := row.str("make")
	model := row.str("model")
	if make_ == "" || model == "" {
		return nil, fmt.Errorf("missing make/model")
	}
	price, ok := row.floatVal("price", "selling_price")
	if !ok || price <= 0 {
		return nil, fmt.Errorf("missing or invalid price")
	}

	listing := &models.MotorcycleListing{
		DealerID:           row.str("dealer_id", "dealerid"),
		VIN:                row.str("vin"),
		StockNumber:        stock,
		Condition:          normalizeCondition(row.str("new_used", "condition")),
		Year:               year,
		Make:               make_,
		Model:              model,
		ModelNumber:        row.strPtr("model_number"),
		Series:             row.strPtr("series"),
		Body:               row.strPtr("body", "body_style"),
		Transmission:       row.strPtr("transmission"),
		Odometer:           row.intPtr("odometer", "miles", "mileage"),
		EngineDisplacement: row.strPtr("engine_displacement", "displacement"),
		EngineCylinderCt:   row.intPtr("engine_cylinder_ct", "cylinders"),
		Drivetrain:         row.strPtr("drivetrain", "drivetrain_desc"),
		Color:              row.strPtr("color", "exterior_color"),
		InteriorColor:      row.strPtr("interior_color"),
		Invoice:            row.floatPtr("invoice"),
		MSRP:               row.floatPtr("msrp"),
		BookValue:          row.floatPtr("book_value"),
		Price:              price,
		InternetPrice:      row.floatPtr("internet_price"),
		InventoryDate:      row.date("inventory_date", "date_in_stock"),
		Certified:          row.boolVal("certified"),
		Description:        row.strPtr("description"),
		Features:           row.strPtr("features", "options"),
		PhotoURLs:          splitPhotoURLs(row.str("photo_url_list", "photo_urls", "photos")),
		ListingURL:         row.strPtr("listing_url", "vehicle_url", "url"),
		ProductType:        row.str("product_type", "type"),
	}
	if listing.ProductType == "" {
		listing.ProductType = "Motorcycles"
	}
	return listing, nil
}

// rowReader resolves cells by any of several header aliases.
type rowReader struct {
	cols   map[string]int
	record []string
}

func (r rowReader) str(keys ...string) string {
	for _, k := range keys {
		i, ok := r.cols[k]
		if !ok || i >= len(r.record) {
			continue
		}
		v := strings.TrimSpace(r.record[i])
		if v == "" || isNA(v) {
			continue
		}
		return v
	}
	return ""
}

func (r rowReader) strPtr(keys ...string) *string {
	if v := r.str(keys...); v != "" {
		return &v
	}
	return nil
}

func (r rowReader) intVal(keys ...string) (int, bool) {
	v := r.str(keys...)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(cleanNumeric(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r rowReader) intPtr(keys ...string) *int {
	if n, ok := r.intVal(keys...); ok {
		return &n
	}
	return nil
}

func (r rowReader) floatVal(keys ...string) (float64, bool) {
	v := r.str(keys...)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleanNumeric(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (r rowReader) floatPtr(keys ...string) *float64 {
	if f, ok := r.floatVal(keys...); ok {
		return &f
	}
	return nil
}

func (r rowReader) boolVal(keys ...string) bool {
	switch strings.ToLower(r.str(keys...)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

// date tries the common feed layouts and falls back to now, so a listing
// never carries a zero inventory date.
func (r rowReader) date(keys ...string) time.Time {
	v := r.str(keys...)
	for _, layout := range []string{"2006-01-02", "1/2/2006", "01/02/2006", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Now()
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff") // Excel exports carry a BOM
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "#", "number")
	h = strings.ReplaceAll(h, "/", "_")
	return h
}

// normalizeCondition maps feed shorthand (N/U) to display form.
func normalizeCondition(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "N", "NEW":
		return "New"
	case "U", "USED", "PRE-OWNED":
		return "Used"
	}
	return "Used"
}

func splitPhotoURLs(v string) []string {
	if v == "" {
		return nil
	}
	var urls []string
	for _, u := range strings.Split(v, ",") {
		u = strings.TrimSpace(u)
		if u == "" || !strings.HasPrefix(u, "http") {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

func isNA(v string) bool {
	switch strings.ToUpper(v) {
	case "#N/A", "N/A", "NA", "NULL", "NONE":
		return true
	}
	return false
}

func cleanNumeric(v string) string {
	v = strings.ReplaceAll(v, "$", "")
	v = strings.ReplaceAll(v, ",", "")
	return strings.TrimSpace(v)
}
