package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Enums

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

type JobType string

const (
	JobTypeGenerateAssets JobType = "generate_assets"
	JobTypeRenderVideo    JobType = "render_video"
)

// ScriptStyle selects the tone of the ad copy and the voiceover delivery.
type ScriptStyle string

const (
	StyleAggressive   ScriptStyle = "aggressive"
	StyleSmooth       ScriptStyle = "smooth"
	StyleProfessional ScriptStyle = "professional"
)

// ParseScriptStyle normalizes a user-supplied style string, defaulting to aggressive.
func ParseScriptStyle(s string) ScriptStyle {
	switch ScriptStyle(strings.ToLower(strings.TrimSpace(s))) {
	case StyleSmooth:
		return StyleSmooth
	case StyleProfessional:
		return StyleProfessional
	default:
		return StyleAggressive
	}
}

// Models

// MotorcycleListing is a single unit from the dealer inventory feed.
// Optional feed columns are pointers; nil means the column was empty or "#N/A".
type MotorcycleListing struct {
	// Identifiers
	DealerID    string `json:"dealer_id"`
	VIN         string `json:"vin"`
	StockNumber string `json:"stock_number"`

	// Basic info
	Condition   string  `json:"condition"` // "New" or "Used" (normalized from N/U)
	Year        int     `json:"year"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	ModelNumber *string `json:"model_number,omitempty"`
	Series      *string `json:"series,omitempty"`

	// Specifications
	Body               *string `json:"body,omitempty"`
	Transmission       *string `json:"transmission,omitempty"`
	Odometer           *int    `json:"odometer,omitempty"`
	EngineDisplacement *string `json:"engine_displacement,omitempty"`
	EngineCylinderCt   *int    `json:"engine_cylinder_count,omitempty"`
	Drivetrain         *string `json:"drivetrain,omitempty"`

	// Appearance
	Color         *string `json:"color,omitempty"`
	InteriorColor *string `json:"interior_color,omitempty"`

	// Pricing
	Invoice       *float64 `json:"invoice,omitempty"`
	MSRP          *float64 `json:"msrp,omitempty"`
	BookValue     *float64 `json:"book_value,omitempty"`
	Price         float64  `json:"price"`
	InternetPrice *float64 `json:"internet_price,omitempty"`

	// Details
	InventoryDate time.Time `json:"inventory_date"`
	Certified     bool      `json:"certified"`
	Description   *string   `json:"description,omitempty"`
	Features      *string   `json:"features,omitempty"`

	// Media
	PhotoURLs  []string `json:"photo_urls"`
	ListingURL *string  `json:"listing_url,omitempty"`

	// Metadata
	ProductType string `json:"product_type"`
}

// DisplayName returns the "2024 Harley-Davidson Low Rider ST" form used in
// overlays and logs.
func (l *MotorcycleListing) DisplayName() string {
	return fmt.Sprintf("%d %s %s", l.Year, l.Make, l.Model)
}

// ShortDescription is the one-line summary used for on-screen feature text.
func (l *MotorcycleListing) ShortDescription() string {
	parts := []string{fmt.Sprintf("%d", l.Year), l.Make, l.Model}
	if l.EngineDisplacement != nil {
		parts = append(parts, "- "+*l.EngineDisplacement)
	}
	if l.Odometer != nil {
		parts = append(parts, fmt.Sprintf("- %s miles", FormatThousands(*l.Odometer)))
	}
	return strings.Join(parts, " ")
}

// Savings returns the MSRP discount, or 0 when MSRP is missing or not below price.
func (l *MotorcycleListing) Savings() float64 {
	if l.MSRP != nil && l.Price < *l.MSRP {
		return *l.MSRP - l.Price
	}
	return 0
}

// IsLowMileage reports whether the bike has fewer than 5000 miles on the clock.
func (l *MotorcycleListing) IsLowMileage() bool {
	return l.Odometer != nil && *l.Odometer < 5000
}

// IsCustom reports whether the listing description marks the bike as a custom build.
func (l *MotorcycleListing) IsCustom() bool {
	if l.Description == nil {
		return false
	}
	desc := strings.ToLower(*l.Description)
	return strings.Contains(desc, "custom") || strings.Contains(desc, "one-of-a-kind")
}

// FormatThousands renders 27990 as "27,990" for prices and odometer readings.
func FormatThousands(n int) string {
	if n < 0 {
		return "-" + FormatThousands(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// VideoMetadata describes a finished render, written next to the video as JSON.
type VideoMetadata struct {
	DealerID       string    `json:"dealer_id"`
	StockNumber    string    `json:"stock_number"`
	VideoPath      string    `json:"video_path"`
	TemplateUsed   string    `json:"template_used"`
	Script         string    `json:"script"`
	VoiceoverPath  string    `json:"voiceover_path,omitempty"`
	QRCodePath     string    `json:"qr_code_path,omitempty"`
	RemoteVideoURL string    `json:"remote_video_url,omitempty"`
	GenerationDate time.Time `json:"generation_date"`
	DurationSec    float64   `json:"duration"`
	Resolution     string    `json:"resolution"`
}

// RenderJob tracks one unit of queued work (API mode, persisted in Postgres).
type RenderJob struct {
	ID           uuid.UUID   `json:"id"`
	Type         JobType     `json:"type"`
	DealerID     string      `json:"dealer_id"`
	StockNumber  string      `json:"stock_number"`
	Style        ScriptStyle `json:"style"`
	Status       JobStatus   `json:"status"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	VideoPath    *string     `json:"video_path,omitempty"`
	RemoteURL    *string     `json:"remote_url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// API request/response types

// GenerateRequest describes a single listing inline, with photo URLs as a
// comma-separated field like the feed.
type GenerateRequest struct {
	StockNumber        string  `json:"stock_number"`
	VIN                *string `json:"vin,omitempty"`
	Year               int     `json:"year"`
	Make               string  `json:"make"`
	Model              string  `json:"model"`
	Price              float64 `json:"price"`
	Condition          string  `json:"condition,omitempty"`
	Color              *string `json:"color,omitempty"`
	Odometer           *int    `json:"odometer,omitempty"`
	EngineDisplacement *string `json:"engine_displacement,omitempty"`
	VoiceStyle         string  `json:"voice_style,omitempty"`
	ListingURL         *string `json:"listing_url,omitempty"`
	Description        *string `json:"description,omitempty"`
	PhotoURLs          string  `json:"photo_urls,omitempty"` // comma-separated

	MaxImages     *int  `json:"max_images,omitempty"`     // default 2
	ProcessImages *bool `json:"process_images,omitempty"` // default true
}

// Listing converts the request into the canonical listing model.
// API-submitted listings live under the "api" pseudo-dealer.
func (r *GenerateRequest) Listing() *MotorcycleListing {
	listing := &MotorcycleListing{
		DealerID:           "api",
		StockNumber:        r.StockNumber,
		Condition:          r.Condition,
		Year:               r.Year,
		Make:               r.Make,
		Model:              r.Model,
		Price:              r.Price,
		Color:              r.Color,
		Odometer:           r.Odometer,
		EngineDisplacement: r.EngineDisplacement,
		Description:        r.Description,
		ListingURL:         r.ListingURL,
		InventoryDate:      time.Now(),
		ProductType:        "Motorcycles",
	}
	if r.VIN != nil {
		listing.VIN = *r.VIN
	}
	if listing.Condition == "" {
		listing.Condition = "Used"
	}
	if listing.Make == "" {
		listing.Make = "Harley-Davidson"
	}
	for _, u := range strings.Split(r.PhotoURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			listing.PhotoURLs = append(listing.PhotoURLs, u)
		}
	}
	return listing
}

type GenerateResponse struct {
	JobID       uuid.UUID `json:"job_id"`
	StockNumber string    `json:"stock_number"`
	Status      JobStatus `json:"status"`
	ListingDir  string    `json:"listing_dir"`
}

// ListingSummary is the lightweight shape returned by GET /v1/listings.
type ListingSummary struct {
	StockNumber string  `json:"stock_number"`
	Year        int     `json:"year"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Price       float64 `json:"price"`
	Condition   string  `json:"condition"`
	Color       *string `json:"color,omitempty"`
	Odometer    *int    `json:"odometer,omitempty"`
}

// Summary projects a listing into its API summary form.
func (l *MotorcycleListing) Summary() ListingSummary {
	return ListingSummary{
		StockNumber: l.StockNumber,
		Year:        l.Year,
		Make:        l.Make,
		Model:       l.Model,
		Price:       l.Price,
		Condition:   l.Condition,
		Color:       l.Color,
		Odometer:    l.Odometer,
	}
}
