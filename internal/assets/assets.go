// Package assets manages the on-disk layout of per-listing working
// directories.
//
// Each listing gets <root>/<dealerID>/<stockNumber>/ containing the downloaded
// photos, processed cutouts, QR code, script, voiceover and rendered video,
// plus metadata.json (the listing record) and video_metadata.json (the
// finished render).
package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

const (
	processedDirName        = "processed"
	listingMetadataFileName = "metadata.json"
	renderMetadataFileName  = "video_metadata.json"
)

// Store resolves and creates listing directories under a fixed root.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

// ListingDir returns the working directory for a listing, creating it along
// with its processed/ subdirectory.
func (s *Store) ListingDir(dealerID, stockNumber string) (string, error) {
	if dealerID == "" {
		dealerID = "unknown"
	}
	dir := filepath.Join(s.root, sanitize(dealerID), sanitize(stockNumber))
	if err := os.MkdirAll(filepath.Join(dir, processedDirName), 0o755); err != nil {
		return "", fmt.Errorf("failed to create listing dir: %w", err)
	}
	return dir, nil
}

// Path helpers. All take the listing dir returned by ListingDir.

func PhotoPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("photo_%02d.jpg", index))
}

func ProcessedPhotoPath(dir string, index int) string {
	return filepath.Join(dir, processedDirName, fmt.Sprintf("photo_%02d_nobg.png", index))
}

func QRCodePath(dir string) string    { return filepath.Join(dir, "qr_code.png") }
func ScriptPath(dir string) string    { return filepath.Join(dir, "script.txt") }
func VoiceoverPath(dir string) string { return filepath.Join(dir, "voiceover.mp3") }
func VideoPath(dir string) string     { return filepath.Join(dir, "video.mp4") }

func ListingMetadataPath(dir string) string { return filepath.Join(dir, listingMetadataFileName) }
func MetadataPath(dir string) string        { return filepath.Join(dir, renderMetadataFileName) }

// Photos returns the downloaded photo paths in index order.
func Photos(dir string) ([]string, error) {
	return globSorted(filepath.Join(dir, "photo_*.jpg"))
}

// ProcessedPhotos returns the background-removed cutouts in index order.
func ProcessedPhotos(dir string) ([]string, error) {
	return globSorted(filepath.Join(dir, processedDirName, "photo_*_nobg.png"))
}

func globSorted(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// WriteListing persists the listing record to the dir so batch-rendered
// assets stay self-describing without the feed file.
func WriteListing(dir string, listing *models.MotorcycleListing) error {
	data, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	if err := os.WriteFile(ListingMetadataPath(dir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write listing metadata: %w", err)
	}
	return nil
}

// ReadListing loads the listing record from a dir.
func ReadListing(dir string) (*models.MotorcycleListing, error) {
	data, err := os.ReadFile(ListingMetadataPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read listing metadata: %w", err)
	}
	var listing models.MotorcycleListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing metadata: %w", err)
	}
	return &listing, nil
}

// WriteMetadata persists the render metadata next to the video.
func WriteMetadata(dir string, meta *models.VideoMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(MetadataPath(dir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads the render metadata from a listing dir. Returns a
// wrapped os.ErrNotExist when the listing has never been rendered.
func ReadMetadata(dir string) (*models.VideoMetadata, error) {
	data, err := os.ReadFile(MetadataPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta models.VideoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &meta, nil
}

// Summary describes what a listing dir currently contains.
type Summary struct {
	Dir            string `json:"dir"`
	PhotoCount     int    `json:"photo_count"`
	ProcessedCount int    `json:"processed_count"`
	HasQRCode      bool   `json:"has_qr_code"`
	HasScript      bool   `json:"has_script"`
	HasVoiceover   bool   `json:"has_voiceover"`
	HasVideo       bool   `json:"has_video"`
	HasListing     bool   `json:"has_listing"`
	HasMetadata    bool   `json:"has_metadata"`
}

// Summarize inspects a listing dir without reading file contents.
func Summarize(dir string) (*Summary, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("listing dir unavailable: %w", err)
	}

	photos, _ := Photos(dir)
	processed, _ := ProcessedPhotos(dir)

	return &Summary{
		Dir:            dir,
		PhotoCount:     len(photos),
		ProcessedCount: len(processed),
		HasQRCode:      fileExists(QRCodePath(dir)),
		HasScript:      fileExists(ScriptPath(dir)),
		HasVoiceover:   fileExists(VoiceoverPath(dir)),
		HasVideo:       fileExists(VideoPath(dir)),
		HasListing:     fileExists(ListingMetadataPath(dir)),
		HasMetadata:    fileExists(MetadataPath(dir)),
	}, nil
}

// Rendered walks the store root and returns every listing dir that carries
// render metadata, sorted by path.
func (s *Store) Rendered() ([]string, error) {
	dealers, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read assets root: %w", err)
	}

	var dirs []string
	for _, dealer := range dealers {
		if !dealer.IsDir() {
			continue
		}
		listings, err := os.ReadDir(filepath.Join(s.root, dealer.Name()))
		if err != nil {
			continue
		}
		for _, listing := range listings {
			if !listing.IsDir() {
				continue
			}
			dir := filepath.Join(s.root, dealer.Name(), listing.Name())
			if fileExists(MetadataPath(dir)) {
				dirs = append(dirs, dir)
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Cleanup removes a listing's working directory entirely.
func (s *Store) Cleanup(dealerID, stockNumber string) error {
	if dealerID == "" {
		dealerID = "unknown"
	}
	dir := filepath.Join(s.root, sanitize(dealerID), sanitize(stockNumber))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove listing dir: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// sanitize keeps directory names filesystem-safe across platforms.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
