package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

func TestListingDirLayout(t *testing.T) {
	store := NewStore(t.TempDir())

	dir, err := store.ListingDir("4889", "HD 12/34")
	if err != nil {
		t.Fatalf("ListingDir failed: %v", err)
	}

	// Unsafe characters are replaced
	if filepath.Base(dir) != "HD_12_34" {
		t.Errorf("unexpected dir name: %q", filepath.Base(dir))
	}

	if _, err := os.Stat(filepath.Join(dir, processedDirName)); err != nil {
		t.Errorf("processed subdir not created: %v", err)
	}

	// Calling again is idempotent
	if _, err := store.ListingDir("4889", "HD 12/34"); err != nil {
		t.Errorf("second ListingDir call failed: %v", err)
	}
}

func TestPhotoOrdering(t *testing.T) {
	store := NewStore(t.TempDir())
	dir, err := store.ListingDir("4889", "HD1")
	if err != nil {
		t.Fatal(err)
	}

	for _, i := range []int{2, 0, 1} {
		if err := os.WriteFile(PhotoPath(dir, i), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	photos, err := Photos(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(photos))
	}
	if filepath.Base(photos[0]) != "photo_00.jpg" || filepath.Base(photos[2]) != "photo_02.jpg" {
		t.Errorf("photos not in index order: %v", photos)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	dir, err := store.ListingDir("4889", "HD1")
	if err != nil {
		t.Fatal(err)
	}

	meta := &models.VideoMetadata{
		DealerID:       "4889",
		StockNumber:    "HD1",
		VideoPath:      VideoPath(dir),
		TemplateUsed:   "dark",
		Script:         "Scan to reserve now.",
		GenerationDate: time.Now().UTC().Truncate(time.Second),
		DurationSec:    30,
		Resolution:     "1920x1080",
	}

	if err := WriteMetadata(dir, meta); err != nil {
		t.Fatalf("WriteMetadata failed: %v", err)
	}

	got, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}
	if got.StockNumber != "HD1" || got.TemplateUsed != "dark" || got.DurationSec != 30 {
		t.Errorf("metadata mismatch: %+v", got)
	}
}

func TestListingMetadataRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	dir, err := store.ListingDir("4889", "HD1")
	if err != nil {
		t.Fatal(err)
	}

	listing := &models.MotorcycleListing{
		DealerID:    "4889",
		StockNumber: "HD1",
		Year:        2024,
		Make:        "Harley-Davidson",
		Model:       "Low Rider ST",
		Price:       22499,
	}
	if err := WriteListing(dir, listing); err != nil {
		t.Fatalf("WriteListing failed: %v", err)
	}

	// Listing record and render metadata are separate files
	if filepath.Base(ListingMetadataPath(dir)) != "metadata.json" {
		t.Errorf("listing metadata file: %s", ListingMetadataPath(dir))
	}
	if filepath.Base(MetadataPath(dir)) != "video_metadata.json" {
		t.Errorf("render metadata file: %s", MetadataPath(dir))
	}

	got, err := ReadListing(dir)
	if err != nil {
		t.Fatalf("ReadListing failed: %v", err)
	}
	if got.StockNumber != "HD1" || got.Model != "Low Rider ST" || got.Price != 22499 {
		t.Errorf("listing mismatch: %+v", got)
	}

	if _, err := ReadMetadata(dir); err == nil {
		t.Error("render metadata should be absent until a render completes")
	}
}

func TestRenderedAndCleanup(t *testing.T) {
	store := NewStore(t.TempDir())

	rendered, err := store.Rendered()
	if err != nil || len(rendered) != 0 {
		t.Fatalf("expected empty store, got %v (%v)", rendered, err)
	}

	dirA, _ := store.ListingDir("4889", "HD1")
	dirB, _ := store.ListingDir("4889", "HD2")

	// Only dirA carries metadata
	if err := WriteMetadata(dirA, &models.VideoMetadata{StockNumber: "HD1"}); err != nil {
		t.Fatal(err)
	}

	rendered, err = store.Rendered()
	if err != nil {
		t.Fatalf("Rendered failed: %v", err)
	}
	if len(rendered) != 1 || rendered[0] != dirA {
		t.Errorf("expected [%s], got %v", dirA, rendered)
	}

	if err := store.Cleanup("4889", "HD1"); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(dirA); !os.IsNotExist(err) {
		t.Errorf("dirA still present after cleanup")
	}
	if _, err := os.Stat(dirB); err != nil {
		t.Errorf("dirB should survive cleanup: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	store := NewStore(t.TempDir())
	dir, err := store.ListingDir("4889", "HD1")
	if err != nil {
		t.Fatal(err)
	}

	os.WriteFile(PhotoPath(dir, 0), []byte("x"), 0o644)
	os.WriteFile(ProcessedPhotoPath(dir, 0), []byte("x"), 0o644)
	os.WriteFile(ScriptPath(dir), []byte("script"), 0o644)

	sum, err := Summarize(dir)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if sum.PhotoCount != 1 || sum.ProcessedCount != 1 {
		t.Errorf("counts wrong: %+v", sum)
	}
	if !sum.HasScript || sum.HasVideo || sum.HasVoiceover {
		t.Errorf("presence flags wrong: %+v", sum)
	}

	if _, err := Summarize(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing dir")
	}
}
