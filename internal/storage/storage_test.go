package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestListingKey(t *testing.T) {
	if got := ListingKey("HD612345", "video.mp4"); got != "listings/HD612345/video.mp4" {
		t.Errorf("got %q", got)
	}
}

func TestPublicURL(t *testing.T) {
	s := &R2Store{publicBaseURL: "https://cdn.example.com"}
	if got := s.PublicURL("listings/HD1/video.mp4"); got != "https://cdn.example.com/listings/HD1/video.mp4" {
		t.Errorf("got %q", got)
	}

	bare := &R2Store{}
	if got := bare.PublicURL("listings/HD1/video.mp4"); got != "listings/HD1/video.mp4" {
		t.Errorf("got %q", got)
	}
}

func TestListingAssetFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "processed"), 0o755); err != nil {
		t.Fatal(err)
	}
	seed := []string{
		"video.mp4", "voiceover.mp3", "qr_code.png", "script.txt",
		"photo_00.jpg", // raw photo, stays local
		filepath.Join("processed", "photo_00_nobg.png"),
	}
	for _, name := range seed {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := listingAssetFiles(dir, "HD1")
	if err != nil {
		t.Fatalf("listingAssetFiles failed: %v", err)
	}

	want := []struct {
		local string
		key   string
	}{
		{filepath.Join(dir, "video.mp4"), "listings/HD1/video.mp4"},
		{filepath.Join(dir, "voiceover.mp3"), "listings/HD1/voiceover.mp3"},
		{filepath.Join(dir, "qr_code.png"), "listings/HD1/qr_code.png"},
		{filepath.Join(dir, "script.txt"), "listings/HD1/script.txt"},
		{filepath.Join(dir, "processed", "photo_00_nobg.png"), "listings/HD1/processed/photo_00_nobg.png"},
	}
	if len(files) != len(want) {
		t.Errorf("expected %d files, got %d: %v", len(want), len(files), files)
	}
	for _, w := range want {
		if files[w.local] != w.key {
			t.Errorf("key for %s = %q, want %q", w.local, files[w.local], w.key)
		}
	}
	if _, ok := files[filepath.Join(dir, "photo_00.jpg")]; ok {
		t.Error("raw photos should not be uploaded")
	}

	if _, err := listingAssetFiles(filepath.Join(dir, "missing"), "HD1"); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestIsRetryableError(t *testing.T) {
	if !isRetryableError(fmt.Errorf("api error InternalError: we broke")) {
		t.Error("InternalError should be retryable")
	}
	if !isRetryableError(fmt.Errorf("https response error StatusCode: 503")) {
		t.Error("5xx should be retryable")
	}
	if isRetryableError(errors.New("api error AccessDenied: nope")) {
		t.Error("access denied is not retryable")
	}
}

func TestNewR2StoreRequiresCredentials(t *testing.T) {
	_, err := NewR2Store(t.Context(), R2Config{AccountID: "acct"})
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
}
