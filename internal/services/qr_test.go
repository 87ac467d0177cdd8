package services

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

func TestReserveURL(t *testing.T) {
	s := NewQRService("https://dealer.example/inventory", "")

	withURL := &models.MotorcycleListing{
		StockNumber: "HD1",
		ListingURL:  ptr("https://dealer.example/bikes/hd1"),
	}
	if got := s.ReserveURL(withURL); got != "https://dealer.example/bikes/hd1" {
		t.Errorf("got %q", got)
	}

	withoutURL := &models.MotorcycleListing{StockNumber: "HD2"}
	if got := s.ReserveURL(withoutURL); got != "https://dealer.example/inventory?stock=HD2" {
		t.Errorf("got %q", got)
	}
}

func TestGenerateQRCode(t *testing.T) {
	s := NewQRService("https://dealer.example/inventory", "")
	out := filepath.Join(t.TempDir(), "qr_code.png")

	if err := s.Generate(&models.MotorcycleListing{StockNumber: "HD1"}, out); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != qrSize {
		t.Errorf("expected %dpx code, got %d", qrSize, img.Bounds().Dx())
	}
}

func TestGenerateQRCodeWithMissingLogo(t *testing.T) {
	// A bad logo path degrades to a plain code instead of failing
	s := NewQRService("https://dealer.example/inventory", "/nonexistent/logo.png")
	out := filepath.Join(t.TempDir(), "qr_code.png")

	if err := s.Generate(&models.MotorcycleListing{StockNumber: "HD1"}, out); err != nil {
		t.Fatalf("Generate should not fail on logo problems: %v", err)
	}
}
