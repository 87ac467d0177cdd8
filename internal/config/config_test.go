package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %q, want %q", cfg.FFmpegPath, "ffmpeg")
	}
	if cfg.QRLogoPath != "" {
		t.Errorf("QRLogoPath = %q, want empty default", cfg.QRLogoPath)
	}
	if cfg.MaxImagesPerListing != 6 {
		t.Errorf("MaxImagesPerListing = %d, want 6", cfg.MaxImagesPerListing)
	}
}

func TestLoadQRLogoPath(t *testing.T) {
	t.Setenv("QR_LOGO_PATH", "assets/logo.png")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QRLogoPath != "assets/logo.png" {
		t.Errorf("QRLogoPath = %q, want %q", cfg.QRLogoPath, "assets/logo.png")
	}
}
