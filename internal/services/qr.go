package services

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// ---------------------------------------------------------------------------
// QR code generation
// Every video ends on a scannable code pointing at the listing's reservation
// page. Highest error correction so an optional center logo stays scannable.
// ---------------------------------------------------------------------------

const qrSize = 400

// QRService renders reservation QR codes.
type QRService struct {
	reserveBaseURL string
	logoPath       string // optional PNG overlaid at the center
}

func NewQRService(reserveBaseURL, logoPath string) *QRService {
	return &QRService{reserveBaseURL: reserveBaseURL, logoPath: logoPath}
}

// ReserveURL resolves the link a code should carry: the listing's own URL
// when the feed has one, otherwise the dealer inventory page plus stock number.
func (s *QRService) ReserveURL(listing *models.MotorcycleListing) string {
	if listing.ListingURL != nil && strings.HasPrefix(*listing.ListingURL, "http") {
		return *listing.ListingURL
	}
	return fmt.Sprintf("%s?stock=%s", s.reserveBaseURL, listing.StockNumber)
}

// Generate writes the QR PNG for a listing to outPath.
func (s *QRService) Generate(listing *models.MotorcycleListing, outPath string) error {
	url := s.ReserveURL(listing)

	data, err := qrcode.Encode(url, qrcode.Highest, qrSize)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}

	if s.logoPath != "" {
		if withLogo, err := overlayLogo(data, s.logoPath); err == nil {
			data = withLogo
		} else {
			log.Printf("[QR] Logo overlay skipped: %v", err)
		}
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}

	log.Printf("[QR] Generated code for %s -> %s", listing.StockNumber, url)
	return nil
}

// overlayLogo draws the logo over the center of the code. The logo is capped
// at a quarter of the QR side; highest error correction tolerates the patch.
func overlayLogo(qrPNG []byte, logoPath string) ([]byte, error) {
	qrImg, err := png.Decode(bytes.NewReader(qrPNG))
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR image: %w", err)
	}

	logoFile, err := os.Open(logoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open logo: %w", err)
	}
	defer logoFile.Close()

	logo, _, err := image.Decode(logoFile)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}

	qb := qrImg.Bounds()
	lb := logo.Bounds()
	maxLogo := qb.Dx() / 4
	if lb.Dx() > maxLogo || lb.Dy() > maxLogo {
		return nil, fmt.Errorf("logo too large (%dx%d, max %d)", lb.Dx(), lb.Dy(), maxLogo)
	}

	out := image.NewNRGBA(qb)
	draw.Draw(out, qb, qrImg, qb.Min, draw.Src)

	offset := image.Pt(
		qb.Min.X+(qb.Dx()-lb.Dx())/2,
		qb.Min.Y+(qb.Dy()-lb.Dy())/2,
	)
	draw.Draw(out, image.Rectangle{Min: offset, Max: offset.Add(lb.Size())}, logo, lb.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
