package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
	"github.com/Thinkelution/slasher-tv-ai/internal/download"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
	"github.com/Thinkelution/slasher-tv-ai/internal/services"
)

type fakeScript struct{}

func (fakeScript) Name() string { return "fake" }

func (fakeScript) GenerateScript(ctx context.Context, l *models.MotorcycleListing, s models.ScriptStyle) (string, error) {
	return strings.TrimSpace(strings.Repeat("ride hard today ", 24)), nil
}

type fakeTTS struct {
	fail bool
}

func (f *fakeTTS) GenerateSpeech(ctx context.Context, text string, style models.ScriptStyle) (*services.TTSResponse, error) {
	if f.fail {
		return nil, fmt.Errorf("tts down")
	}
	return &services.TTSResponse{AudioData: []byte("mp3"), Format: "mp3"}, nil
}

type fakeRemover struct{}

func (fakeRemover) Name() string { return "fake" }

func (fakeRemover) RemoveBackground(ctx context.Context, data []byte) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 20; y < 80; y++ {
		for x := 20; x < 80; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes(), nil
}

func testPipeline(t *testing.T, photoServer string) *Pipeline {
	t.Helper()
	return &Pipeline{
		Store:      assets.NewStore(t.TempDir()),
		Downloader: download.New(2),
		Removal:    services.NewRemovalChain(fakeRemover{}),
		Scripts:    services.NewScriptChain(fakeScript{}),
		TTS:        []services.TTSService{&fakeTTS{}},
		QR:         services.NewQRService("https://dealer.example/inventory", ""),
	}
}

func testListing(photoURL string) *models.MotorcycleListing {
	return &models.MotorcycleListing{
		DealerID:    "4889",
		StockNumber: "HD1",
		Condition:   "Used",
		Year:        2023,
		Make:        "Harley-Davidson",
		Model:       "Street Glide",
		Price:       24999,
		PhotoURLs:   []string{photoURL},
	}
}

func TestGenerateAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "jpeg-bytes")
	}))
	defer srv.Close()

	p := testPipeline(t, srv.URL)
	dir, err := p.GenerateAssets(context.Background(), testListing(srv.URL+"/a.jpg"), models.StyleAggressive, Options{ProcessImages: true})
	if err != nil {
		t.Fatalf("GenerateAssets failed: %v", err)
	}

	sum, err := assets.Summarize(dir)
	if err != nil {
		t.Fatal(err)
	}
	if sum.PhotoCount != 1 {
		t.Errorf("photo not downloaded: %+v", sum)
	}
	if sum.ProcessedCount != 1 {
		t.Errorf("cutout not written: %+v", sum)
	}
	if !sum.HasScript || !sum.HasVoiceover || !sum.HasQRCode {
		t.Errorf("assets missing: %+v", sum)
	}
	if !sum.HasListing {
		t.Errorf("listing record not persisted: %+v", sum)
	}

	persisted, err := assets.ReadListing(dir)
	if err != nil {
		t.Fatalf("ReadListing failed: %v", err)
	}
	if persisted.StockNumber != "HD1" || persisted.Price != 24999 {
		t.Errorf("persisted listing mismatch: %+v", persisted)
	}

	script, _ := os.ReadFile(assets.ScriptPath(dir))
	if !strings.Contains(string(script), "ride hard") {
		t.Errorf("script content: %q", script)
	}
}

func TestGenerateAssetsTTSFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "jpeg-bytes")
	}))
	defer srv.Close()

	p := testPipeline(t, srv.URL)
	p.TTS = []services.TTSService{&fakeTTS{fail: true}}

	dir, err := p.GenerateAssets(context.Background(), testListing(srv.URL+"/a.jpg"), models.StyleSmooth, Options{})
	if err != nil {
		t.Fatalf("TTS failure should not fail asset generation: %v", err)
	}

	sum, _ := assets.Summarize(dir)
	if sum.HasVoiceover {
		t.Error("no voiceover expected")
	}
	if !sum.HasScript {
		t.Error("script should still be written")
	}
}

func TestRenderVideoWithoutAssets(t *testing.T) {
	p := testPipeline(t, "")
	_, err := p.RenderVideo(context.Background(), testListing("http://unused"), models.StyleAggressive, Options{})
	if err == nil || !strings.Contains(err.Error(), "no photos") {
		t.Errorf("expected no-photos error, got %v", err)
	}
}
