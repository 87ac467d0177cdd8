package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

// cutoutPNG builds a PNG with an opaque square surrounded by transparency.
func cutoutPNG(t *testing.T, size, boxStart, boxEnd int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := boxStart; y < boxEnd; y++ {
		for x := boxStart; x < boxEnd; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type fakeRemover struct {
	name  string
	out   []byte
	err   error
	calls int
}

func (f *fakeRemover) Name() string { return f.name }

func (f *fakeRemover) RemoveBackground(ctx context.Context, data []byte) ([]byte, error) {
	f.calls++
	return f.out, f.err
}

func TestRemovalChain(t *testing.T) {
	good := cutoutPNG(t, 200, 50, 150)

	primary := &fakeRemover{name: "primary", err: ErrQuotaExceeded}
	secondary := &fakeRemover{name: "secondary", out: good}

	chain := NewRemovalChain(primary, secondary)
	res := chain.Remove(context.Background(), []byte("photo"))

	if res.PassThrough {
		t.Fatal("expected a provider result")
	}
	if res.Provider != "secondary" {
		t.Errorf("expected secondary provider, got %q", res.Provider)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("call counts: primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestRemovalChainPassThrough(t *testing.T) {
	failing := &fakeRemover{name: "failing", err: fmt.Errorf("down")}

	chain := NewRemovalChain(failing)
	original := []byte("original-photo-bytes")
	res := chain.Remove(context.Background(), original)

	if !res.PassThrough {
		t.Fatal("expected pass-through")
	}
	if !bytes.Equal(res.Data, original) {
		t.Error("pass-through must return the input untouched")
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	failing := &fakeRemover{name: "flaky", err: fmt.Errorf("503")}
	breaker := NewBreakerRemover(failing)

	for i := 0; i < 5; i++ {
		breaker.RemoveBackground(context.Background(), nil)
	}

	// After three consecutive failures the breaker stops calling through
	if failing.calls != 3 {
		t.Errorf("expected 3 upstream calls before the breaker opened, got %d", failing.calls)
	}
}

func TestQuotaStatus(t *testing.T) {
	if err := quotaStatus(402); err == nil {
		t.Error("402 should map to quota error")
	}
	if err := quotaStatus(429); err == nil {
		t.Error("429 should map to quota error")
	}
	if err := quotaStatus(500); err != nil {
		t.Error("500 is not a quota error")
	}
}

func TestRemoveBgService(t *testing.T) {
	cutout := cutoutPNG(t, 100, 20, 80)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("not multipart: %v", err)
		}
		if r.FormValue("type") != "product" {
			t.Errorf("expected type=product, got %q", r.FormValue("type"))
		}
		w.Write(cutout)
	}))
	defer srv.Close()

	s := NewRemoveBgService("test-key")
	s.baseURL = srv.URL

	out, err := s.RemoveBackground(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("RemoveBackground failed: %v", err)
	}
	if !bytes.Equal(out, cutout) {
		t.Error("unexpected cutout bytes")
	}
}

func TestRemoveBgServiceQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	s := NewRemoveBgService("k")
	s.baseURL = srv.URL

	_, err := s.RemoveBackground(context.Background(), []byte("jpeg"))
	if err == nil || !bytes.Contains([]byte(err.Error()), []byte("quota")) {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestRemovalAIService(t *testing.T) {
	cutout := cutoutPNG(t, 100, 20, 80)

	var cutoutURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/3.0/remove":
			if r.Header.Get("Rm-Token") != "rm-key" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprintf(w, `{"url":%q}`, cutoutURL)
		case "/cutout.png":
			w.Write(cutout)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	cutoutURL = srv.URL + "/cutout.png"

	s := NewRemovalAIService("rm-key")
	s.baseURL = srv.URL

	out, err := s.RemoveBackground(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("RemoveBackground failed: %v", err)
	}
	if !bytes.Equal(out, cutout) {
		t.Error("unexpected cutout bytes")
	}
}

func TestPostProcessCutout(t *testing.T) {
	// 400px canvas, content box 100..300
	in := cutoutPNG(t, 400, 100, 300)

	out, err := PostProcessCutout(in)
	if err != nil {
		t.Fatalf("PostProcessCutout failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output not PNG: %v", err)
	}

	// Cropped to content (200px) plus margin on each side
	want := 200 + 2*cropMargin
	if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Errorf("expected %dpx square, got %v", want, img.Bounds())
	}
}

func TestPostProcessCutoutRejectsEmpty(t *testing.T) {
	blank := cutoutPNG(t, 50, 0, 0) // fully transparent
	if _, err := PostProcessCutout(blank); err == nil {
		t.Error("fully transparent cutout should be rejected")
	}
}
