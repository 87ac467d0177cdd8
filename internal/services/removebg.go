package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// ---------------------------------------------------------------------------
// Remove.bg background removal
// Multipart upload, response body is the cutout PNG. 402/429 mean the free
// credits ran out and the chain should move on immediately.
// ---------------------------------------------------------------------------

const removeBgBaseURL = "https://api.remove.bg"

type RemoveBgService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ BackgroundRemover = (*RemoveBgService)(nil)

func NewRemoveBgService(apiKey string) *RemoveBgService {
	return &RemoveBgService{
		apiKey:  apiKey,
		baseURL: removeBgBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *RemoveBgService) Name() string { return "remove.bg" }

func (s *RemoveBgService) RemoveBackground(ctx context.Context, imageData []byte) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("image_file", "photo.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	// type=product keeps the whole bike, not just a detected foreground subject
	w.WriteField("type", "product")
	w.WriteField("size", "auto")
	w.WriteField("format", "png")
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1.0/removebg", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create remove.bg request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Api-Key", s.apiKey)

	log.Printf("[RemoveBg] Removing background (%d bytes)", len(imageData))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remove.bg request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := quotaStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("remove.bg returned status %d: %s", resp.StatusCode, string(errBody))
	}

	// The response body IS the cutout PNG
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remove.bg response: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("remove.bg returned empty image")
	}
	return out, nil
}
