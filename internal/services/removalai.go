package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// ---------------------------------------------------------------------------
// Removal.AI background removal
// Primary provider. Unlike Remove.bg the response is JSON with a URL to the
// cutout, so this takes two round trips.
// ---------------------------------------------------------------------------

const removalAIBaseURL = "https://api.removal.ai"

type RemovalAIService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ BackgroundRemover = (*RemovalAIService)(nil)

func NewRemovalAIService(apiKey string) *RemovalAIService {
	return &RemovalAIService{
		apiKey:  apiKey,
		baseURL: removalAIBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

func (s *RemovalAIService) Name() string { return "removal.ai" }

type removalAIResponse struct {
	URL          string `json:"url"`
	HighRes      string `json:"high_resolution"`
	ErrorMessage string `json:"message"`
}

func (s *RemovalAIService) RemoveBackground(ctx context.Context, imageData []byte) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("image_file", "photo.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/3.0/remove", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create removal.ai request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Rm-Token", s.apiKey)

	log.Printf("[RemovalAI] Removing background (%d bytes)", len(imageData))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("removal.ai request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := quotaStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("removal.ai returned status %d: %s", resp.StatusCode, string(errBody))
	}

	var parsed removalAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse removal.ai response: %w", err)
	}

	cutoutURL := parsed.HighRes
	if cutoutURL == "" {
		cutoutURL = parsed.URL
	}
	if cutoutURL == "" {
		return nil, fmt.Errorf("removal.ai returned no image URL: %s", parsed.ErrorMessage)
	}

	return s.fetchCutout(ctx, cutoutURL)
}

func (s *RemovalAIService) fetchCutout(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cutout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cutout fetch returned status %d", resp.StatusCode)
	}
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cutout: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("cutout fetch returned empty image")
	}
	return out, nil
}
