package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

const (
	cartesiaAPIVersion   = "2024-06-10"
	cartesiaDefaultVoice = "a0e99841-438c-4a64-b679-ae501e7d6091"
	cartesiaDefaultURL   = "https://api.cartesia.ai"
)

// cartesiaDelivery maps a script style onto Cartesia generation settings.
type cartesiaDelivery struct {
	emotion string
	speed   float64
}

var cartesiaStyles = map[models.ScriptStyle]cartesiaDelivery{
	models.StyleAggressive:   {emotion: "excited", speed: 1.05},
	models.StyleSmooth:       {emotion: "calm", speed: 0.9},
	models.StyleProfessional: {emotion: "confident", speed: 0.95},
}

// CartesiaService is a legacy TTS fallback, kept behind ElevenLabs in the
// provider chain for accounts that still carry Cartesia credits.
type CartesiaService struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
}

func NewCartesiaService(apiKey, apiURL string) *CartesiaService {
	return NewCartesiaServiceWithVoice(apiKey, apiURL, "")
}

func NewCartesiaServiceWithVoice(apiKey, apiURL, voiceID string) *CartesiaService {
	if apiURL == "" {
		apiURL = cartesiaDefaultURL
	}
	if voiceID == "" {
		voiceID = cartesiaDefaultVoice
	}
	return &CartesiaService{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: apiURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

var _ TTSService = (*CartesiaService)(nil)

type cartesiaRequest struct {
	ModelID      string                `json:"model_id"`
	Transcript   string                `json:"transcript"`
	Voice        cartesiaVoice         `json:"voice"`
	Language     string                `json:"language,omitempty"`
	OutputFormat cartesiaOutputFormat  `json:"output_format"`
	Config       *cartesiaGenerateConf `json:"generation_config,omitempty"`
}

type cartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	SampleRate int    `json:"sample_rate"`
	BitRate    int    `json:"bit_rate,omitempty"`
}

type cartesiaGenerateConf struct {
	Speed   *float64 `json:"speed,omitempty"`
	Emotion *string  `json:"emotion,omitempty"`
}

// GenerateSpeech renders the script through Cartesia's bytes endpoint and
// returns the raw mp3.
func (s *CartesiaService) GenerateSpeech(ctx context.Context, text string, style models.ScriptStyle) (*TTSResponse, error) {
	delivery, ok := cartesiaStyles[style]
	if !ok {
		delivery = cartesiaStyles[models.StyleAggressive]
	}

	reqBody := cartesiaRequest{
		ModelID:    "sonic-english",
		Transcript: text,
		Voice:      cartesiaVoice{Mode: "id", ID: s.voiceID},
		Language:   "en",
		OutputFormat: cartesiaOutputFormat{
			Container:  "mp3",
			SampleRate: 44100,
			BitRate:    192000,
		},
		Config: &cartesiaGenerateConf{
			Speed:   &delivery.speed,
			Emotion: &delivery.emotion,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/tts/bytes", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cartesia-Version", cartesiaAPIVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cartesia returned status %d: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	return &TTSResponse{
		AudioData:  audioData,
		DurationMs: estimateAudioDuration(text, delivery.speed),
		Format:     "mp3",
	}, nil
}
