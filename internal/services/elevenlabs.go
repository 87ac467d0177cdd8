package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech Service
// Uses the ElevenLabs REST API to voice the ad script. Each script style maps
// to a fixed voice and delivery settings tuned for 30-second spots.
// ---------------------------------------------------------------------------

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsDefaultModel = "eleven_multilingual_v2"
	elevenLabsOutputFormat = "mp3_44100_128"
)

// styleVoice pairs a voice ID with the settings that sell its delivery.
type styleVoice struct {
	voiceID  string
	name     string
	settings elevenLabsVoiceSettings
}

var styleVoices = map[models.ScriptStyle]styleVoice{
	models.StyleAggressive: {
		voiceID: "onwK6e9ZLuTAKqWW03F9", // Daniel
		name:    "Daniel",
		settings: elevenLabsVoiceSettings{
			Stability:       0.35,
			SimilarityBoost: 0.80,
			Style:           0.70,
			UseSpeakerBoost: true,
		},
	},
	models.StyleSmooth: {
		voiceID: "EXAVITQu4vr4xnSDxMaL", // Bella
		name:    "Bella",
		settings: elevenLabsVoiceSettings{
			Stability:       0.65,
			SimilarityBoost: 0.85,
			Style:           0.30,
			UseSpeakerBoost: true,
		},
	},
	models.StyleProfessional: {
		voiceID: "pNInz6obpgDQGcFmaJgB", // Adam
		name:    "Adam",
		settings: elevenLabsVoiceSettings{
			Stability:       0.60,
			SimilarityBoost: 0.80,
			Style:           0.20,
			UseSpeakerBoost: true,
		},
	},
}

// ElevenLabsService handles text-to-speech via the ElevenLabs API.
type ElevenLabsService struct {
	apiKey  string
	modelID string
	baseURL string
	client  *http.Client
}

// Ensure ElevenLabsService implements TTSService at compile time.
var _ TTSService = (*ElevenLabsService)(nil)

// NewElevenLabsService creates a new ElevenLabs TTS service with defaults.
func NewElevenLabsService(apiKey string) *ElevenLabsService {
	return &ElevenLabsService{
		apiKey:  apiKey,
		modelID: elevenLabsDefaultModel,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// GenerateSpeech converts the script to speech using the voice mapped to the
// style. Implements the TTSService interface.
func (s *ElevenLabsService) GenerateSpeech(ctx context.Context, text string, style models.ScriptStyle) (*TTSResponse, error) {
	voice, ok := styleVoices[style]
	if !ok {
		voice = styleVoices[models.StyleAggressive]
	}

	reqBody := elevenLabsRequest{
		Text:          text,
		ModelID:       s.modelID,
		VoiceSettings: &voice.settings,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ElevenLabs request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		s.baseURL, voice.voiceID, elevenLabsOutputFormat)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create ElevenLabs request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	log.Printf("[ElevenLabs] Generating speech (voice=%s, style=%s, textLen=%d)",
		voice.name, style, len(text))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs returned status %d: %s", resp.StatusCode, string(body))
	}

	// The response body IS the audio file
	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ElevenLabs audio response: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("ElevenLabs returned empty audio")
	}

	durationMs := estimateAudioDuration(text, 1.0)

	log.Printf("[ElevenLabs] Speech generated (%d bytes, estimated %dms)", len(audioData), durationMs)

	return &TTSResponse{
		AudioData:  audioData,
		DurationMs: durationMs,
		Format:     "mp3",
	}, nil
}
