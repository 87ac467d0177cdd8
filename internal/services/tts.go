package services

import (
	"context"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// ---------------------------------------------------------------------------
// TTSService — common interface for text-to-speech providers
// ElevenLabs is preferred; the espeak-ng synth serves as an offline fallback
// so the pipeline can always produce a voiceover.
// ---------------------------------------------------------------------------

// TTSResponse is the common response type from any TTS provider.
type TTSResponse struct {
	AudioData  []byte
	DurationMs int
	Format     string // "mp3", "wav"
}

// TTSService is the interface that any TTS provider must implement.
type TTSService interface {
	// GenerateSpeech converts the ad script to audio. The style picks the
	// voice and delivery settings (aggressive, smooth, professional).
	GenerateSpeech(ctx context.Context, text string, style models.ScriptStyle) (*TTSResponse, error)
}

// estimateAudioDuration approximates spoken duration from word count.
// Narration runs around 150 words per minute before the speed factor.
func estimateAudioDuration(text string, speed float64) int {
	words := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			inWord = false
			continue
		}
		if !inWord {
			words++
			inWord = true
		}
	}
	if speed <= 0 {
		speed = 1
	}
	return int(float64(words) / (150.0 * speed) * 60_000)
}
