package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// ---------------------------------------------------------------------------
// espeak-ng Text-to-Speech Service
// Offline fallback synth. Quality is nowhere near ElevenLabs but it keeps the
// pipeline producing voiceovers with no API key and no network.
// ---------------------------------------------------------------------------

// EspeakService shells out to the espeak-ng binary.
type EspeakService struct {
	binary string
}

var _ TTSService = (*EspeakService)(nil)

// NewEspeakService creates the fallback synth. binary defaults to "espeak-ng"
// resolved via PATH.
func NewEspeakService(binary string) *EspeakService {
	if binary == "" {
		binary = "espeak-ng"
	}
	return &EspeakService{binary: binary}
}

// Available reports whether the espeak-ng binary can be found.
func (s *EspeakService) Available() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

// GenerateSpeech synthesizes the script to WAV. The style only adjusts pitch
// and rate since espeak has no expressive voices.
func (s *EspeakService) GenerateSpeech(ctx context.Context, text string, style models.ScriptStyle) (*TTSResponse, error) {
	tmpDir, err := os.MkdirTemp("", "espeak-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "speech.wav")

	// Rough style mapping: pitch 0-99, rate in words per minute
	pitch, rate := "50", "165"
	switch style {
	case models.StyleAggressive:
		pitch, rate = "35", "180"
	case models.StyleSmooth:
		pitch, rate = "55", "150"
	}

	args := []string{
		"-v", "en-us",
		"-p", pitch,
		"-s", rate,
		"-w", outPath,
		text,
	}

	log.Printf("[Espeak] Synthesizing speech (style=%s, textLen=%d)", style, len(text))

	cmd := exec.CommandContext(ctx, s.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("espeak-ng failed: %w (output: %s)", err, string(out))
	}

	audioData, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read espeak output: %w", err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("espeak-ng produced empty audio")
	}

	return &TTSResponse{
		AudioData:  audioData,
		DurationMs: estimateAudioDuration(text, 1.0),
		Format:     "wav",
	}, nil
}
