package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

func TestElevenLabsGenerateSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "el-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		// Aggressive style routes to the Daniel voice
		if !strings.Contains(r.URL.Path, "onwK6e9ZLuTAKqWW03F9") {
			t.Errorf("unexpected voice in path: %s", r.URL.Path)
		}
		var req elevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.VoiceSettings == nil || req.VoiceSettings.Stability != 0.35 {
			t.Errorf("aggressive settings not applied: %+v", req.VoiceSettings)
		}
		w.Write([]byte("mp3-audio-bytes"))
	}))
	defer srv.Close()

	s := NewElevenLabsService("el-key")
	s.baseURL = srv.URL

	resp, err := s.GenerateSpeech(context.Background(), "Ride the legend home today.", models.StyleAggressive)
	if err != nil {
		t.Fatalf("GenerateSpeech failed: %v", err)
	}
	if string(resp.AudioData) != "mp3-audio-bytes" {
		t.Error("audio bytes not passed through")
	}
	if resp.Format != "mp3" {
		t.Errorf("format = %q", resp.Format)
	}
}

func TestElevenLabsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewElevenLabsService("el-key")
	s.baseURL = srv.URL

	if _, err := s.GenerateSpeech(context.Background(), "text", models.StyleSmooth); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestEstimateAudioDuration(t *testing.T) {
	// 75 words at 150wpm is 30 seconds
	text := strings.TrimSpace(strings.Repeat("word ", 75))
	got := estimateAudioDuration(text, 1.0)
	if got != 30_000 {
		t.Errorf("expected 30000ms, got %d", got)
	}
}

func TestAnthropicGenerateScript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ant-key" || r.Header.Get("anthropic-version") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Street Glide") {
			t.Error("prompt not carried in user message")
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"Ride the legend."}]}`))
	}))
	defer srv.Close()

	s := NewAnthropicService("ant-key")
	s.baseURL = srv.URL

	script, err := s.GenerateScript(context.Background(), testListing(), models.StyleProfessional)
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if script != "Ride the legend." {
		t.Errorf("got %q", script)
	}
}
