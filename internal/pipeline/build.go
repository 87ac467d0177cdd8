package pipeline

import (
	"context"
	"log"
	"path/filepath"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
	"github.com/Thinkelution/slasher-tv-ai/internal/config"
	"github.com/Thinkelution/slasher-tv-ai/internal/download"
	"github.com/Thinkelution/slasher-tv-ai/internal/services"
	"github.com/Thinkelution/slasher-tv-ai/internal/storage"
	"github.com/Thinkelution/slasher-tv-ai/internal/video"
)

// FromConfig assembles the pipeline from environment configuration. Vendors
// without keys are simply left out of their chains.
func FromConfig(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	ffmpeg, err := video.NewFFmpegService(cfg.FFmpegPath, filepath.Join(cfg.AssetsDir, ".tmp"))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Store:      assets.NewStore(cfg.AssetsDir),
		Downloader: download.New(cfg.DownloadWorkers),
		Scripts:    services.NewScriptChain(scriptProviders(cfg)...),
		TTS:        ttsProviders(cfg),
		QR:         services.NewQRService(cfg.ReserveBaseURL, cfg.QRLogoPath),
		Composer:   video.NewComposer(ffmpeg, video.ForName(cfg.VideoTemplate), cfg.MusicDir),
	}

	if removers := removalProviders(cfg); len(removers) > 0 {
		p.Removal = services.NewRemovalChain(removers...)
	}

	if cfg.R2Enabled() {
		store, err := storage.NewR2Store(ctx, storage.R2Config{
			AccountID:     cfg.R2AccountID,
			AccessKeyID:   cfg.R2AccessKeyID,
			SecretKey:     cfg.R2SecretKey,
			Bucket:        cfg.R2Bucket,
			PublicBaseURL: cfg.R2PublicBase,
		})
		if err != nil {
			return nil, err
		}
		p.Uploader = store
		log.Println("R2 uploads enabled")
	}

	return p, nil
}

// scriptProviders resolves the LLM order: a forced SCRIPT_PROVIDER first,
// otherwise every configured provider in openai, anthropic, gemini order.
// The chain's canned template covers the zero-provider case.
func scriptProviders(cfg *config.Config) []services.ScriptService {
	var providers []services.ScriptService
	add := func(name string, build func() services.ScriptService, key string) {
		if key == "" {
			return
		}
		if cfg.ScriptProvider != "" && cfg.ScriptProvider != name {
			return
		}
		providers = append(providers, build())
	}

	add("openai", func() services.ScriptService { return services.NewOpenAIService(cfg.OpenAIKey) }, cfg.OpenAIKey)
	add("anthropic", func() services.ScriptService { return services.NewAnthropicService(cfg.AnthropicKey) }, cfg.AnthropicKey)
	add("gemini", func() services.ScriptService { return services.NewGeminiService(cfg.GeminiKey) }, cfg.GeminiKey)

	if len(providers) == 0 {
		log.Println("No script provider configured, using the canned template")
	}
	return providers
}

func ttsProviders(cfg *config.Config) []services.TTSService {
	var providers []services.TTSService
	if cfg.ElevenLabsKey != "" {
		providers = append(providers, services.NewElevenLabsService(cfg.ElevenLabsKey))
	}
	if cfg.CartesiaKey != "" {
		providers = append(providers, services.NewCartesiaService(cfg.CartesiaKey, cfg.CartesiaURL))
	}
	if espeak := services.NewEspeakService(cfg.EspeakPath); espeak.Available() {
		providers = append(providers, espeak)
	}
	if len(providers) == 0 {
		log.Println("No TTS provider available, spots will be music-only")
	}
	return providers
}

func removalProviders(cfg *config.Config) []services.BackgroundRemover {
	var removers []services.BackgroundRemover
	if cfg.RemovalAIKey != "" {
		removers = append(removers, services.NewBreakerRemover(services.NewRemovalAIService(cfg.RemovalAIKey)))
	}
	if cfg.RemoveBgKey != "" {
		removers = append(removers, services.NewBreakerRemover(services.NewRemoveBgService(cfg.RemoveBgKey)))
	}
	return removers
}
