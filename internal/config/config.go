package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server (API mode only)
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database (API mode only)
	DatabaseURL string

	// Redis (API mode only)
	RedisURL string

	// Paths
	AssetsDir string // root for per-listing asset directories
	FeedPath  string // default inventory CSV for batch mode
	MusicDir  string // background music tracks, picked by style

	// Script generation. Provider is resolved in order: whichever of
	// openai/anthropic/gemini has a key, with SCRIPT_PROVIDER forcing one.
	ScriptProvider string
	OpenAIKey      string
	AnthropicKey   string
	GeminiKey      string

	// Voiceover. ElevenLabs first, Cartesia second, espeak-ng last.
	ElevenLabsKey string
	CartesiaKey   string
	CartesiaURL   string
	EspeakPath    string // fallback synth binary, default "espeak-ng"

	// Background removal
	RemovalAIKey string
	RemoveBgKey  string

	// QR codes
	ReserveBaseURL string // fallback reservation link when a listing has no URL
	QRLogoPath     string // optional logo composited into the QR center

	// Cloudflare R2 (optional; uploads are skipped when unset)
	R2AccountID   string
	R2AccessKeyID string
	R2SecretKey   string
	R2Bucket      string
	R2PublicBase  string // public URL prefix for uploaded objects

	// Rendering
	FFmpegPath    string
	VideoTemplate string // "dark" or "simple-dark"

	// Worker / pipeline
	MaxConcurrentJobs   int
	MaxImagesPerListing int
	DownloadWorkers     int
}

// Load reads configuration for batch (CLI) mode. Only local paths are
// required; every vendor integration degrades to a fallback when its key
// is absent.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:             getEnv("API_PORT", "8080"),
		WorkerEnabled:       getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:       getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		AssetsDir:           getEnv("ASSETS_DIR", "assets"),
		FeedPath:            getEnv("FEED_PATH", "feed.csv"),
		MusicDir:            getEnv("MUSIC_DIR", "assets/music"),
		ScriptProvider:      getEnv("SCRIPT_PROVIDER", ""),
		OpenAIKey:           getEnv("OPENAI_API_KEY", ""),
		AnthropicKey:        getEnv("ANTHROPIC_API_KEY", ""),
		GeminiKey:           getEnv("GEMINI_API_KEY", ""),
		ElevenLabsKey:       getEnv("ELEVENLABS_API_KEY", ""),
		CartesiaKey:         getEnv("CARTESIA_API_KEY", ""),
		CartesiaURL:         getEnv("CARTESIA_API_URL", ""),
		EspeakPath:          getEnv("ESPEAK_PATH", "espeak-ng"),
		RemovalAIKey:        getEnv("REMOVAL_AI_API_KEY", ""),
		RemoveBgKey:         getEnv("REMOVE_BG_API_KEY", ""),
		ReserveBaseURL:      getEnv("RESERVE_BASE_URL", "https://www.sandiegoharley.com/inventory"),
		QRLogoPath:          getEnv("QR_LOGO_PATH", ""),
		R2AccountID:         getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:       getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretKey:         getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:            getEnv("R2_BUCKET", "slasher-tv"),
		R2PublicBase:        getEnv("R2_PUBLIC_BASE_URL", ""),
		FFmpegPath:          getEnv("FFMPEG_PATH", "ffmpeg"),
		VideoTemplate:       getEnv("VIDEO_TEMPLATE", "dark"),
		MaxConcurrentJobs:   getEnvInt("MAX_CONCURRENT_JOBS", 2),
		MaxImagesPerListing: getEnvInt("MAX_IMAGES_PER_LISTING", 6),
		DownloadWorkers:     getEnvInt("DOWNLOAD_WORKERS", 4),
	}

	return cfg, nil
}

// LoadServer reads configuration for API mode, which additionally needs the
// job store and queue.
func LoadServer() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	return cfg, nil
}

// R2Enabled reports whether uploads to Cloudflare R2 are configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
