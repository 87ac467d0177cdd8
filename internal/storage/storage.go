// Package storage uploads finished assets to Cloudflare R2 over the S3 API.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	maxRetries = 3
	baseDelay  = 1 * time.Second
)

// R2Config carries the Cloudflare credentials and bucket.
type R2Config struct {
	AccountID     string
	AccessKeyID   string
	SecretKey     string
	Bucket        string
	PublicBaseURL string // optional public bucket domain
}

// R2Store uploads objects to a Cloudflare R2 bucket.
type R2Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewR2Store builds the S3 client pointed at the account's R2 endpoint.
func NewR2Store(ctx context.Context, cfg R2Config) (*R2Store, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("incomplete R2 credentials")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// ListingKey builds the canonical object key for a listing asset.
func ListingKey(stockNumber, filename string) string {
	return path.Join("listings", stockNumber, filename)
}

// UploadFile uploads a local file and returns the object's public URL.
func (s *R2Store) UploadFile(ctx context.Context, localPath, key string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return s.Upload(ctx, key, data, contentType)
}

// Upload stores an object with retries and exponential backoff.
func (s *R2Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseDelay * time.Duration(1<<uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff) / 4))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			log.Printf("[Storage] Retry %d/%d for %s", attempt, maxRetries, key)
		}

		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err == nil {
			url := s.PublicURL(key)
			log.Printf("[Storage] Uploaded %s (%d bytes)", key, len(data))
			return url, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return "", fmt.Errorf("upload of %s failed: %w", key, err)
		}
	}

	return "", fmt.Errorf("upload of %s failed after %d retries: %w", key, maxRetries, lastErr)
}

// listingAssetFiles maps a listing dir's uploadable files to their object
// keys. Raw photos and scratch files stay local; the cutouts, voiceover, QR
// code, script, video and metadata go up.
func listingAssetFiles(dir, stockNumber string) (map[string]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("listing dir unavailable: %w", err)
	}

	files := make(map[string]string)
	add := func(localPath, relKey string) {
		if info, err := os.Stat(localPath); err == nil && !info.IsDir() {
			files[localPath] = ListingKey(stockNumber, relKey)
		}
	}

	for _, name := range []string{
		"video.mp4", "voiceover.mp3", "voiceover.wav",
		"qr_code.png", "script.txt", "metadata.json", "video_metadata.json",
	} {
		add(filepath.Join(dir, name), name)
	}

	cutouts, _ := filepath.Glob(filepath.Join(dir, "processed", "*.png"))
	for _, cutout := range cutouts {
		add(cutout, path.Join("processed", filepath.Base(cutout)))
	}

	return files, nil
}

// UploadListingAssets pushes a listing dir's assets under listings/<stock>/
// and returns the public URL per key. Individual upload failures are logged
// and skipped; it only errors when the dir is unreadable or nothing at all
// could be uploaded.
func (s *R2Store) UploadListingAssets(ctx context.Context, dir, stockNumber string) (map[string]string, error) {
	files, err := listingAssetFiles(dir, stockNumber)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no uploadable assets in %s", dir)
	}

	urls := make(map[string]string, len(files))
	var lastErr error
	for localPath, key := range files {
		url, err := s.UploadFile(ctx, localPath, key)
		if err != nil {
			log.Printf("[Storage] Skipping %s: %v", key, err)
			lastErr = err
			continue
		}
		urls[key] = url
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("all uploads failed for %s: %w", stockNumber, lastErr)
	}
	return urls, nil
}

// PublicURL maps an object key to its public address. Without a configured
// public domain the key itself is returned.
func (s *R2Store) PublicURL(key string) string {
	if s.publicBaseURL == "" {
		return key
	}
	return s.publicBaseURL + "/" + key
}

// PresignGet produces a time-limited download URL for private buckets.
func (s *R2Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

func isRetryableError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	// The SDK wraps 5xx responses in generic API errors; retry anything that
	// self-describes as a server fault.
	msg := err.Error()
	for _, marker := range []string{"InternalError", "SlowDown", "StatusCode: 5", "connection reset"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
