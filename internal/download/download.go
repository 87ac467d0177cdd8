// Package download fetches listing photos from the dealer CDN.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

const (
	maxRetries = 3
	baseDelay  = 1 * time.Second

	// Some dealer CDNs reject default Go user agents.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Downloader fetches photos concurrently with a bounded worker count.
type Downloader struct {
	client  *http.Client
	workers int
}

func New(workers int) *Downloader {
	if workers <= 0 {
		workers = 4
	}
	return &Downloader{
		client:  &http.Client{Timeout: 30 * time.Second},
		workers: workers,
	}
}

// Result reports one photo fetch.
type Result struct {
	Index int
	Path  string
	Err   error
}

// Photos downloads up to maxImages listing photos into the listing dir,
// keeping feed order in the photo_NN naming. Already-present files are
// skipped unless force is set. It returns the paths that exist on disk
// afterwards; it only errors when not a single photo could be fetched.
func (d *Downloader) Photos(ctx context.Context, listing *models.MotorcycleListing, dir string, maxImages int, force bool) ([]string, error) {
	urls := listing.PhotoURLs
	if maxImages > 0 && len(urls) > maxImages {
		urls = urls[:maxImages]
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("listing %s has no photo URLs", listing.StockNumber)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	results := make([]Result, len(urls))
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			path := assets.PhotoPath(dir, i)
			if !force {
				if _, err := os.Stat(path); err == nil {
					results[i] = Result{Index: i, Path: path}
					return nil
				}
			}
			if err := d.fetch(ctx, url, path); err != nil {
				log.Printf("[Download] %s photo %d failed: %v", listing.StockNumber, i, err)
				results[i] = Result{Index: i, Err: err}
				return nil // one bad photo should not sink the listing
			}
			results[i] = Result{Index: i, Path: path}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var paths []string
	for _, r := range results {
		if r.Err == nil {
			paths = append(paths, r.Path)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("all %d photo downloads failed for %s", len(urls), listing.StockNumber)
	}

	log.Printf("[Download] %s: %d/%d photos", listing.StockNumber, len(paths), len(urls))
	return paths, nil
}

// fetch downloads one URL to disk with retries and exponential backoff.
func (d *Downloader) fetch(ctx context.Context, url, path string) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseDelay * time.Duration(1<<uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff) / 4))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
			log.Printf("[Download] Retry %d/%d for %s", attempt, maxRetries, url)
		}

		err := d.fetchOnce(ctx, url, path)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", maxRetries, lastErr)
}

func (d *Downloader) fetchOnce(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, url: url}
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.code, e.url)
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		switch se.code {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
