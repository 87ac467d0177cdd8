package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// ---------------------------------------------------------------------------
// Background removal
// Vendor APIs cut the bike out of the dealer photo so templates can place it
// on a dark backdrop. Providers are chained: Removal.AI, then Remove.bg, then
// pass-through (the original photo, untouched). Each vendor sits behind a
// circuit breaker so a dead or out-of-credits API stops being called quickly.
// ---------------------------------------------------------------------------

// ErrQuotaExceeded marks payment/rate errors that should skip straight to the
// next provider without retrying.
var ErrQuotaExceeded = errors.New("background removal quota exceeded")

// BackgroundRemover produces a transparent PNG cutout from a photo.
type BackgroundRemover interface {
	// RemoveBackground takes the JPEG/PNG bytes of a photo and returns PNG
	// bytes with the background made transparent.
	RemoveBackground(ctx context.Context, imageData []byte) ([]byte, error)
	Name() string
}

// BreakerRemover wraps a provider with a circuit breaker.
type BreakerRemover struct {
	inner   BackgroundRemover
	breaker *gobreaker.CircuitBreaker
}

var _ BackgroundRemover = (*BreakerRemover)(nil)

func NewBreakerRemover(inner BackgroundRemover) *BreakerRemover {
	return &BreakerRemover{
		inner: inner,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        inner.Name(),
			MaxRequests: 1,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("[BgRemoval] %s breaker %s -> %s", name, from, to)
			},
		}),
	}
}

func (b *BreakerRemover) Name() string { return b.inner.Name() }

func (b *BreakerRemover) RemoveBackground(ctx context.Context, imageData []byte) ([]byte, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.RemoveBackground(ctx, imageData)
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// RemovalChain tries each provider in order. When all fail, the caller keeps
// the original photo (pass-through).
type RemovalChain struct {
	providers []BackgroundRemover
}

func NewRemovalChain(providers ...BackgroundRemover) *RemovalChain {
	return &RemovalChain{providers: providers}
}

// Result reports which provider produced the cutout, or pass-through.
type RemovalResult struct {
	Data        []byte
	Provider    string // "" means pass-through
	PassThrough bool
}

// Remove attempts the chain. It never fails: the last resort is the input
// itself with PassThrough set, so the render pipeline always has an image.
func (c *RemovalChain) Remove(ctx context.Context, imageData []byte) *RemovalResult {
	for _, p := range c.providers {
		out, err := p.RemoveBackground(ctx, imageData)
		if err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				log.Printf("[BgRemoval] %s quota exceeded, trying next provider", p.Name())
			} else {
				log.Printf("[BgRemoval] %s failed: %v", p.Name(), err)
			}
			continue
		}
		processed, err := PostProcessCutout(out)
		if err != nil {
			log.Printf("[BgRemoval] %s result unusable: %v", p.Name(), err)
			continue
		}
		return &RemovalResult{Data: processed, Provider: p.Name()}
	}

	log.Printf("[BgRemoval] All providers failed, passing photo through")
	return &RemovalResult{Data: imageData, PassThrough: true}
}

func quotaStatus(code int) error {
	if code == 402 || code == 429 {
		return fmt.Errorf("%w (status %d)", ErrQuotaExceeded, code)
	}
	return nil
}
