// Package pipeline runs the full listing-to-video flow: photos, cutouts, QR
// code and script/voiceover in parallel, then the ffmpeg composition, then the
// optional R2 upload.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
	"github.com/Thinkelution/slasher-tv-ai/internal/download"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
	"github.com/Thinkelution/slasher-tv-ai/internal/services"
	"github.com/Thinkelution/slasher-tv-ai/internal/storage"
	"github.com/Thinkelution/slasher-tv-ai/internal/video"
)

// Options tune per-run behavior.
type Options struct {
	MaxImages     int  // photos to download per listing, 0 = all
	ProcessImages bool // run background removal
	ForceDownload bool // refetch photos even when already on disk
	Upload        bool // push the finished video to R2
}

// Pipeline wires the services together. Nil optional services degrade: no
// removal chain means pass-through photos, no uploader means local-only.
type Pipeline struct {
	Store      *assets.Store
	Downloader *download.Downloader
	Removal    *services.RemovalChain
	Scripts    *services.ScriptChain
	TTS        []services.TTSService
	QR         *services.QRService
	Composer   *video.Composer
	Uploader   *storage.R2Store
}

// Result summarizes one listing's run.
type Result struct {
	Listing    *models.MotorcycleListing
	Metadata   *models.VideoMetadata
	ListingDir string
	Elapsed    time.Duration
}

// GenerateAssets runs the pre-render stages and returns the listing dir.
// The visual lane (photos, cutouts, QR) and the audio lane (script,
// voiceover) proceed in parallel and converge before the render.
func (p *Pipeline) GenerateAssets(ctx context.Context, listing *models.MotorcycleListing, style models.ScriptStyle, opts Options) (string, error) {
	dir, err := p.Store.ListingDir(listing.DealerID, listing.StockNumber)
	if err != nil {
		return "", err
	}
	if err := assets.WriteListing(dir, listing); err != nil {
		return dir, err
	}

	g, ctx := errgroup.WithContext(ctx)

	// Visual lane
	g.Go(func() error {
		photos, err := p.Downloader.Photos(ctx, listing, dir, opts.MaxImages, opts.ForceDownload)
		if err != nil {
			return err
		}
		if opts.ProcessImages && p.Removal != nil {
			p.processPhotos(ctx, listing, dir, photos)
		}
		if p.QR != nil {
			if err := p.QR.Generate(listing, assets.QRCodePath(dir)); err != nil {
				log.Printf("[Pipeline] QR generation failed for %s: %v", listing.StockNumber, err)
			}
		}
		return nil
	})

	// Audio lane
	g.Go(func() error {
		script, err := p.Scripts.GenerateScript(ctx, listing, style)
		if err != nil {
			return err
		}
		if err := os.WriteFile(assets.ScriptPath(dir), []byte(script), 0o644); err != nil {
			return fmt.Errorf("failed to write script: %w", err)
		}
		p.generateVoiceover(ctx, listing, dir, script, style)
		return nil
	})

	if err := g.Wait(); err != nil {
		return dir, err
	}
	return dir, nil
}

// processPhotos replaces each photo with a background-removed cutout in the
// processed/ subdir. Failures pass the original photo through.
func (p *Pipeline) processPhotos(ctx context.Context, listing *models.MotorcycleListing, dir string, photos []string) {
	for i, photoPath := range photos {
		data, err := os.ReadFile(photoPath)
		if err != nil {
			log.Printf("[Pipeline] Cannot read %s: %v", photoPath, err)
			continue
		}

		// Pass-through results still land in processed/ so the template
		// always finds a full photo set.
		res := p.Removal.Remove(ctx, data)
		outPath := assets.ProcessedPhotoPath(dir, i)
		if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
			log.Printf("[Pipeline] Cannot write cutout for %s: %v", listing.StockNumber, err)
		}
	}
}

// generateVoiceover tries each TTS provider in order. Voiceover is optional;
// the spot falls back to music-only audio.
func (p *Pipeline) generateVoiceover(ctx context.Context, listing *models.MotorcycleListing, dir, script string, style models.ScriptStyle) {
	for _, tts := range p.TTS {
		resp, err := tts.GenerateSpeech(ctx, script, style)
		if err != nil {
			log.Printf("[Pipeline] TTS failed for %s: %v", listing.StockNumber, err)
			continue
		}
		outPath := assets.VoiceoverPath(dir)
		if resp.Format != "mp3" {
			outPath = filepath.Join(dir, "voiceover."+resp.Format)
		}
		if err := os.WriteFile(outPath, resp.AudioData, 0o644); err != nil {
			log.Printf("[Pipeline] Cannot write voiceover for %s: %v", listing.StockNumber, err)
		}
		return
	}
	log.Printf("[Pipeline] No voiceover for %s, spot will be music-only", listing.StockNumber)
}

// RenderVideo composes the final spot from a listing dir's assets.
func (p *Pipeline) RenderVideo(ctx context.Context, listing *models.MotorcycleListing, style models.ScriptStyle, opts Options) (*Result, error) {
	start := time.Now()

	dir, err := p.Store.ListingDir(listing.DealerID, listing.StockNumber)
	if err != nil {
		return nil, err
	}

	photos, err := assets.ProcessedPhotos(dir)
	if err != nil || len(photos) == 0 {
		photos, err = assets.Photos(dir)
		if err != nil {
			return nil, err
		}
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("no photos on disk for %s, run asset generation first", listing.StockNumber)
	}

	script := ""
	if data, err := os.ReadFile(assets.ScriptPath(dir)); err == nil {
		script = string(data)
	}

	voiceover := findVoiceover(dir)
	qrPath := assets.QRCodePath(dir)
	if _, err := os.Stat(qrPath); err != nil {
		qrPath = ""
	}

	meta, err := p.Composer.Compose(ctx, &video.ComposeInput{
		Listing:       listing,
		Photos:        photos,
		QRCodePath:    qrPath,
		Script:        script,
		VoiceoverPath: voiceover,
		Style:         style,
		OutputPath:    assets.VideoPath(dir),
	})
	if err != nil {
		return nil, err
	}

	if opts.Upload && p.Uploader != nil {
		if urls, err := p.Uploader.UploadListingAssets(ctx, dir, listing.StockNumber); err != nil {
			log.Printf("[Pipeline] Upload failed for %s: %v", listing.StockNumber, err)
		} else {
			meta.RemoteVideoURL = urls[storage.ListingKey(listing.StockNumber, "video.mp4")]
		}
	}

	if err := assets.WriteMetadata(dir, meta); err != nil {
		return nil, err
	}

	return &Result{
		Listing:    listing,
		Metadata:   meta,
		ListingDir: dir,
		Elapsed:    time.Since(start),
	}, nil
}

// Run executes both stages for one listing.
func (p *Pipeline) Run(ctx context.Context, listing *models.MotorcycleListing, style models.ScriptStyle, opts Options) (*Result, error) {
	if _, err := p.GenerateAssets(ctx, listing, style, opts); err != nil {
		return nil, fmt.Errorf("asset generation failed for %s: %w", listing.StockNumber, err)
	}
	return p.RenderVideo(ctx, listing, style, opts)
}

func findVoiceover(dir string) string {
	for _, name := range []string{"voiceover.mp3", "voiceover.wav"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
