package video

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// Composer renders a listing's timeline into the final spot.
type Composer struct {
	ffmpeg   *FFmpegService
	template Template
	musicDir string
}

func NewComposer(ffmpeg *FFmpegService, template Template, musicDir string) *Composer {
	return &Composer{ffmpeg: ffmpeg, template: template, musicDir: musicDir}
}

// ComposeInput carries the assets produced earlier in the pipeline.
type ComposeInput struct {
	Listing       *models.MotorcycleListing
	Photos        []string
	QRCodePath    string
	Script        string
	VoiceoverPath string
	Style         models.ScriptStyle
	OutputPath    string
}

// Compose renders segments, concatenates them and attaches the audio mix.
// Returns metadata for the finished spot.
func (c *Composer) Compose(ctx context.Context, in *ComposeInput) (*models.VideoMetadata, error) {
	if len(in.Photos) == 0 {
		return nil, fmt.Errorf("no photos to compose for %s", in.Listing.StockNumber)
	}

	timeline := c.template.Timeline(&TimelineInput{
		Listing:    in.Listing,
		Photos:     in.Photos,
		QRCodePath: in.QRCodePath,
	})

	log.Printf("[Compose] %s: %d segments, template=%s",
		in.Listing.StockNumber, len(timeline), c.template.Name())

	var clipPaths []string
	for i := range timeline {
		clipPath := c.ffmpeg.TempPath(fmt.Sprintf("%s_seg_%02d.mp4", in.Listing.StockNumber, i))
		if err := c.ffmpeg.RenderSegment(ctx, &timeline[i], clipPath); err != nil {
			c.ffmpeg.Cleanup(clipPaths...)
			return nil, fmt.Errorf("failed to render segment %s: %w", timeline[i].Name, err)
		}
		clipPaths = append(clipPaths, clipPath)
	}
	defer c.ffmpeg.Cleanup(clipPaths...)

	silentPath := c.ffmpeg.TempPath(in.Listing.StockNumber + "_silent.mp4")
	defer c.ffmpeg.Cleanup(silentPath)
	if err := c.ffmpeg.ConcatenateSegments(ctx, clipPaths, silentPath); err != nil {
		return nil, err
	}

	mixPath := c.ffmpeg.TempPath(in.Listing.StockNumber + "_mix.m4a")
	defer c.ffmpeg.Cleanup(mixPath)
	music := PickMusicTrack(c.musicDir, in.Style)
	if err := c.ffmpeg.MixAudio(ctx, in.VoiceoverPath, music, SpotDuration, mixPath); err != nil {
		return nil, err
	}

	if err := c.ffmpeg.AttachAudio(ctx, silentPath, mixPath, in.OutputPath); err != nil {
		return nil, err
	}

	duration, err := c.ffmpeg.ProbeDuration(ctx, in.OutputPath)
	if err != nil {
		log.Printf("[Compose] Duration probe failed for %s: %v", in.OutputPath, err)
		duration = SpotDuration
	}

	log.Printf("[Compose] %s done (%.1fs) -> %s", in.Listing.StockNumber, duration, in.OutputPath)

	return &models.VideoMetadata{
		DealerID:       in.Listing.DealerID,
		StockNumber:    in.Listing.StockNumber,
		VideoPath:      in.OutputPath,
		TemplateUsed:   c.template.Name(),
		Script:         in.Script,
		VoiceoverPath:  in.VoiceoverPath,
		QRCodePath:     in.QRCodePath,
		GenerationDate: time.Now().UTC(),
		DurationSec:    duration,
		Resolution:     fmt.Sprintf("%dx%d", outputWidth, outputHeight),
	}, nil
}
