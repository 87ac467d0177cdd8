// Package video renders 30-second promotional spots with ffmpeg.
//
// Each spot is built from still photos: every timeline segment becomes a short
// clip with a Ken Burns motion effect and text overlays, the clips are
// concatenated with the stream-copy concat demuxer, and the voiceover plus
// background music are mixed in last.
package video

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ClipEffect defines the Ken Burns motion applied to a still image.
type ClipEffect string

const (
	EffectZoomIn   ClipEffect = "zoom_in"   // push toward center
	EffectZoomOut  ClipEffect = "zoom_out"  // start tight, pull back
	EffectPanLeft  ClipEffect = "pan_left"  // drift right to left
	EffectPanRight ClipEffect = "pan_right" // drift left to right
	EffectStatic   ClipEffect = "static"    // no motion (QR segments)
)

var motionEffects = []ClipEffect{
	EffectZoomIn,
	EffectZoomOut,
	EffectPanLeft,
	EffectPanRight,
}

// RandomEffect picks a random motion effect for a photo segment.
func RandomEffect() ClipEffect {
	return motionEffects[rand.Intn(len(motionEffects))]
}

// Output constants — 1080p landscape at 30fps, the dealership showroom screens.
const (
	outputWidth  = 1920
	outputHeight = 1080
	videoFPS     = 30

	backdropColor = "0x0A0A0A" // near-black backdrop behind cutouts
)

// FFmpegService shells out to ffmpeg/ffprobe.
type FFmpegService struct {
	binary  string
	tempDir string
}

func NewFFmpegService(binary, tempDir string) (*FFmpegService, error) {
	if binary == "" {
		binary = "ffmpeg"
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &FFmpegService{binary: binary, tempDir: tempDir}, nil
}

func (s *FFmpegService) probeBinary() string {
	if s.binary == "ffmpeg" {
		return "ffprobe"
	}
	// Custom ffmpeg path: assume ffprobe sits next to it
	return filepath.Join(filepath.Dir(s.binary), "ffprobe")
}

// RenderSegment renders one timeline segment to a silent mp4 clip.
func (s *FFmpegService) RenderSegment(ctx context.Context, seg *Segment, outputPath string) error {
	vf := s.buildSegmentFilter(seg)

	var args []string
	if seg.ImagePath != "" {
		args = []string{"-loop", "1", "-t", fmt.Sprintf("%.2f", seg.Duration), "-i", seg.ImagePath}
	} else {
		args = []string{
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=c=%s:s=%dx%d:d=%.2f:r=%d",
				backdropColor, outputWidth, outputHeight, seg.Duration, videoFPS),
		}
	}

	args = append(args,
		"-vf", vf,
		"-t", fmt.Sprintf("%.2f", seg.Duration),
		"-r", fmt.Sprintf("%d", videoFPS),
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-an",
		"-y",
		outputPath,
	)

	log.Printf("[FFmpeg] Rendering segment %s (%.1fs, effect=%s)", seg.Name, seg.Duration, seg.Effect)

	cmd := exec.CommandContext(ctx, s.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg segment %s failed: %w (output: %s)", seg.Name, err, tail(string(out), 500))
	}
	return nil
}

// buildSegmentFilter chains fit-to-frame, motion and text overlays.
func (s *FFmpegService) buildSegmentFilter(seg *Segment) string {
	var filters []string

	if seg.ImagePath != "" {
		// Fit the photo into the frame over the dark backdrop. Transparent
		// cutout pixels collapse to black in yuv420p, which matches the
		// backdrop, so no explicit compositing pass is needed.
		filters = append(filters, fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s",
			outputWidth, outputHeight, outputWidth, outputHeight, backdropColor))

		if zp := buildMotionFilter(seg.Effect, seg.Duration); zp != "" {
			filters = append(filters, zp)
		}
	}

	for _, overlay := range seg.Overlays {
		filters = append(filters, overlay.drawtext(seg.Duration))
	}

	if len(filters) == 0 {
		filters = append(filters, "null")
	}
	return strings.Join(filters, ",")
}

// buildMotionFilter constructs the zoompan expression for an effect.
// Pan effects hold a fixed 1.2x zoom and traverse the crop window; zooms move
// between 1.0 and 1.3 so the bike never leaves frame.
func buildMotionFilter(effect ClipEffect, duration float64) string {
	totalFrames := int(duration*videoFPS) + videoFPS // 1s slack, -t trims
	if totalFrames < videoFPS {
		totalFrames = videoFPS
	}

	var zExpr, xExpr, yExpr string
	switch effect {
	case EffectZoomIn:
		zExpr = fmt.Sprintf("1.0+0.3*on/%d", totalFrames)
		xExpr = "iw/2-(iw/zoom/2)"
		yExpr = "ih/2-(ih/zoom/2)"
	case EffectZoomOut:
		zExpr = fmt.Sprintf("1.3-0.3*on/%d", totalFrames)
		xExpr = "iw/2-(iw/zoom/2)"
		yExpr = "ih/2-(ih/zoom/2)"
	case EffectPanLeft:
		zExpr = "1.2"
		xExpr = fmt.Sprintf("(iw-iw/zoom)*(1-on/%d)", totalFrames)
		yExpr = "ih/2-(ih/zoom/2)"
	case EffectPanRight:
		zExpr = "1.2"
		xExpr = fmt.Sprintf("(iw-iw/zoom)*on/%d", totalFrames)
		yExpr = "ih/2-(ih/zoom/2)"
	case EffectStatic:
		return ""
	default:
		zExpr = fmt.Sprintf("1.0+0.3*on/%d", totalFrames)
		xExpr = "iw/2-(iw/zoom/2)"
		yExpr = "ih/2-(ih/zoom/2)"
	}

	return fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=%d:s=%dx%d:fps=%d",
		zExpr, xExpr, yExpr, totalFrames, outputWidth, outputHeight, videoFPS)
}

// ConcatenateSegments stitches the rendered clips with the concat demuxer,
// stream copy, no re-encode.
func (s *FFmpegService) ConcatenateSegments(ctx context.Context, clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("no segments to concatenate")
	}

	listPath, err := s.writeConcatList(clipPaths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, s.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concatenate failed: %w (output: %s)", err, tail(string(out), 500))
	}
	return nil
}

// writeConcatList writes the demuxer list to a uniquely named temp file.
// Renders run concurrently against one shared tempDir, so the list must
// never collide between jobs.
func (s *FFmpegService) writeConcatList(clipPaths []string) (string, error) {
	f, err := os.CreateTemp(s.tempDir, "concat_*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}
	for _, path := range clipPaths {
		fmt.Fprintf(f, "file '%s'\n", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	return f.Name(), nil
}

// AttachAudio muxes a finished audio mix onto the silent video.
func (s *FFmpegService) AttachAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, s.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg attach audio failed: %w (output: %s)", err, tail(string(out), 500))
	}
	return nil
}

// ProbeDuration returns a media file's duration in seconds via ffprobe.
func (s *FFmpegService) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, s.probeBinary(), args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var durationSec float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%f", &durationSec); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return durationSec, nil
}

// TempPath returns a path inside the service's temp directory.
func (s *FFmpegService) TempPath(filename string) string {
	return filepath.Join(s.tempDir, filename)
}

// Cleanup removes temporary files.
func (s *FFmpegService) Cleanup(paths ...string) {
	for _, path := range paths {
		os.Remove(path)
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
