package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// ---------------------------------------------------------------------------
// Audio mix
// Voiceover stays at full volume. Background music loops under it at reduced
// volume with a short fade-in and a one-second fade-out at the tail. When
// there is no voiceover and no music, a silent track keeps players happy.
// ---------------------------------------------------------------------------

const (
	musicVolume  = 0.15
	musicFadeIn  = 0.5
	musicFadeOut = 1.0
)

// MixAudio builds the final audio track for a spot of the given duration.
// voiceoverPath and musicPath may each be empty.
func (s *FFmpegService) MixAudio(ctx context.Context, voiceoverPath, musicPath string, duration float64, outputPath string) error {
	if musicPath != "" {
		if _, err := os.Stat(musicPath); err != nil {
			log.Printf("[FFmpeg] Background music not found at %s, skipping", musicPath)
			musicPath = ""
		}
	}
	if voiceoverPath != "" {
		if _, err := os.Stat(voiceoverPath); err != nil {
			log.Printf("[FFmpeg] Voiceover not found at %s, skipping", voiceoverPath)
			voiceoverPath = ""
		}
	}

	musicFilter := fmt.Sprintf("volume=%.2f,afade=t=in:st=0:d=%.1f,afade=t=out:st=%.2f:d=%.1f",
		musicVolume, musicFadeIn, duration-musicFadeOut, musicFadeOut)

	var args []string
	switch {
	case voiceoverPath != "" && musicPath != "":
		// amix with duration=first keeps the voiceover timeline authoritative
		filterComplex := fmt.Sprintf(
			"[0:a]volume=1.0,apad[voice];[1:a]%s[music];[voice][music]amix=inputs=2:duration=first:dropout_transition=3[aout]",
			musicFilter)
		args = []string{
			"-i", voiceoverPath,
			"-stream_loop", "-1",
			"-i", musicPath,
			"-filter_complex", filterComplex,
			"-map", "[aout]",
			"-t", fmt.Sprintf("%.2f", duration),
		}
	case voiceoverPath != "":
		args = []string{
			"-i", voiceoverPath,
			"-af", "apad",
			"-t", fmt.Sprintf("%.2f", duration),
		}
	case musicPath != "":
		args = []string{
			"-stream_loop", "-1",
			"-i", musicPath,
			"-af", musicFilter,
			"-t", fmt.Sprintf("%.2f", duration),
		}
	default:
		log.Printf("[FFmpeg] No voiceover or music, writing silent track")
		args = []string{
			"-f", "lavfi",
			"-i", fmt.Sprintf("anullsrc=r=44100:cl=stereo:d=%.2f", duration),
		}
	}

	args = append(args, "-c:a", "aac", "-b:a", "192k", "-y", outputPath)

	cmd := exec.CommandContext(ctx, s.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg audio mix failed: %w (output: %s)", err, tail(string(out), 500))
	}
	return nil
}

// PickMusicTrack selects a background track for a style from the music dir.
// It prefers a file named after the style (aggressive.mp3), then falls back to
// the first track found. Empty string means no music.
func PickMusicTrack(musicDir string, style models.ScriptStyle) string {
	if musicDir == "" {
		return ""
	}

	styled := filepath.Join(musicDir, string(style)+".mp3")
	if _, err := os.Stat(styled); err == nil {
		return styled
	}

	matches, _ := filepath.Glob(filepath.Join(musicDir, "*.mp3"))
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}
