package video

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

func TestPickMusicTrack(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"aggressive.mp3", "chill.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("mp3"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Style-named track wins
	if got := PickMusicTrack(dir, models.StyleAggressive); filepath.Base(got) != "aggressive.mp3" {
		t.Errorf("got %q", got)
	}

	// Otherwise first track alphabetically
	if got := PickMusicTrack(dir, models.StyleSmooth); filepath.Base(got) != "aggressive.mp3" {
		t.Errorf("got %q", got)
	}

	if got := PickMusicTrack(t.TempDir(), models.StyleSmooth); got != "" {
		t.Errorf("empty dir should yield no track, got %q", got)
	}

	if got := PickMusicTrack("", models.StyleSmooth); got != "" {
		t.Errorf("unset dir should yield no track, got %q", got)
	}
}
