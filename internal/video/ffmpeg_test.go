package video

import (
	"fmt"
	"os"
	"sync"
	"testing"
)

func TestWriteConcatListIsolation(t *testing.T) {
	svc, err := NewFFmpegService("ffmpeg", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Two renders writing their lists at the same time must not share a file.
	var wg sync.WaitGroup
	paths := make([]string, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.writeConcatList([]string{
				fmt.Sprintf("job%d_seg_00.mp4", i),
				fmt.Sprintf("job%d_seg_01.mp4", i),
			})
			if err != nil {
				t.Errorf("writeConcatList failed: %v", err)
				return
			}
			paths[i] = p
		}()
	}
	wg.Wait()

	if paths[0] == paths[1] {
		t.Fatalf("concat lists collided: %s", paths[0])
	}

	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("list %d unreadable: %v", i, err)
		}
		want := fmt.Sprintf("file 'job%d_seg_00.mp4'\nfile 'job%d_seg_01.mp4'\n", i, i)
		if string(data) != want {
			t.Errorf("list %d carries another job's clips:\n%s", i, data)
		}
	}
}
