package movie

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFPS is the frame rate used when none is given.
const DefaultFPS = 30

// Encoder assembles the image files in frames, in order, into a video
// at output.
type Encoder interface {
	Encode(ctx context.Context, frames []string, output string, fps float64) error
}

// ForOutput returns the encoder for the extension of output: GIF for
// .gif, and ffmpeg with its defaults for anything else.
func ForOutput(output string) Encoder {
	if strings.EqualFold(filepath.Ext(output), ".gif") {
		return &GIF{}
	}
	return &FFmpeg{}
}

// checkFrames verifies that there is something to encode and that all
// the frames exist.
func checkFrames(frames []string, fps float64) error {
	if len(frames) == 0 {
		return fmt.Errorf("movie: no frames to encode")
	}
	if fps <= 0 {
		return fmt.Errorf("movie: invalid frame rate %v", fps)
	}
	var missing []string
	for _, f := range frames {
		if _, err := os.Stat(f); err != nil {
			missing = append(missing, f)
		}
	}
	switch {
	case len(missing) == 1:
		return fmt.Errorf("movie: missing frame %s", missing[0])
	case len(missing) > 1:
		return fmt.Errorf("movie: %d frames missing, first %s", len(missing), missing[0])
	}
	return nil
}
