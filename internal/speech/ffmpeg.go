package speech

import (
	"context"
	"fmt"
	"os/exec"
)

// FFmpegConverter shells out to the ffmpeg binary to transcode uploads
// (ogg/opus voice notes, m4a, webm) into 16 kHz mono WAV.
type FFmpegConverter struct {
	// Binary overrides the ffmpeg executable name. Empty means "ffmpeg" on PATH.
	Binary string
}

func (c *FFmpegConverter) ToWAV(ctx context.Context, src, dst string) error {
	bin := c.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-i", src,
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w: %s", err, out)
	}
	return nil
}
