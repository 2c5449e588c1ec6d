package transcode

import (
	"context"
	"fmt"

	"recording_ingest/pkg/executor"
)

// FFmpeg converts audio files to mp3 by shelling out to the ffmpeg
// binary. A non-zero exit is a hard failure for that file.
type FFmpeg struct {
	executor executor.Executor
	binary   string
}

func New(exec executor.Executor, binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{executor: exec, binary: binary}
}

// Transcode converts srcPath into an mp3 at dstPath, overwriting any
// existing file there.
func (f *FFmpeg) Transcode(ctx context.Context, srcPath, dstPath string) error {
	args := []string{
		"-i", srcPath,
		"-acodec", "mp3",
		"-y",
		dstPath,
	}

	if _, err := f.executor.Execute(ctx, f.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg convert: %w", err)
	}

	return nil
}
