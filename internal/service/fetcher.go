package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"recording_ingest/internal/domain"
	"recording_ingest/internal/recording"
)

// FileFetcher downloads one remote item into a per-run scratch
// directory, transcoding amr files to mp3 so the transcription service
// can consume them. The format gate runs before any network call.
type FileFetcher struct {
	downloader Downloader
	transcoder Transcoder
	scratchDir string
	logger     *slog.Logger
}

func NewFileFetcher(downloader Downloader, transcoder Transcoder, scratchDir string, logger *slog.Logger) *FileFetcher {
	return &FileFetcher{
		downloader: downloader,
		transcoder: transcoder,
		scratchDir: scratchDir,
		logger:     logger.With("component", "fetcher"),
	}
}

func (f *FileFetcher) Fetch(ctx context.Context, fileID, name string) (*domain.ScratchFile, error) {
	ext, needsTranscode, err := recording.Classify(name)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(f.scratchDir, "recording-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	original := filepath.Join(dir, uuid.NewString()+"."+ext)
	if err := f.download(ctx, fileID, original); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}

	if !needsTranscode {
		return &domain.ScratchFile{Dir: dir, Path: original, Ext: ext}, nil
	}

	converted := filepath.Join(dir, uuid.NewString()+".mp3")
	if err := f.transcoder.Transcode(ctx, original, converted); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrTranscodeFailed, name, err)
	}

	f.logger.Debug("transcoded to mp3", "file", name, "file_id", fileID)

	return &domain.ScratchFile{Dir: dir, Path: converted, Ext: "mp3"}, nil
}

func (f *FileFetcher) download(ctx context.Context, fileID, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}

	if err := f.downloader.Download(ctx, fileID, out); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
