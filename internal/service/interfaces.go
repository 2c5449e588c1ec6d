package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"

	"recording_ingest/internal/domain"
)

// ChangeSource is the remote change feed. StartPageToken returns a
// token for the stream's current position, used only as a seed when no
// cursor is stored yet.
type ChangeSource interface {
	StartPageToken(ctx context.Context) (string, error)
	ListChanges(ctx context.Context, pageToken string) (*domain.ChangePage, error)
}

// Downloader streams one remote item's bytes into dst.
type Downloader interface {
	Download(ctx context.Context, fileID string, dst io.Writer) error
}

// Transcoder converts an audio file into the normalized target format.
type Transcoder interface {
	Transcode(ctx context.Context, srcPath, dstPath string) error
}

// Fetcher produces a ready-to-use local copy of one remote item. The
// caller owns the returned scratch file and must Release it.
type Fetcher interface {
	Fetch(ctx context.Context, fileID, name string) (*domain.ScratchFile, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, filePath, language string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Archiver uploads a local file to blob storage and returns a public
// locator for it.
type Archiver interface {
	Upload(ctx context.Context, localPath, destPath string) (string, error)
}

// RecordStore persists recordings keyed by their remote file id.
// Upsert overwrites in place, which is what makes reprocessing safe.
type RecordStore interface {
	Upsert(ctx context.Context, rec *domain.Recording) error
	GetByFileID(ctx context.Context, fileID string) (*domain.Recording, error)
}

// CursorStore holds the last-acknowledged change-stream position.
// Get returns an empty token when none is stored yet.
type CursorStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
}

// Processor runs the per-item pipeline; used identically by the poll
// loop and the webhook handler.
type Processor interface {
	Process(ctx context.Context, fileID, name string) (*domain.Recording, error)
}

type Publisher interface {
	Publish(ctx context.Context, rec *domain.Recording) error
	Close() error
}
