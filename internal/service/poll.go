package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"recording_ingest/internal/domain"
)

const audioMimePrefix = "audio/"

// PollService drains the change feed from the stored cursor, runs the
// pipeline for every relevant item, and writes the cursor back only
// after all pages have been drained. A crash mid-cycle leaves the
// cursor untouched; the idempotent record upsert makes the resulting
// re-scan safe.
type PollService struct {
	source   ChangeSource
	pipeline Processor
	cursor   CursorStore
	folderID string
	logger   *slog.Logger
}

func NewPollService(
	source ChangeSource,
	pipeline Processor,
	cursor CursorStore,
	folderID string,
	logger *slog.Logger,
) *PollService {
	return &PollService{
		source:   source,
		pipeline: pipeline,
		cursor:   cursor,
		folderID: folderID,
		logger:   logger.With("component", "poll"),
	}
}

// Poll runs one cycle. startPageToken overrides the stored cursor when
// non-empty; when both are absent a fresh token is requested from the
// source and used as the seed.
func (s *PollService) Poll(ctx context.Context, startPageToken string) (*domain.PollStats, error) {
	startTime := time.Now()

	token, err := s.resolveToken(ctx, startPageToken)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting poll cycle", "token", token)

	stats := &domain.PollStats{}

	for {
		page, err := s.source.ListChanges(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("%w: list changes: %v", domain.ErrUpstreamUnavailable, err)
		}
		stats.Pages++

		for _, ch := range page.Changes {
			if !s.relevant(ch) {
				stats.Skipped++
				continue
			}

			if _, err := s.pipeline.Process(ctx, ch.FileID, ch.Name); err != nil {
				stats.Failed++
				s.logger.Error("processing failed", "file", ch.Name, "file_id", ch.FileID, "error", err)
				continue
			}
			stats.Processed++
		}

		if page.NewStartPageToken != "" {
			token = page.NewStartPageToken
		} else if page.NextPageToken != "" {
			token = page.NextPageToken
		}

		if page.NextPageToken == "" {
			break
		}
	}

	if err := s.cursor.Set(ctx, token); err != nil {
		return stats, fmt.Errorf("persist cursor: %w", err)
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("poll cycle completed",
		"processed", stats.Processed,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"pages", stats.Pages,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *PollService) resolveToken(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	token, err := s.cursor.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: read cursor: %v", domain.ErrUpstreamUnavailable, err)
	}
	if token != "" {
		return token, nil
	}

	token, err = s.source.StartPageToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: start page token: %v", domain.ErrUpstreamUnavailable, err)
	}
	return token, nil
}

// relevant keeps audio files that live in the watched folder. Everything
// else in the feed (deletions, renames, other folders, non-audio) is
// skipped silently.
func (s *PollService) relevant(ch domain.RemoteChange) bool {
	return strings.HasPrefix(ch.MimeType, audioMimePrefix) &&
		slices.Contains(ch.Parents, s.folderID)
}
