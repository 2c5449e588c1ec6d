package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"recording_ingest/internal/domain"
	"recording_ingest/internal/recording"
)

// PipelineService drives one item through
// fetch → parse → archive → transcribe → summarize → persist.
// Stages run strictly in order; any failure aborts the run and leaves
// no record behind, so the item is safe to reprocess later.
type PipelineService struct {
	fetcher     Fetcher
	archiver    Archiver
	transcriber Transcriber
	summarizer  Summarizer
	records     RecordStore
	publisher   Publisher // optional
	language    string
	logger      *slog.Logger
}

func NewPipelineService(
	fetcher Fetcher,
	archiver Archiver,
	transcriber Transcriber,
	summarizer Summarizer,
	records RecordStore,
	publisher Publisher,
	language string,
	logger *slog.Logger,
) *PipelineService {
	return &PipelineService{
		fetcher:     fetcher,
		archiver:    archiver,
		transcriber: transcriber,
		summarizer:  summarizer,
		records:     records,
		publisher:   publisher,
		language:    language,
		logger:      logger.With("component", "pipeline"),
	}
}

func (p *PipelineService) Process(ctx context.Context, fileID, name string) (*domain.Recording, error) {
	p.logger.Info("processing recording", "file", name, "file_id", fileID)

	scratch, err := p.fetcher.Fetch(ctx, fileID, name)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer scratch.Release()

	phone, recordedAt, err := recording.ParseName(name)
	if err != nil {
		return nil, fmt.Errorf("parse name: %w", err)
	}

	destPath := fmt.Sprintf("recordings/%s/%s.%s",
		recordedAt.Format("2006-01-02"), uuid.NewString(), scratch.Ext)
	audioURL, err := p.archiver.Upload(ctx, scratch.Path, destPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchivalFailed, err)
	}

	transcript, err := p.transcriber.Transcribe(ctx, scratch.Path, p.language)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err)
	}

	summary, err := p.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
	}

	rec := &domain.Recording{
		FileID:      fileID,
		FileName:    name,
		PhoneNumber: phone,
		RecordedAt:  recordedAt,
		Transcript:  transcript,
		Summary:     summary,
		AudioURL:    audioURL,
		Status:      domain.StatusDone,
	}

	if err := p.records.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, rec); err != nil {
			// The record is already persisted; a lost event is not worth
			// failing the item over.
			p.logger.Warn("publish failed", "file", name, "file_id", fileID, "error", err)
		}
	}

	p.logger.Info("recording processed", "file", name, "file_id", fileID, "audio_url", audioURL)

	return rec, nil
}
