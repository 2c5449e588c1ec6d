package domain

import "errors"

// Per-item errors abort that item's run only; the poll batch continues.
// ErrUpstreamUnavailable aborts the whole cycle before any cursor write,
// since no safe partial cursor exists.
var (
	ErrUnsupportedFormat   = errors.New("unsupported audio format")
	ErrMalformedName       = errors.New("malformed file name")
	ErrTranscodeFailed     = errors.New("transcode failed")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrSummarizationFailed = errors.New("summarization failed")
	ErrArchivalFailed      = errors.New("archival failed")
	ErrPersistenceFailed   = errors.New("persistence failed")
	ErrUpstreamUnavailable = errors.New("change stream unavailable")
)
