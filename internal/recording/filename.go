// Package recording holds the pure helpers for interpreting recording
// file names produced by the call-recorder app: a leading phone number,
// a filesystem-safe timestamp somewhere in the name, and an audio
// extension.
package recording

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"recording_ingest/internal/domain"
)

// Timestamps use hyphens in the time portion because colons are not
// filesystem-safe on the recorder side.
const timestampLayout = "2006-01-02 15-04-05"

var (
	rePhone     = regexp.MustCompile(`^[\d-]+`)
	reTimestamp = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}-\d{2}-\d{2}`)
)

// SupportedExtensions lists the audio formats accepted for ingestion.
// amr is accepted but must be transcoded before transcription.
var SupportedExtensions = map[string]struct{}{
	"flac": {}, "m4a": {}, "mp3": {}, "mp4": {}, "mpeg": {},
	"mpga": {}, "oga": {}, "ogg": {}, "wav": {}, "webm": {}, "amr": {},
}

// transcodeExt is the one supported format the transcription service
// cannot consume directly.
const transcodeExt = "amr"

// ParseName extracts the phone number and recording time from a file
// name like "09012345678_2024-03-01 10-30-00.mp3". The phone number is
// the leading run of digits and hyphens; the timestamp is the first
// match anywhere in the name.
func ParseName(name string) (string, time.Time, error) {
	phone := rePhone.FindString(name)
	if phone == "" {
		return "", time.Time{}, fmt.Errorf("%w: no phone number in %q", domain.ErrMalformedName, name)
	}

	ts := reTimestamp.FindString(name)
	if ts == "" {
		return "", time.Time{}, fmt.Errorf("%w: no timestamp in %q", domain.ErrMalformedName, name)
	}

	recordedAt, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: bad timestamp %q: %v", domain.ErrMalformedName, ts, err)
	}

	return phone, recordedAt, nil
}

// Classify returns the lowercase extension of name and whether the file
// needs transcoding before transcription.
func Classify(name string) (string, bool, error) {
	ext := strings.ToLower(strings.TrimLeft(filepath.Ext(name), " ."))
	if _, ok := SupportedExtensions[ext]; !ok {
		return "", false, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	return ext, ext == transcodeExt, nil
}
