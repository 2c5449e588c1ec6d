package domain

import (
	"os"
	"time"
)

// StatusDone marks a recording that went through the whole pipeline.
// Failed runs leave no row behind, so this is currently the only value
// ever written.
const StatusDone = "done"

// Recording is the persisted result of processing one remote audio file,
// keyed by the Drive file id so reprocessing overwrites in place.
type Recording struct {
	ID          int64     `db:"id" json:"-"`
	FileID      string    `db:"file_id" json:"fileId"`
	FileName    string    `db:"file_name" json:"fileName"`
	PhoneNumber string    `db:"phone_number" json:"phoneNumber"`
	RecordedAt  time.Time `db:"recorded_at" json:"recordedAt"`
	Transcript  string    `db:"transcript" json:"transcript"`
	Summary     string    `db:"summary" json:"summary"`
	AudioURL    string    `db:"audio_url" json:"audioUrl"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// RemoteChange is one entry from the Drive change feed. Transient;
// consumed during a poll cycle and never stored.
type RemoteChange struct {
	FileID   string
	Name     string
	MimeType string
	Parents  []string
}

// ChangePage is one page of the change feed. Paging ends when
// NextPageToken is empty; NewStartPageToken, when present, is the
// cursor for the next cycle.
type ChangePage struct {
	Changes           []RemoteChange
	NextPageToken     string
	NewStartPageToken string
}

// PollStats holds the outcome of one poll cycle.
type PollStats struct {
	Processed int
	Failed    int
	Skipped   int
	Pages     int
	Duration  time.Duration
}

// ScratchFile is the local working copy of one item's bytes, owned by a
// single pipeline run. Dir holds the original and, for transcoded items,
// the converted file; Release removes both.
type ScratchFile struct {
	Dir  string
	Path string
	Ext  string
}

func (s *ScratchFile) Release() {
	if s == nil || s.Dir == "" {
		return
	}
	os.RemoveAll(s.Dir)
}
