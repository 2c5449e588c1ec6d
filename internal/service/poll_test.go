package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"recording_ingest/internal/domain"
	"recording_ingest/internal/service/mocks"
)

const testFolderID = "folder-123"

type PollServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source   *mocks.MockChangeSource
	pipeline *mocks.MockProcessor
	cursor   *mocks.MockCursorStore

	service *PollService
}

func (s *PollServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.source = mocks.NewMockChangeSource(s.ctrl)
	s.pipeline = mocks.NewMockProcessor(s.ctrl)
	s.cursor = mocks.NewMockCursorStore(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = NewPollService(s.source, s.pipeline, s.cursor, testFolderID, logger)
}

func (s *PollServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPollServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PollServiceTestSuite))
}

func audioChange(id, name string) domain.RemoteChange {
	return domain.RemoteChange{
		FileID:   id,
		Name:     name,
		MimeType: "audio/mpeg",
		Parents:  []string{testFolderID},
	}
}

func (s *PollServiceTestSuite) TestPoll_DrainsAllPagesThenWritesCursor() {
	ctx := context.Background()

	s.cursor.EXPECT().Get(ctx).Return("t0", nil)

	s.source.EXPECT().ListChanges(ctx, "t0").Return(&domain.ChangePage{
		Changes: []domain.RemoteChange{
			audioChange("f1", "0901_2024-03-01 10-00-00.mp3"),
			audioChange("f2", "0902_2024-03-01 11-00-00.mp3"),
		},
		NextPageToken: "t1",
	}, nil)
	s.source.EXPECT().ListChanges(ctx, "t1").Return(&domain.ChangePage{
		Changes: []domain.RemoteChange{
			audioChange("f3", "0903_2024-03-01 12-00-00.mp3"),
		},
		NewStartPageToken: "t2",
	}, nil)

	s.pipeline.EXPECT().Process(ctx, "f1", gomock.Any()).Return(&domain.Recording{FileID: "f1"}, nil)
	s.pipeline.EXPECT().Process(ctx, "f2", gomock.Any()).Return(&domain.Recording{FileID: "f2"}, nil)
	s.pipeline.EXPECT().Process(ctx, "f3", gomock.Any()).Return(&domain.Recording{FileID: "f3"}, nil)

	s.cursor.EXPECT().Set(ctx, "t2").Return(nil)

	stats, err := s.service.Poll(ctx, "")

	s.Require().NoError(err)
	s.Equal(3, stats.Processed)
	s.Equal(0, stats.Failed)
	s.Equal(2, stats.Pages)
}

func (s *PollServiceTestSuite) TestPoll_FiltersIrrelevantChanges() {
	ctx := context.Background()

	s.cursor.EXPECT().Get(ctx).Return("t0", nil)

	s.source.EXPECT().ListChanges(ctx, "t0").Return(&domain.ChangePage{
		Changes: []domain.RemoteChange{
			audioChange("f1", "0901_2024-03-01 10-00-00.mp3"),
			{FileID: "f2", Name: "notes.pdf", MimeType: "application/pdf", Parents: []string{testFolderID}},
			{FileID: "f3", Name: "0903_2024-03-01 12-00-00.mp3", MimeType: "audio/mpeg", Parents: []string{"other-folder"}},
			{FileID: "f4", Name: "0904_2024-03-01 13-00-00.mp3", MimeType: "audio/mpeg"},
		},
		NewStartPageToken: "t1",
	}, nil)

	s.pipeline.EXPECT().Process(ctx, "f1", gomock.Any()).Return(&domain.Recording{FileID: "f1"}, nil)

	s.cursor.EXPECT().Set(ctx, "t1").Return(nil)

	stats, err := s.service.Poll(ctx, "")

	s.Require().NoError(err)
	s.Equal(1, stats.Processed)
	s.Equal(3, stats.Skipped)
}

func (s *PollServiceTestSuite) TestPoll_ItemFailureDoesNotAbortBatch() {
	ctx := context.Background()

	s.cursor.EXPECT().Get(ctx).Return("t0", nil)

	s.source.EXPECT().ListChanges(ctx, "t0").Return(&domain.ChangePage{
		Changes: []domain.RemoteChange{
			audioChange("f1", "0901_2024-03-01 10-00-00.mp3"),
			audioChange("f2", "0902_2024-03-01 11-00-00.mp3"),
			audioChange("f3", "0903_2024-03-01 12-00-00.mp3"),
		},
		NewStartPageToken: "t1",
	}, nil)

	s.pipeline.EXPECT().Process(ctx, "f1", gomock.Any()).Return(&domain.Recording{FileID: "f1"}, nil)
	s.pipeline.EXPECT().Process(ctx, "f2", gomock.Any()).Return(nil, errors.New("download failed"))
	s.pipeline.EXPECT().Process(ctx, "f3", gomock.Any()).Return(&domain.Recording{FileID: "f3"}, nil)

	s.cursor.EXPECT().Set(ctx, "t1").Return(nil)

	stats, err := s.service.Poll(ctx, "")

	s.Require().NoError(err)
	s.Equal(2, stats.Processed)
	s.Equal(1, stats.Failed)
}

func (s *PollServiceTestSuite) TestPoll_ExplicitCursorSkipsStore() {
	ctx := context.Background()

	s.source.EXPECT().ListChanges(ctx, "explicit").Return(&domain.ChangePage{
		NewStartPageToken: "next",
	}, nil)
	s.cursor.EXPECT().Set(ctx, "next").Return(nil)

	stats, err := s.service.Poll(ctx, "explicit")

	s.Require().NoError(err)
	s.Equal(0, stats.Processed)
	s.Equal(1, stats.Pages)
}

func (s *PollServiceTestSuite) TestPoll_SeedsFromSourceWhenNoCursor() {
	ctx := context.Background()

	s.cursor.EXPECT().Get(ctx).Return("", nil)
	s.source.EXPECT().StartPageToken(ctx).Return("seed", nil)
	s.source.EXPECT().ListChanges(ctx, "seed").Return(&domain.ChangePage{
		NewStartPageToken: "seed2",
	}, nil)
	s.cursor.EXPECT().Set(ctx, "seed2").Return(nil)

	_, err := s.service.Poll(ctx, "")

	s.Require().NoError(err)
}

func (s *PollServiceTestSuite) TestPoll_ListFailureLeavesCursorUntouched() {
	ctx := context.Background()

	s.cursor.EXPECT().Get(ctx).Return("t0", nil)
	s.source.EXPECT().ListChanges(ctx, "t0").Return(nil, errors.New("stream down"))

	_, err := s.service.Poll(ctx, "")

	s.Require().ErrorIs(err, domain.ErrUpstreamUnavailable)
}

func (s *PollServiceTestSuite) TestPoll_TokenUnchangedWhenPageHasNoTokens() {
	ctx := context.Background()

	s.cursor.EXPECT().Get(ctx).Return("t0", nil)
	s.source.EXPECT().ListChanges(ctx, "t0").Return(&domain.ChangePage{}, nil)
	s.cursor.EXPECT().Set(ctx, "t0").Return(nil)

	_, err := s.service.Poll(ctx, "")

	s.Require().NoError(err)
}

func (s *PollServiceTestSuite) TestPoll_CursorReadFailureAbortsCycle() {
	ctx := context.Background()

	s.cursor.EXPECT().Get(ctx).Return("", errors.New("db down"))

	_, err := s.service.Poll(ctx, "")

	s.Require().ErrorIs(err, domain.ErrUpstreamUnavailable)
}
