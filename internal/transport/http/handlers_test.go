package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"recording_ingest/internal/domain"
)

type stubPoller struct {
	stats    *domain.PollStats
	err      error
	gotToken string
	calls    int
}

func (s *stubPoller) Poll(_ context.Context, startPageToken string) (*domain.PollStats, error) {
	s.calls++
	s.gotToken = startPageToken
	return s.stats, s.err
}

type stubProcessor struct {
	rec     *domain.Recording
	err     error
	gotID   string
	gotName string
	calls   int
}

func (s *stubProcessor) Process(_ context.Context, fileID, name string) (*domain.Recording, error) {
	s.calls++
	s.gotID = fileID
	s.gotName = name
	return s.rec, s.err
}

func setupTestServer(t *testing.T, poller Poller, processor Processor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRouter(NewAPI(poller, processor, logger))
}

func TestHealthHandler(t *testing.T) {
	engine := setupTestServer(t, &stubPoller{}, &stubProcessor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPollReturnsCount(t *testing.T) {
	poller := &stubPoller{stats: &domain.PollStats{Processed: 4, Failed: 1}}
	engine := setupTestServer(t, poller, &stubProcessor{})

	req := httptest.NewRequest(http.MethodPost, "/poll", nil)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if polled, ok := body["polled"].(float64); !ok || polled != 4 {
		t.Fatalf("expected polled=4, body=%v", body)
	}
}

func TestPollPassesExplicitToken(t *testing.T) {
	poller := &stubPoller{stats: &domain.PollStats{}}
	engine := setupTestServer(t, poller, &stubProcessor{})

	req := httptest.NewRequest(http.MethodPost, "/poll",
		strings.NewReader(`{"startPageToken":"tok-42"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if poller.gotToken != "tok-42" {
		t.Fatalf("expected token tok-42, got %q", poller.gotToken)
	}
}

func TestPollUpstreamUnavailable(t *testing.T) {
	poller := &stubPoller{err: domain.ErrUpstreamUnavailable}
	engine := setupTestServer(t, poller, &stubProcessor{})

	req := httptest.NewRequest(http.MethodPost, "/poll", nil)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestWebhookSuccess(t *testing.T) {
	processor := &stubProcessor{rec: &domain.Recording{FileID: "f1"}}
	engine := setupTestServer(t, &stubPoller{}, processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"fileId":"f1","fileName":"0901_2024-03-01 10-00-00.mp3"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if processor.gotID != "f1" {
		t.Fatalf("expected file id f1, got %q", processor.gotID)
	}
	if processor.gotName != "0901_2024-03-01 10-00-00.mp3" {
		t.Fatalf("unexpected file name %q", processor.gotName)
	}
}

func TestWebhookMissingFields(t *testing.T) {
	processor := &stubProcessor{}
	engine := setupTestServer(t, &stubPoller{}, processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"fileId":"f1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if processor.calls != 0 {
		t.Fatalf("processor should not run on a malformed body")
	}
}

func TestWebhookProcessingFailure(t *testing.T) {
	processor := &stubProcessor{err: errors.New("transcription failed")}
	engine := setupTestServer(t, &stubPoller{}, processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"fileId":"f1","fileName":"0901_2024-03-01 10-00-00.mp3"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
