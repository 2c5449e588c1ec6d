package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recording_ingest/internal/domain"
)

// Poller runs one poll cycle; an empty token means "use the stored
// cursor".
type Poller interface {
	Poll(ctx context.Context, startPageToken string) (*domain.PollStats, error)
}

// Processor runs the pipeline for a single named item.
type Processor interface {
	Process(ctx context.Context, fileID, name string) (*domain.Recording, error)
}

type API struct {
	poller    Poller
	processor Processor
	logger    *slog.Logger
}

func NewAPI(poller Poller, processor Processor, logger *slog.Logger) *API {
	return &API{
		poller:    poller,
		processor: processor,
		logger:    logger.With("component", "http"),
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type pollRequest struct {
	StartPageToken string `json:"startPageToken"`
}

// handlePoll always answers with a count when the stream itself was
// reachable; individual item failures are logged inside the cycle and
// never surface here.
func (a *API) handlePoll(c *gin.Context) {
	var req pollRequest
	// An empty or absent body is fine; the stored cursor is used then.
	_ = c.ShouldBindJSON(&req)

	stats, err := a.poller.Poll(c.Request.Context(), req.StartPageToken)
	if err != nil {
		a.logger.Error("poll failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"polled": stats.Processed})
}

type webhookRequest struct {
	FileID   string `json:"fileId" binding:"required"`
	FileName string `json:"fileName" binding:"required"`
}

// handleWebhook processes exactly one item. Failure is a 500 so the
// notification sender applies its own retry policy; the idempotent
// upsert makes redundant deliveries safe.
func (a *API) handleWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.logger.Info("webhook received", "file", req.FileName, "file_id", req.FileID)

	if _, err := a.processor.Process(c.Request.Context(), req.FileID, req.FileName); err != nil {
		a.logger.Error("webhook processing failed", "file", req.FileName, "file_id", req.FileID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
