package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"op_trader/storefront/internal/jobs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultJobLimit = 50
	maxJobLimit     = 500
	feedWriteWait   = 10 * time.Second
)

type JobService interface {
	Enqueue(ctx context.Context, pipeline, sellerID string, payload json.RawMessage) (*jobs.Job, error)
	Get(ctx context.Context, sellerID string, id uuid.UUID) (*jobs.Job, error)
	List(ctx context.Context, sellerID string, limit int) ([]jobs.Job, error)
}

type JobHandler struct {
	jobs     JobService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewJobHandler(svc JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobs:   svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

type createJobRequest struct {
	Pipeline string          `json:"pipeline" binding:"required"`
	Payload  json.RawMessage `json:"payload" binding:"required"`
}

func (h *JobHandler) Create(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	job, err := h.jobs.Enqueue(c.Request.Context(), req.Pipeline, c.Param("seller"), req.Payload)
	switch {
	case errors.Is(err, jobs.ErrUnknownPipeline), errors.Is(err, jobs.ErrInvalidPayload):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("enqueue job failed", "pipeline", req.Pipeline, "err", err)
		writeError(c, http.StatusServiceUnavailable, "failed to queue job")
		return
	}
	h.logger.Info("job queued", "job_id", job.ID, "pipeline", job.Pipeline, "seller_id", job.SellerID)
	c.JSON(http.StatusAccepted, job)
}

type jobFeed struct {
	Groups         []jobs.Group `json:"groups"`
	PollIntervalMS int64        `json:"poll_interval_ms"`
}

func (h *JobHandler) List(c *gin.Context) {
	limit := defaultJobLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxJobLimit {
			writeError(c, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxJobLimit))
			return
		}
		limit = n
	}

	feed, err := h.feed(c.Request.Context(), c.Param("seller"), limit)
	if err != nil {
		h.logger.Error("list jobs failed", "seller_id", c.Param("seller"), "err", err)
		writeError(c, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *JobHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), c.Param("seller"), id)
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		writeError(c, http.StatusNotFound, "job not found")
		return
	case err != nil:
		h.logger.Error("get job failed", "job_id", id, "err", err)
		writeError(c, http.StatusInternalServerError, "failed to load job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Feed streams the seller's grouped job status over a websocket, refreshing
// at the pace PollInterval gives for the current groups.
func (h *JobHandler) Feed(c *gin.Context) {
	sellerID := c.Param("seller")
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client never sends; reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		feed, err := h.feed(ctx, sellerID, defaultJobLimit)
		if err != nil {
			if ctx.Err() == nil {
				h.logger.Error("job feed query failed", "err", err)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "job store unavailable"),
					time.Now().Add(feedWriteWait))
			}
			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := conn.WriteJSON(feed); err != nil {
			return
		}

		timer := time.NewTimer(time.Duration(feed.PollIntervalMS) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (h *JobHandler) feed(ctx context.Context, sellerID string, limit int) (jobFeed, error) {
	list, err := h.jobs.List(ctx, sellerID, limit)
	if err != nil {
		return jobFeed{}, err
	}
	groups := jobs.GroupJobs(list)
	return jobFeed{
		Groups:         groups,
		PollIntervalMS: jobs.PollInterval(groups).Milliseconds(),
	}, nil
}
