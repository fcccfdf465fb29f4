package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/http/response"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/observability"
	"github.com/yungbote/gdelt-dashboard/internal/platform/apierr"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

type SnapshotHandler struct {
	log     *logger.Logger
	svc     *events.Service
	metrics *observability.Metrics
	now     func() time.Time
}

func NewSnapshotHandler(log *logger.Logger, svc *events.Service, metrics *observability.Metrics) *SnapshotHandler {
	return &SnapshotHandler{
		log:     log.With("handler", "SnapshotHandler"),
		svc:     svc,
		metrics: metrics,
		now:     time.Now,
	}
}

// POST /api/snapshots
func (h *SnapshotHandler) Create(c *gin.Context) {
	if !h.svc.SnapshotsEnabled() {
		response.RespondError(c, http.StatusNotImplemented, apierr.CodeSnapshotUnavailable,
			errors.New("snapshot storage is not configured (set SNAPSHOT_GCS_BUCKET)"))
		return
	}
	date, err := parseDateParam(c, h.now())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	uri, rows, err := h.svc.Snapshot(c.Request.Context(), date)
	if err != nil {
		h.metrics.ObserveSnapshot("error")
		if events.Classify(err) == events.KindCredentials {
			response.RespondError(c, http.StatusServiceUnavailable, apierr.CodeCredentialsMissing, err, events.CredentialSetupSteps...)
			return
		}
		h.log.Error("snapshot failed", "date", date.String(), "error", err)
		response.RespondError(c, http.StatusBadGateway, apierr.CodeSnapshotFailed, err)
		return
	}
	h.metrics.ObserveSnapshot("ok")
	c.JSON(http.StatusCreated, gin.H{
		"date": date.String(),
		"uri":  uri,
		"rows": rows,
	})
}
