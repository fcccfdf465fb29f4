package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/http/response"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
)

type StatusInfo struct {
	Table string
	Limit int
}

type StatusHandler struct {
	svc  *events.Service
	info StatusInfo
}

func NewStatusHandler(svc *events.Service, info StatusInfo) *StatusHandler {
	return &StatusHandler{svc: svc, info: info}
}

type statusResponse struct {
	Credentials      events.CredentialStatus `json:"credentials"`
	SetupSteps       []string                `json:"setup_steps,omitempty"`
	Table            string                  `json:"table"`
	Limit            int                     `json:"limit"`
	CacheTTLSeconds  int64                   `json:"cache_ttl_seconds"`
	SnapshotsEnabled bool                    `json:"snapshots_enabled"`
}

// GET /api/status
func (h *StatusHandler) Status(c *gin.Context) {
	creds := h.svc.Credentials()
	out := statusResponse{
		Credentials:      creds,
		Table:            h.info.Table,
		Limit:            h.info.Limit,
		CacheTTLSeconds:  int64(h.svc.CacheTTL().Seconds()),
		SnapshotsEnabled: h.svc.SnapshotsEnabled(),
	}
	if !creds.OK {
		out.SetupSteps = events.CredentialSetupSteps
	}
	response.RespondOK(c, out)
}
