package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/http/response"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/platform/apierr"
)

type QueryRunHandler struct {
	svc *events.Service
}

func NewQueryRunHandler(svc *events.Service) *QueryRunHandler {
	return &QueryRunHandler{svc: svc}
}

// GET /api/query-runs
func (h *QueryRunHandler) List(c *gin.Context) {
	runs, err := h.svc.RecentRuns(c.Request.Context(), intParam(c, "limit", 20))
	if err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, apierr.CodeInternal, err))
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
