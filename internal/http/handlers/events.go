package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/http/response"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/platform/apierr"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

// headerEventsStatus carries the ok/empty/error outcome of a markdown response.
const headerEventsStatus = "X-Events-Status"

type EventsHandler struct {
	log *logger.Logger
	svc *events.Service
	now func() time.Time
}

func NewEventsHandler(log *logger.Logger, svc *events.Service) *EventsHandler {
	return &EventsHandler{
		log: log.With("handler", "EventsHandler"),
		svc: svc,
		now: time.Now,
	}
}

func (h *EventsHandler) request(c *gin.Context) (events.DashboardRequest, error) {
	date, err := parseDateParam(c, h.now())
	if err != nil {
		return events.DashboardRequest{}, err
	}
	var f events.Filters
	if err := c.ShouldBindQuery(&f); err != nil {
		return events.DashboardRequest{}, apierr.New(http.StatusBadRequest, "invalid_filters", err)
	}
	return events.DashboardRequest{
		Date:    date,
		Filters: f,
		Refresh: boolParam(c, "refresh"),
	}, nil
}

// GET /api/events
func (h *EventsHandler) Dashboard(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), req)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// GET /api/events/summaries
func (h *EventsHandler) Summaries(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	report, err := h.svc.Summaries(c.Request.Context(), req)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}
	body := strings.Join(report.Blocks, "\n")
	if report.Status != events.StatusOK {
		body = "_" + report.Message + "_\n"
	}
	c.Header(headerEventsStatus, report.Status)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(body))
}

func (h *EventsHandler) respondQueryError(c *gin.Context, err error) {
	switch events.Classify(err) {
	case events.KindCredentials:
		msg := h.svc.Credentials().Message
		if msg == "" {
			msg = err.Error()
		}
		response.RespondError(c, http.StatusServiceUnavailable, apierr.CodeCredentialsMissing,
			errors.New(msg), events.CredentialSetupSteps...)
	case events.KindBudget:
		response.RespondError(c, http.StatusTooManyRequests, "query_budget_exceeded", err)
	case events.KindWarehouse:
		response.RespondError(c, http.StatusBadGateway, "warehouse_error", err)
	default:
		response.RespondAPIError(c, err)
	}
}
