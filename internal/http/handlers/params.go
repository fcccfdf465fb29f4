package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/platform/apierr"
)

// DefaultDate is the newest day GDELT reliably has complete: yesterday, UTC.
func DefaultDate(now time.Time) civil.Date {
	return civil.DateOf(now.UTC()).AddDays(-1)
}

func parseDateParam(c *gin.Context, now time.Time) (civil.Date, error) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return DefaultDate(now), nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil || !d.IsValid() {
		return civil.Date{}, apierr.New(http.StatusBadRequest, apierr.CodeInvalidDate,
			fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw))
	}
	return d, nil
}

func boolParam(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}

func intParam(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return def
	}
	return v
}
