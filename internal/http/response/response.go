package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/platform/apierr"
)

type APIError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error, details ...string) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
			Details: details,
		},
	})
}

// RespondAPIError renders err through apierr; anything else is a 500.
func RespondAPIError(c *gin.Context, err error, details ...string) {
	ae := apierr.From(err)
	RespondError(c, ae.Status, ae.Code, ae, details...)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
