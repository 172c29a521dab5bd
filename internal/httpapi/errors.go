package httpapi

import (
	"strconv"

	"microhub/internal/apperr"
	"microhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Abort ends the request with the JSON body and status for err's Kind.
// Untagged errors become a 500 carrying the error text.
func Abort(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("", err)
	}

	status := apperr.Status(e.Kind)
	body := gin.H{"error": e.Error()}
	switch e.Kind {
	case apperr.KindModerationRejected:
		body["error"] = e.Message
		body["flaggedCategories"] = nonNil(e.Categories)
	case apperr.KindValidation:
		if e.Index >= 0 {
			body["index"] = e.Index
		}
	case apperr.KindInternal, apperr.KindUpstreamUnavailable:
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", "kind", e.Kind.String(), "err", err)
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest is shorthand for a validation failure detected in a handler.
func BadRequest(c *gin.Context, msg string) {
	Abort(c, apperr.Validation(msg))
}

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
