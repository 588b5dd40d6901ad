package endpoints

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"analytics/internal/api/handler/response"
	"analytics/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// writeError answers with the status of err's kind. Server-side failures are
// logged in full and reported with a generic message.
func writeError(c *gin.Context, logger zerolog.Logger, err error, msg string) {
	status := domain.HTTPStatus(err)
	if status >= 500 {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg(msg)
	} else {
		logger.Debug().Err(err).Str("path", c.FullPath()).Int("status", status).Msg(msg)
	}

	var data interface{}
	var locked *domain.LockedError
	if errors.As(err, &locked) {
		seconds := int(math.Ceil(locked.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		data = gin.H{"retry_after": seconds}
	}
	c.JSON(status, response.APIError{Message: domain.PublicMessage(err), Data: data})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
}
