package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// messageOf picks the text shown to the client. Internal errors are never
// described.
func messageOf(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "Internal server error"
	case http.StatusUnauthorized:
		if errors.Is(err, common.ErrInvalidCredentials) {
			return "Invalid username or password"
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			return "Not authenticated"
		}
		return "Could not validate credentials"
	}

	var de *common.DetailError
	if errors.As(err, &de) {
		return de.Detail
	}
	return err.Error()
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
		)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, errorBody{Detail: messageOf(err, status)})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Detail: err.Error()})
}
