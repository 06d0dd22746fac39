package rest

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	identityKey     = "identity"
	requestIDKey    = "request_id"
	requestIDHeader = common.RequestIDHeaderName
)

// requestID propagates X-Request-ID, minting one when the client sent none.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireAuth resolves the bearer token to an auth.Identity stored in the
// gin context. Requests without a usable token stop here with 401.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			s.abortWithError(c, common.ErrorUnauthorized)
			return
		}

		id, err := s.svc.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// requireAdmin must run after requireAuth.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireAdmin(identity(c)); err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(auth.Identity)
	return id
}
