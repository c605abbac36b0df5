package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/psds-microservice/arm-service-desk/internal/errs"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/service"
	"github.com/rs/zerolog"
)

const (
	identityKey     = "identity"
	requestIDHeader = "X-Request-ID"
)

// RequestLogger tags each request with an id and logs it on completion.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= 500 {
			ev = log.Error()
		}
		ev.Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// RequireAuth resolves the Authorization header (raw token, optionally with a
// "Bearer " prefix) to an identity.
func RequireAuth(auth service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		if token == "" {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		who, err := auth.Verify(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, errs.ErrInvalidToken.Error())
			return
		}
		c.Set(identityKey, who)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identity(c).IsAdmin {
			abort(c, http.StatusForbidden, errs.ErrForbidden.Error())
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) model.Identity {
	v, _ := c.Get(identityKey)
	who, _ := v.(model.Identity)
	return who
}
