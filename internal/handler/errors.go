package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/arm-service-desk/internal/errs"
	"github.com/rs/zerolog"
)

// abort writes the {"detail": ...} error body the desk client reads.
func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// fail maps a domain error to its HTTP status. Unknown errors are logged and
// reported as 500 without leaking internals.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, errs.ErrWorkstationNotFound),
		errors.Is(err, errs.ErrTicketNotFound),
		errors.Is(err, errs.ErrUserNotFound):
		abort(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrDuplicateInventory),
		errors.Is(err, errs.ErrActiveTickets),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrValidation):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrInvalidToken):
		abort(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		abort(c, http.StatusForbidden, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("handler: unhandled error")
		abort(c, http.StatusInternalServerError, "internal error")
	}
}
