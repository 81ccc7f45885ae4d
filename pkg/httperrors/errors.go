package httperrors

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/smartenroll/backend/pkg/auth"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/models"
)

var statuses = []struct {
	err    error
	status int
}{
	{models.ErrValidation, http.StatusBadRequest},
	{models.ErrCapacityExceedsRoom, http.StatusBadRequest},
	{httputil.ErrInvalidBody, http.StatusBadRequest},
	{httputil.ErrRequestBodyEmpty, http.StatusBadRequest},
	{httputil.ErrInvalidUUID, http.StatusBadRequest},
	{httputil.ErrInvalidQueryString, http.StatusBadRequest},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},
	{models.ErrResourceNotFound, http.StatusNotFound},
	{models.ErrDuplicateKey, http.StatusConflict},
	{models.ErrReferenced, http.StatusConflict},
	{models.ErrSectionFull, http.StatusConflict},
	{models.ErrStoreUnavailable, http.StatusServiceUnavailable},
	{models.ErrGeneral, http.StatusInternalServerError},
}

// Status returns the HTTP status code for an error.
func Status(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}

	return http.StatusInternalServerError
}

// Handler aborts the request with the status and body matching err.
//
// Errors that do not map to a known status are logged and their message
// is not exposed to the client.
func Handler(c *gin.Context, err error) {
	status := Status(err)
	body := HTTPError{Error: err.Error()}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		body.Fields = validationErr.Fields
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
	}

	if status == http.StatusInternalServerError && !errors.Is(err, models.ErrGeneral) {
		body.Error = models.ErrGeneral.Error()
	}

	c.AbortWithStatusJSON(status, body)
}
