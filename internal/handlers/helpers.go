package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/services"
	"github.com/gravadigital/civicpulse-api/internal/storage/postgres"
	"github.com/gravadigital/civicpulse-api/internal/validation"
)

// parseIDParam reads a UUID path parameter or writes a 400
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service and repository errors onto the HTTP
// error taxonomy. fallback is the 500 message when nothing matches.
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		response.NotFound(c, "Resource not found")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(c, "You do not have permission to perform this action")
	case errors.Is(err, postgres.ErrEventFull):
		response.BadRequest(c, "Event is at capacity")
	case errors.Is(err, postgres.ErrDuplicateEmail):
		response.BadRequest(c, "Email already registered")
	case isValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.Internal(c, fallback)
	}
}

// isValidationError reports whether an error came from input validation
// rather than from storage. Validation errors are safe to echo back.
func isValidationError(err error) bool {
	var ve *validation.Error
	return errors.As(err, &ve)
}
