package httpapi

import (
	"errors"
	"net/http"

	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/identity"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/recordings"
	"callcenter-platform/internal/validation"
	"callcenter-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// envelope is the uniform response shape: {success, data?, message?}.
type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: true, Message: msg})
}

func respondFail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: msg})
}

// respondError maps a domain error onto the HTTP taxonomy. Unknown errors
// become a generic 500; the detail goes to the log, never to the client.
func respondError(c *gin.Context, err error) {
	if vErr, ok := validation.AsError(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, envelope{
			Success: false,
			Message: "validation failed",
			Fields:  vErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		respondFail(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, rbac.ErrAccessDenied):
		respondFail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, customers.ErrNotFound),
		errors.Is(err, calls.ErrNotFound),
		errors.Is(err, calls.ErrFeedbackNotFound):
		respondFail(c, http.StatusNotFound, "not found")
	case errors.Is(err, identity.ErrDuplicate):
		respondFail(c, http.StatusConflict, "username or email already taken")
	case errors.Is(err, customers.ErrDuplicatePhone):
		respondFail(c, http.StatusConflict, "phone number already registered")
	case errors.Is(err, calls.ErrDuplicateFeedback):
		respondFail(c, http.StatusConflict, "feedback already submitted for this call")
	case errors.Is(err, recordings.ErrStorage):
		respondFail(c, http.StatusBadGateway, "recording upload failed")
	default:
		logger.FromGin(c).Error("request failed", "error", err.Error())
		respondFail(c, http.StatusInternalServerError, "internal error")
	}
}
