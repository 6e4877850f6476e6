package common

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

const actorKey = "actor"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Authenticator interface {
	Authenticate(*gin.Context) (custody.Actor, error)
}

// AuthMiddleware resolves the actor and stores it on the request context.
// Role checks happen in the services; a request only needs a valid identity
// to get past here.
func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticator == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "auth misconfigured"})
			return
		}
		actor, err := authenticator.Authenticate(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication failed"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// MaybeActor returns the actor if one is set, without writing an error.
func MaybeActor(c *gin.Context) (custody.Actor, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		return custody.Actor{}, false
	}
	actor, ok := value.(custody.Actor)
	return actor, ok
}

func ActorFromContext(c *gin.Context) (custody.Actor, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "actor missing")
		return custody.Actor{}, false
	}
	actor, ok := value.(custody.Actor)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "actor invalid")
		return custody.Actor{}, false
	}
	return actor, true
}

func ParseUUIDParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" is required")
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be a UUID")
		return "", false
	}
	return value, true
}

// ValidateUUIDField checks an optional UUID taken from a request body. A nil
// or empty value passes; a malformed one writes a 400 and returns false.
func ValidateUUIDField(c *gin.Context, name string, value *string) bool {
	if value == nil || strings.TrimSpace(*value) == "" {
		return true
	}
	if _, err := uuid.Parse(strings.TrimSpace(*value)); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be a UUID")
		return false
	}
	return true
}

// ParseDateQuery reads an optional RFC 3339 timestamp or bare date from a
// query parameter.
func ParseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, true
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return &parsed, true
	}
	WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be RFC 3339 or YYYY-MM-DD")
	return nil, false
}

func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, custody.ErrForbidden):
		WriteErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, custody.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, custody.ErrInvalidState):
		WriteErrorCode(c, http.StatusConflict, "INVALID_STATE", "entity is not in the required state")
	case errors.Is(err, custody.ErrConflict):
		WriteErrorCode(c, http.StatusConflict, "CONFLICT", "conflict")
	case errors.Is(err, custody.ErrInvalidInput):
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid argument")
	case errors.Is(err, custody.ErrDecryption):
		WriteErrorCode(c, http.StatusInternalServerError, "DECRYPTION_FAILED", "stored value could not be decrypted")
	case errors.Is(err, custody.ErrInconsistent):
		WriteErrorCode(c, http.StatusInternalServerError, "INCONSISTENT", "internal invariant violation")
	default:
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}
