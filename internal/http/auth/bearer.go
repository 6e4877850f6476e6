package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// BearerAuthenticator resolves the acting user from an Authorization header
// carrying a signed JWT.
type BearerAuthenticator struct {
	Secret string
}

func NewBearerAuthenticator(secret string) *BearerAuthenticator {
	return &BearerAuthenticator{Secret: secret}
}

func (a *BearerAuthenticator) Authenticate(c *gin.Context) (custody.Actor, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return custody.Actor{}, fmt.Errorf("missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return custody.Actor{}, fmt.Errorf("malformed authorization header")
	}
	return ValidateToken(a.Secret, strings.TrimSpace(token))
}
