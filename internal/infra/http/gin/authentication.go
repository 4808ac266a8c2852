package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusconnect/internal/app/services/auth"
	domainuser "campusconnect/internal/domain/user"
)

const principalContextKey = "campusconnect.principal"

type principal struct {
	ID    string
	Role  domainuser.Role
	Token string
}

// TokenResolver maps a bearer token to the user it was issued to.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domainuser.User, error)
}

// AuthMiddleware attaches the caller to the request when a valid bearer
// token is present. Routes that need a caller reject anonymous requests
// themselves through requireUser.
type AuthMiddleware struct {
	Service TokenResolver
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	user, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) && m.Logger != nil {
			m.Logger.Warn("token resolution failed", "error", err)
		}
		c.Set(invalidTokenContextKey, true)
		c.Next()
		return
	}
	c.Set(principalContextKey, principal{ID: string(user.ID), Role: user.Role, Token: token})
	c.Next()
}

const invalidTokenContextKey = "campusconnect.invalid_token"

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireUser aborts with 401 when the request carries no valid token.
func requireUser(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if ok {
		return p, true
	}
	msg := "not authorized, no token"
	if c.GetBool(invalidTokenContextKey) {
		msg = "not authorized, token failed"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
	return principal{}, false
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
