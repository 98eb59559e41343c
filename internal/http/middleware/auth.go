package middleware

import (
	"errors"
	"net/http"
	"strings"

	"flavorjunction/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	requestContextKey = "request_context"
	// TokenCookie is set on login for browser clients.
	TokenCookie = "token"
)

// TokenParser verifies a bearer token. services.TokenService implements it.
type TokenParser interface {
	Parse(raw string) (domain.RequestContext, error)
}

// RequireAuth rejects the request before any handler runs unless it carries a
// valid token, from the Authorization header or the token cookie.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortAuth(c, domain.AuthError{Msg: "akses ditolak, token tidak ada"})
			return
		}
		rc, err := tokens.Parse(raw)
		if err != nil {
			abortAuth(c, err)
			return
		}
		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := RequestContext(c)
		if !ok {
			abortAuth(c, domain.AuthError{Msg: "unauthorized: identitas tidak ditemukan"})
			return
		}
		if !rc.IsAdmin {
			abortAuth(c, domain.AuthError{Msg: "forbidden: khusus admin", Forbidden: true})
			return
		}
		c.Next()
	}
}

// RequestContext returns the identity RequireAuth stored.
func RequestContext(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(requestContextKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

// UserID is RequestContext's user id, 0 when unauthenticated.
func UserID(c *gin.Context) int64 {
	rc, _ := RequestContext(c)
	return int64(rc.UserID)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	if tok, err := c.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(tok)
	}
	return ""
}

// AuthStatus is 403 for forbidden or tampered tokens and 401 otherwise.
func AuthStatus(err error) int {
	var ae domain.AuthError
	if errors.As(err, &ae) && ae.Forbidden {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

func abortAuth(c *gin.Context, err error) {
	status := AuthStatus(err)
	code := "unauthorized"
	if status == http.StatusForbidden {
		code = "forbidden"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"code":       code,
		"message":    err.Error(),
		"request_id": GetRequestID(c),
	})
}
