package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"flavorjunction/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens map[string]domain.RequestContext

func (s stubTokens) Parse(raw string) (domain.RequestContext, error) {
	switch raw {
	case "expired":
		return domain.RequestContext{}, domain.AuthError{Msg: "token kedaluwarsa", Expired: true}
	}
	rc, ok := s[raw]
	if !ok {
		return domain.RequestContext{}, domain.AuthError{Msg: "token tidak valid", Forbidden: true}
	}
	return rc, nil
}

func newEngine(h ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	h = append(h, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	r.GET("/x", h...)
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthStatuses(t *testing.T) {
	tokens := stubTokens{"good": {UserID: 3}}
	r := newEngine(RequireAuth(tokens))

	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer expired").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Authorization", "Bearer forged").Code)

	w := do(r, "Authorization", "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":3}`, w.Body.String())
}

func TestRequireAuthReadsCookie(t *testing.T) {
	r := newEngine(RequireAuth(stubTokens{"good": {UserID: 3}}))

	w := do(r, "Cookie", TokenCookie+"=good")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := stubTokens{"user": {UserID: 3}, "admin": {UserID: 1, IsAdmin: true}}
	r := newEngine(RequireAuth(tokens), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, do(r, "Authorization", "Bearer user").Code)
	assert.Equal(t, http.StatusOK, do(r, "Authorization", "Bearer admin").Code)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := newEngine()

	w := do(r, "X-Request-ID", "abc-1")
	assert.Equal(t, "abc-1", w.Header().Get("X-Request-ID"))

	w = do(r, "", "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestRateLimitPerIP(t *testing.T) {
	r := newEngine(RateLimit(NewIPRateLimiter(0.001, 2)))

	assert.Equal(t, http.StatusOK, do(r, "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "", "").Code)
	w := do(r, "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
