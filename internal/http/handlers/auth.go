package handlers

import (
	"net/http"

	"flavorjunction/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.authSvc(c).Register(c.Request.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registrasi berhasil", "user": user})
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	h.login(c, false)
}

// POST /api/admin/login
func (h *Handler) AdminLogin(c *gin.Context) {
	h.login(c, true)
}

func (h *Handler) login(c *gin.Context, admin bool) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.authSvc(c)
	login := svc.Login
	if admin {
		login = svc.AdminLogin
	}
	sess, err := login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	maxAge := int(svc.Tokens.TTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, sess.Token, maxAge, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "login berhasil",
		"token":   sess.Token,
		"user":    sess.User,
	})
}

// POST /api/auth/logout. Tokens are stateless; this only clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logout berhasil"})
}
