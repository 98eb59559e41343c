package handlers

import (
	"net/http"

	"flavorjunction/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type profileRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

// GET /api/user/profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.authSvc(c).Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /api/user/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.authSvc(c).UpdateProfile(c.Request.Context(), middleware.UserID(c), req.Email, req.Phone)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profil diperbarui", "user": user})
}
