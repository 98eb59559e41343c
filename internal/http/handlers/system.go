package handlers

import (
	"context"
	"net/http"
	"time"

	"flavorjunction/internal/config"
	"flavorjunction/internal/http/middleware"
	"flavorjunction/internal/utils"

	"github.com/gin-gonic/gin"
)

// SetRoutes lets /api/routes list the engine it is mounted on.
func (h *Handler) SetRoutes(fn func() gin.RoutesInfo) {
	h.routes = fn
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "backend golang berjalan"})
}

func (h *Handler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database belum terhubung"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := config.PingDB(ctx, h.DB); err != nil {
		utils.LogEvent(middleware.GetRequestID(c), "system", "db_check", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database tidak merespons"})
		return
	}
	count, err := h.Users.Count(ctx)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "koneksi database OK", "users_in_db": count})
}

func (h *Handler) Routes(c *gin.Context) {
	if h.routes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router belum siap"})
		return
	}
	routes := h.routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
