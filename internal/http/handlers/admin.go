package handlers

import (
	"net/http"
	"strings"
	"time"

	"flavorjunction/internal/domain/models"

	"github.com/gin-gonic/gin"
)

const defaultPendingAge = 15 * time.Minute

// GET /api/admin/bookings?kind=table|room&limit=100
func (h *Handler) AdminListBookings(c *gin.Context) {
	kind := models.BookingKind(strings.ToLower(strings.TrimSpace(c.Query("kind"))))
	items, err := h.bookingSvc(c).ListAll(c.Request.Context(), kind, queryInt(c, "limit", 100))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": items, "count": len(items)})
}

// GET /api/admin/payments/pending?older_than=15m lists reconciliation
// candidates. It never changes state.
func (h *Handler) AdminPendingPayments(c *gin.Context) {
	age, ok := queryDuration(c, "older_than", defaultPendingAge)
	if !ok {
		return
	}
	items, err := h.paymentSvc(c).PendingOlderThan(c.Request.Context(), age, queryInt(c, "limit", 100))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"older_than": age.String(), "payments": items, "count": len(items)})
}
