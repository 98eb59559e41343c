package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"flavorjunction/internal/http/middleware"
	"flavorjunction/internal/repositories"
	"flavorjunction/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handler holds everything route handlers need. Services are copied per
// request so RequestID can be set without sharing state.
type Handler struct {
	DB       *sql.DB
	Users    repositories.UserRepository
	Auth     services.AuthService
	Bookings services.BookingService
	Payments services.PaymentService
	Receipts services.ReceiptService

	// CallbackToken, when set, must match ?token= on the payment callback.
	CallbackToken string
	CookieSecure  bool

	routes func() gin.RoutesInfo
}

func (h *Handler) authSvc(c *gin.Context) services.AuthService {
	s := h.Auth
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handler) bookingSvc(c *gin.Context) services.BookingService {
	s := h.Bookings
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handler) paymentSvc(c *gin.Context) services.PaymentService {
	s := h.Payments
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handler) receiptSvc(c *gin.Context) services.ReceiptService {
	s := h.Receipts
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	var details any
	if err != nil {
		details = bindingDetails(err)
	}
	respondError(c, status, "", message, details)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "body kosong", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			RespondError(c, http.StatusBadRequest, "body kosong", nil)
			return false
		}
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return false
	}
	return true
}

// bindingDetails turns validator errors into field -> rule pairs.
func bindingDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, name+" tidak valid", nil)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return def
	}
	return v
}

func queryDuration(c *gin.Context, name string, def time.Duration) (time.Duration, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, name+" tidak valid, contoh: 15m", nil)
		return 0, false
	}
	return d, true
}
