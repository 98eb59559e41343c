package handlers

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"flavorjunction/internal/http/middleware"
	"flavorjunction/internal/mpesa"
	"flavorjunction/internal/utils"

	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 64 << 10

type initiatePaymentRequest struct {
	OrderID     int64  `json:"orderId" binding:"required,min=1"`
	PhoneNumber string `json:"phoneNumber" binding:"required,kephone"`
}

// POST /api/payments/initiate
func (h *Handler) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.paymentSvc(c).Initiate(c.Request.Context(), middleware.UserID(c), req.OrderID, req.PhoneNumber)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "STK push terkirim, cek ponsel Anda",
		"checkoutRequestId": res.Payment.CheckoutRequestID,
		"merchantRequestId": res.Payment.MerchantRequestID,
		"customerMessage":   res.CustomerMessage,
		"payment":           res.Payment,
	})
}

// POST /api/payments/callback, called by M-Pesa. Everything short of a
// storage failure is acknowledged with ResultCode 0 so the gateway stops
// retrying; a storage failure answers ResultCode 1 and leaves the request
// pending for redelivery.
func (h *Handler) PaymentCallback(c *gin.Context) {
	reqID := middleware.GetRequestID(c)
	if h.CallbackToken != "" && subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(h.CallbackToken)) != 1 {
		utils.LogEvent(reqID, "payment", "callback", "rejected: bad callback token from "+c.ClientIP())
		c.JSON(http.StatusForbidden, mpesa.Rejected())
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody)
	var env mpesa.CallbackEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		utils.LogEvent(reqID, "payment", "callback", "malformed payload: "+err.Error())
		c.JSON(http.StatusOK, mpesa.Accepted())
		return
	}

	outcome, err := h.paymentSvc(c).HandleCallback(c.Request.Context(), env)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, mpesa.Rejected())
		return
	}
	c.Header("X-Callback-Outcome", string(outcome))
	c.JSON(http.StatusOK, mpesa.Accepted())
}

// GET /api/payments/status/:checkoutRequestId
func (h *Handler) PaymentStatus(c *gin.Context) {
	p, err := h.paymentSvc(c).Status(c.Request.Context(), middleware.UserID(c), c.Param("checkoutRequestId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/payments/receipt/:checkoutRequestId
func (h *Handler) PaymentReceipt(c *gin.Context) {
	pdf, filename, err := h.receiptSvc(c).Receipt(c.Request.Context(), c.Param("checkoutRequestId"), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
