package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// PaymentRequest records one STK-Push attempt. It is created pending and
// moved exactly once to completed or failed by the gateway callback.
type PaymentRequest struct {
	ID                int64         `json:"id"`
	BookingID         int64         `json:"booking_id"`
	CheckoutRequestID string        `json:"checkout_request_id"`
	MerchantRequestID string        `json:"merchant_request_id"`
	Amount            float64       `json:"amount"`
	PhoneNumber       string        `json:"phone_number"`
	Status            PaymentStatus `json:"status"`
	MpesaReceipt      string        `json:"mpesa_receipt,omitempty"`
	ResultDesc        string        `json:"result_desc,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
