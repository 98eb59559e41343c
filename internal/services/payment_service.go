package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intdb "flavorjunction/internal/db"
	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
	"flavorjunction/internal/mpesa"
	"flavorjunction/internal/repositories"
	"flavorjunction/internal/utils"
)

// Gateway starts an STK push. *mpesa.Client implements it.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, phoneNumber string, amount float64, orderID int64) (mpesa.STKPushResponse, error)
}

// CallbackOutcome says what a callback did to the stored state.
type CallbackOutcome string

const (
	CallbackCompleted CallbackOutcome = "completed"
	CallbackFailed    CallbackOutcome = "failed"
	CallbackReplay    CallbackOutcome = "replay"
	CallbackUnknown   CallbackOutcome = "unknown"
	CallbackInvalid   CallbackOutcome = "invalid"
)

var errNotPending = errors.New("payment request tidak dalam status pending")

// PaymentService drives the STK push lifecycle: pending on initiation, then
// exactly one move to completed or failed when the callback arrives.
type PaymentService struct {
	DB          *sql.DB
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	Gateway     Gateway
	Now         func() time.Time
	RequestID   string
}

// InitiateResult is returned to the paying user.
type InitiateResult struct {
	Payment         models.PaymentRequest `json:"payment"`
	CustomerMessage string                `json:"customer_message,omitempty"`
}

func (s PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Initiate charges the booking's total to phoneNumber. The pending row is only
// written after the gateway accepted the push, so a failed initiation leaves
// nothing behind.
func (s PaymentService) Initiate(ctx context.Context, userID, orderID int64, phoneNumber string) (InitiateResult, error) {
	if orderID <= 0 {
		return InitiateResult{}, domain.ValidationError{Field: "orderId", Msg: "id tidak valid"}
	}
	if !mpesa.ValidPhoneNumber(phoneNumber) {
		return InitiateResult{}, domain.ValidationError{Field: "phoneNumber", Msg: "nomor telepon tidak valid"}
	}
	phone := mpesa.FormatPhoneNumber(phoneNumber)

	booking, err := s.BookingRepo.GetForUser(ctx, orderID, userID)
	if err != nil {
		return InitiateResult{}, err
	}
	if booking.Status == models.BookingPaid {
		return InitiateResult{}, domain.ConflictError{Resource: "booking", Msg: "booking sudah lunas"}
	}
	charged := utils.RoundUpAmount(booking.TotalAmount)
	if charged <= 0 {
		return InitiateResult{}, domain.ValidationError{Field: "amount", Msg: "total booking harus lebih dari 0"}
	}

	resp, err := s.Gateway.InitiateSTKPush(ctx, phone, booking.TotalAmount, booking.ID)
	if err != nil {
		utils.LogFields(s.RequestID, "payment", "initiate", "booking_id", booking.ID, "gateway_error", err.Error())
		return InitiateResult{}, domain.GatewayError{Op: "stkpush", Err: err}
	}

	p := models.PaymentRequest{
		BookingID:         booking.ID,
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		Amount:            float64(charged),
		PhoneNumber:       phone,
	}
	if err := s.PaymentRepo.Create(ctx, &p); err != nil {
		// The push is out but untracked; the callback will be logged as unknown.
		utils.LogFields(s.RequestID, "payment", "initiate", "booking_id", booking.ID,
			"checkout_request_id", resp.CheckoutRequestID, "persist_error", err.Error())
		return InitiateResult{}, err
	}
	utils.LogFields(s.RequestID, "payment", "initiate", "booking_id", booking.ID,
		"checkout_request_id", p.CheckoutRequestID, "amount", charged)
	return InitiateResult{Payment: p, CustomerMessage: resp.CustomerMessage}, nil
}

// HandleCallback applies a gateway callback. Only storage failures return an
// error; every other outcome is safe to acknowledge.
func (s PaymentService) HandleCallback(ctx context.Context, env mpesa.CallbackEnvelope) (CallbackOutcome, error) {
	res, err := env.Result()
	if err != nil {
		utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", res.CheckoutRequestID, "invalid", err.Error())
		return CallbackInvalid, nil
	}

	if !res.Success {
		return s.applyFailure(ctx, res)
	}
	return s.applySuccess(ctx, res)
}

func (s PaymentService) applySuccess(ctx context.Context, res mpesa.PaymentResult) (CallbackOutcome, error) {
	var (
		bookingID int64
		marked    bool
	)
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		ok, err := s.PaymentRepo.TransitionTx(ctx, tx, res.CheckoutRequestID, models.PaymentCompleted, res.Receipt, res.ResultDesc)
		if err != nil {
			return err
		}
		if !ok {
			return errNotPending
		}
		bookingID, err = s.PaymentRepo.BookingIDTx(ctx, tx, res.CheckoutRequestID)
		if err != nil {
			return err
		}
		marked, err = s.BookingRepo.MarkPaidTx(ctx, tx, bookingID, res.Receipt)
		return err
	})
	if errors.Is(err, errNotPending) {
		return s.classifyMiss(ctx, res.CheckoutRequestID), nil
	}
	if err != nil {
		utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", res.CheckoutRequestID, "rollback", err.Error())
		return "", domain.PersistenceError{Msg: "gagal memproses callback", Err: err}
	}

	if !marked {
		utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", res.CheckoutRequestID,
			"booking_id", bookingID, "warn", "booking sudah lunas sebelumnya")
	}
	utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", res.CheckoutRequestID,
		"status", models.PaymentCompleted, "booking_id", bookingID, "amount", res.Amount)
	return CallbackCompleted, nil
}

func (s PaymentService) applyFailure(ctx context.Context, res mpesa.PaymentResult) (CallbackOutcome, error) {
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		ok, err := s.PaymentRepo.TransitionTx(ctx, tx, res.CheckoutRequestID, models.PaymentFailed, "", res.ResultDesc)
		if err != nil {
			return err
		}
		if !ok {
			return errNotPending
		}
		return nil
	})
	if errors.Is(err, errNotPending) {
		return s.classifyMiss(ctx, res.CheckoutRequestID), nil
	}
	if err != nil {
		utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", res.CheckoutRequestID, "rollback", err.Error())
		return "", domain.PersistenceError{Msg: "gagal memproses callback", Err: err}
	}
	utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", res.CheckoutRequestID,
		"status", models.PaymentFailed, "result_code", res.ResultCode, "desc", res.ResultDesc)
	return CallbackFailed, nil
}

// classifyMiss explains why the guarded update matched nothing.
func (s PaymentService) classifyMiss(ctx context.Context, checkoutID string) CallbackOutcome {
	p, err := s.PaymentRepo.GetByCheckoutID(ctx, checkoutID)
	switch {
	case domain.IsNotFound(err):
		utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", checkoutID, "ignored", "unknown checkout_request_id")
		return CallbackUnknown
	case err != nil:
		utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", checkoutID, "lookup_error", err.Error())
		return CallbackUnknown
	default:
		utils.LogFields(s.RequestID, "payment", "callback", "checkout_request_id", checkoutID, "ignored", "replay", "status", p.Status)
		return CallbackReplay
	}
}

// Status returns the request only to the user owning its booking.
func (s PaymentService) Status(ctx context.Context, userID int64, checkoutID string) (models.PaymentRequest, error) {
	checkoutID = utils.TrimOrEmpty(checkoutID)
	if checkoutID == "" {
		return models.PaymentRequest{}, domain.ValidationError{Field: "checkoutRequestId", Msg: "wajib diisi"}
	}
	return s.PaymentRepo.GetForUser(ctx, checkoutID, userID)
}

// PendingOlderThan lists reconciliation candidates.
func (s PaymentService) PendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]models.PaymentRequest, error) {
	if age < 0 {
		return nil, domain.ValidationError{Field: "older_than", Msg: "tidak boleh negatif"}
	}
	return s.PaymentRepo.ListPendingOlderThan(ctx, s.now().Add(-age), limit)
}
