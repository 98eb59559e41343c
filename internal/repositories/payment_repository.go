package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "flavorjunction/internal/db"
	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

const paymentColumns = `pr.id, pr.booking_id, pr.checkout_request_id, pr.merchant_request_id,
	pr.amount, pr.phone_number, pr.status, pr.mpesa_receipt, pr.result_desc,
	pr.created_at, pr.updated_at`

func scanPayment(row interface{ Scan(...any) error }) (models.PaymentRequest, error) {
	var (
		p                   models.PaymentRequest
		receipt, resultDesc sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.CheckoutRequestID,
		&p.MerchantRequestID,
		&p.Amount,
		&p.PhoneNumber,
		&p.Status,
		&receipt,
		&resultDesc,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return models.PaymentRequest{}, err
	}
	p.MpesaReceipt = intdb.StringOrEmpty(receipt)
	p.ResultDesc = intdb.StringOrEmpty(resultDesc)
	return p, nil
}

// Create stores a new pending attempt keyed by its CheckoutRequestID.
func (r PaymentRepository) Create(ctx context.Context, p *models.PaymentRequest) error {
	if p.CheckoutRequestID == "" {
		return domain.ValidationError{Field: "checkout_request_id", Msg: "wajib diisi"}
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO payment_requests (booking_id, checkout_request_id, merchant_request_id,
			amount, phone_number, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.CheckoutRequestID, p.MerchantRequestID,
		p.Amount, p.PhoneNumber, string(models.PaymentPending), now, now,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "payment", Msg: "checkout_request_id sudah tercatat", Err: err}
		}
		return domain.PersistenceError{Msg: "gagal menyimpan payment request", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.PersistenceError{Msg: "gagal membaca id payment", Err: err}
	}
	p.ID = id
	p.Status = models.PaymentPending
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetByCheckoutID fetches a request regardless of owner. Only the callback
// path may use it; user-facing reads go through GetForUser.
func (r PaymentRepository) GetByCheckoutID(ctx context.Context, checkoutID string) (models.PaymentRequest, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payment_requests pr WHERE pr.checkout_request_id = ? LIMIT 1`, checkoutID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentRequest{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.PaymentRequest{}, domain.PersistenceError{Msg: "gagal query payment", Err: err}
	}
	return p, nil
}

// GetForUser returns the request only if its booking belongs to userID.
func (r PaymentRepository) GetForUser(ctx context.Context, checkoutID string, userID int64) (models.PaymentRequest, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payment_requests pr
		JOIN bookings b ON b.id = pr.booking_id
		WHERE pr.checkout_request_id = ? AND b.user_id = ?
		LIMIT 1`, checkoutID, userID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentRequest{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.PaymentRequest{}, domain.PersistenceError{Msg: "gagal query payment", Err: err}
	}
	return p, nil
}

// TransitionTx moves a pending request to a terminal status. The WHERE
// status='pending' guard makes it a compare-and-swap: of two concurrent
// callbacks for the same id only one sees a row affected.
func (r PaymentRepository) TransitionTx(ctx context.Context, tx intdb.Querier, checkoutID string, to models.PaymentStatus, receipt, resultDesc string) (bool, error) {
	if !to.Terminal() {
		return false, fmt.Errorf("status %q bukan status akhir", to)
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE payment_requests
		SET status = ?, mpesa_receipt = ?, result_desc = ?, updated_at = ?
		WHERE checkout_request_id = ? AND status = ?`,
		string(to), intdb.NullIfEmpty(receipt), intdb.NullIfEmpty(resultDesc), time.Now().UTC(),
		checkoutID, string(models.PaymentPending),
	)
	if err != nil {
		return false, fmt.Errorf("update payment %s: %w", checkoutID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected payment %s: %w", checkoutID, err)
	}
	return n == 1, nil
}

// BookingIDTx resolves the booking a request settles.
func (r PaymentRepository) BookingIDTx(ctx context.Context, tx intdb.Querier, checkoutID string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT booking_id FROM payment_requests WHERE checkout_request_id = ?`, checkoutID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("booking id payment %s: %w", checkoutID, err)
	}
	return id, nil
}

// ListPendingOlderThan returns reconciliation candidates: requests still
// pending that were created before cutoff, oldest first.
func (r PaymentRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.PaymentRequest, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payment_requests pr
		WHERE pr.status = ? AND pr.created_at < ?
		ORDER BY pr.created_at ASC
		LIMIT ?`, string(models.PaymentPending), cutoff.UTC(), limit)
	if err != nil {
		return nil, domain.PersistenceError{Msg: "gagal query payment pending", Err: err}
	}
	defer rows.Close()

	out := []models.PaymentRequest{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, domain.PersistenceError{Msg: "gagal membaca payment", Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError{Msg: "gagal membaca payment", Err: err}
	}
	return out, nil
}
