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

type BookingRepository struct {
	DB *sql.DB
}

const bookingColumns = `id, user_id, kind, name, email, phone,
	reservation_date, reservation_time, check_in_date, check_out_date, room_type,
	guests, total_amount, status, payment_ref, created_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b                                   models.Booking
		resDate, resTime, checkIn, checkOut sql.NullString
		roomType, paymentRef                sql.NullString
	)
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Kind,
		&b.Name,
		&b.Email,
		&b.Phone,
		&resDate,
		&resTime,
		&checkIn,
		&checkOut,
		&roomType,
		&b.Guests,
		&b.TotalAmount,
		&b.Status,
		&paymentRef,
		&b.CreatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.ReservationDate = intdb.StringOrEmpty(resDate)
	b.ReservationTime = intdb.StringOrEmpty(resTime)
	b.CheckInDate = intdb.StringOrEmpty(checkIn)
	b.CheckOutDate = intdb.StringOrEmpty(checkOut)
	b.RoomType = intdb.StringOrEmpty(roomType)
	b.PaymentRef = intdb.StringOrEmpty(paymentRef)
	return b, nil
}

// Create inserts an unpaid booking and fills ID, Status and CreatedAt.
func (r BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if !b.Kind.Valid() {
		return domain.ValidationError{Field: "kind", Msg: "jenis booking tidak dikenal"}
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings (user_id, kind, name, email, phone,
			reservation_date, reservation_time, check_in_date, check_out_date, room_type,
			guests, total_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, string(b.Kind), b.Name, b.Email, b.Phone,
		intdb.NullIfEmpty(b.ReservationDate),
		intdb.NullIfEmpty(b.ReservationTime),
		intdb.NullIfEmpty(b.CheckInDate),
		intdb.NullIfEmpty(b.CheckOutDate),
		intdb.NullIfEmpty(b.RoomType),
		b.Guests, b.TotalAmount, string(models.BookingUnpaid), now,
	)
	if err != nil {
		return domain.PersistenceError{Msg: "gagal menyimpan booking", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.PersistenceError{Msg: "gagal membaca id booking", Err: err}
	}
	b.ID = id
	b.Status = models.BookingUnpaid
	b.CreatedAt = now
	return nil
}

// GetForUser returns the booking only when userID owns it.
func (r BookingRepository) GetForUser(ctx context.Context, id, userID int64) (models.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND user_id = ? LIMIT 1`, id, userID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, domain.PersistenceError{Msg: "gagal query booking", Err: err}
	}
	return b, nil
}

// ListByUser returns the user's bookings, newest first. An empty kind lists both.
func (r BookingRepository) ListByUser(ctx context.Context, userID int64, kind models.BookingKind) ([]models.Booking, error) {
	if kind == "" {
		return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY id DESC`, userID)
	}
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? AND kind = ? ORDER BY id DESC`, userID, string(kind))
}

// ListAll is the admin view. An empty kind lists both.
func (r BookingRepository) ListAll(ctx context.Context, kind models.BookingKind, limit int) ([]models.Booking, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if kind == "" {
		return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY id DESC LIMIT ?`, limit)
	}
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE kind = ? ORDER BY id DESC LIMIT ?`, string(kind), limit)
}

func (r BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.PersistenceError{Msg: "gagal query booking", Err: err}
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.PersistenceError{Msg: "gagal membaca booking", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError{Msg: "gagal membaca booking", Err: err}
	}
	return out, nil
}

// MarkPaidTx flips an unpaid booking to paid inside tx. It reports false when
// the booking was already paid or does not exist.
func (r BookingRepository) MarkPaidTx(ctx context.Context, tx intdb.Querier, id int64, paymentRef string) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ?, payment_ref = ? WHERE id = ? AND status <> ?`,
		string(models.BookingPaid), paymentRef, id, string(models.BookingPaid))
	if err != nil {
		return false, fmt.Errorf("update booking %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected booking %d: %w", id, err)
	}
	return n == 1, nil
}
