package services

import (
	"context"
	"testing"

	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
	"flavorjunction/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(t *testing.T) (BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return BookingService{
		BookingRepo:          repositories.BookingRepository{DB: db},
		TableDepositPerGuest: 500,
	}, mock
}

func contact() Contact {
	return Contact{Name: " Amina  Njeri ", Email: "Amina@Example.com", Phone: "0712345678"}
}

func TestCreateTableBookingChargesDepositPerGuest(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(3), "table", "Amina Njeri", "amina@example.com", "0712345678",
			"2025-01-10", "19:30", nil, nil, nil,
			4, float64(2000), "unpaid", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	b, err := svc.CreateTableBooking(context.Background(), 3, TableBookingInput{
		Contact: contact(), Date: "2025-01-10", Time: "19:30", Guests: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, float64(2000), b.TotalAmount)
	assert.Equal(t, models.BookingUnpaid, b.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomBookingPricesNights(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(3), "room", "Amina Njeri", "amina@example.com", "0712345678",
			nil, nil, "2025-03-01", "2025-03-04", "deluxe",
			2, float64(24000), "unpaid", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(8, 1))

	b, err := svc.CreateRoomBooking(context.Background(), 3, RoomBookingInput{
		Contact: contact(), CheckIn: "2025-03-01", CheckOut: "2025-03-04", RoomType: "Deluxe", Guests: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(24000), b.TotalAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomBookingValidation(t *testing.T) {
	svc, mock := newBookingService(t)
	ctx := context.Background()

	cases := map[string]RoomBookingInput{
		"checkout before checkin": {Contact: contact(), CheckIn: "2025-03-04", CheckOut: "2025-03-01", RoomType: "suite", Guests: 1},
		"same day":                {Contact: contact(), CheckIn: "2025-03-04", CheckOut: "2025-03-04", RoomType: "suite", Guests: 1},
		"bad date":                {Contact: contact(), CheckIn: "04/03/2025", CheckOut: "2025-03-05", RoomType: "suite", Guests: 1},
		"unknown room":            {Contact: contact(), CheckIn: "2025-03-01", CheckOut: "2025-03-02", RoomType: "penthouse", Guests: 1},
		"no guests":               {Contact: contact(), CheckIn: "2025-03-01", CheckOut: "2025-03-02", RoomType: "suite", Guests: 0},
		"no name":                 {Contact: Contact{Email: "a@example.com", Phone: "1"}, CheckIn: "2025-03-01", CheckOut: "2025-03-02", RoomType: "suite", Guests: 1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateRoomBooking(ctx, 3, in)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableBookingRejectsBadClock(t *testing.T) {
	svc, _ := newBookingService(t)

	_, err := svc.CreateTableBooking(context.Background(), 3, TableBookingInput{
		Contact: contact(), Date: "2025-01-10", Time: "7pm", Guests: 2,
	})
	assert.True(t, domain.IsValidation(err))
}

func TestListRejectsUnknownKind(t *testing.T) {
	svc, _ := newBookingService(t)

	_, err := svc.List(context.Background(), 3, models.BookingKind("spa"))
	assert.True(t, domain.IsValidation(err))
}

func TestGetOtherUsersBookingIsNotFound(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectQuery("FROM bookings WHERE id = \\? AND user_id = \\?").
		WithArgs(int64(7), int64(4)).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	_, err := svc.Get(context.Background(), 4, 7)
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
