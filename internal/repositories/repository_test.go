package repositories

import (
	"context"
	"testing"

	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@example.com' for key 'email'"})

	err = UserRepository{DB: db}.Create(context.Background(), &models.User{Email: "a@example.com"})
	assert.True(t, domain.IsConflict(err))
}

func TestMarkPaidTxGuardsPaidBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE bookings SET status = \\?, payment_ref = \\? WHERE id = \\? AND status <> \\?").
		WithArgs("paid", "ABC123", int64(7), "paid").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := BookingRepository{DB: db}.MarkPaidTx(context.Background(), db, 7, "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxOnlyToTerminal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = PaymentRepository{DB: db}.TransitionTx(context.Background(), db, "ws_CO_1", models.PaymentPending, "", "")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxIsGuardedOnPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("WHERE checkout_request_id = \\? AND status = \\?").
		WithArgs("completed", "ABC123", nil, sqlmock.AnyArg(), "ws_CO_1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := PaymentRepository{DB: db}.TransitionTx(context.Background(), db, "ws_CO_1", models.PaymentCompleted, "ABC123", "")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateRequiresCheckoutID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = PaymentRepository{DB: db}.Create(context.Background(), &models.PaymentRequest{BookingID: 7})
	assert.True(t, domain.IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE kind = \\? ORDER BY id DESC LIMIT \\?").
		WithArgs("room", int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := BookingRepository{DB: db}.ListAll(context.Background(), models.BookingKindRoom, 10000)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
