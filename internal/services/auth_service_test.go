package services

import (
	"context"
	"testing"
	"time"

	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
	"flavorjunction/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userCols = []string{"id", "email", "phone", "password_hash", "is_admin", "created_at", "updated_at"}

func newAuthService(t *testing.T) (AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return AuthService{
		UserRepo: repositories.UserRepository{DB: db},
		Tokens:   NewTokenService("test-secret", time.Hour),
	}, mock
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("amina@example.com", "0712345678", sqlmock.AnyArg(), false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	u, err := svc.Register(context.Background(), "  Amina@Example.com ", "0712345678", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, "amina@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterValidation(t *testing.T) {
	svc, mock := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "0712345678", "secret1")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Register(ctx, "a@example.com", "0712345678", "123")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Register(ctx, "a@example.com", "", "secret1")
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := svc.Register(context.Background(), "amina@example.com", "0712345678", "secret1")
	assert.True(t, domain.IsConflict(err))
}

func TestLoginIssuesParsableToken(t *testing.T) {
	svc, mock := newAuthService(t)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE email = \\? LIMIT 1").
		WithArgs("amina@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(5, "amina@example.com", "0712345678", hashed(t, "secret1"), false, now, now))

	sess, err := svc.Login(context.Background(), "amina@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), sess.User.ID)

	rc, err := svc.Tokens.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ID(5), rc.UserID)
	assert.False(t, rc.IsAdmin)
}

func TestLoginWrongPasswordIsAuthError(t *testing.T) {
	svc, mock := newAuthService(t)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(5, "amina@example.com", "0712345678", hashed(t, "secret1"), false, now, now))
	mock.ExpectQuery("FROM users WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := svc.Login(context.Background(), "amina@example.com", "wrong")
	assert.True(t, domain.IsAuth(err))

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.True(t, domain.IsAuth(err))
}

func TestAdminLoginFiltersOnFlag(t *testing.T) {
	svc, mock := newAuthService(t)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE email = \\? AND is_admin = 1 LIMIT 1").
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "admin@example.com", "0700000000", hashed(t, "adminpw"), true, now, now))

	sess, err := svc.AdminLogin(context.Background(), "admin@example.com", "adminpw")
	require.NoError(t, err)
	assert.True(t, sess.User.IsAdmin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	svc, mock := newAuthService(t)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE id = \\?").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(5, "amina@example.com", "0712345678", "x", false, now, now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE email = \\? AND id <> \\?").
		WithArgs("taken@example.com", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	_, err := svc.UpdateProfile(context.Background(), 5, "taken@example.com", "")
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenExpiredIsFlagged(t *testing.T) {
	ts := NewTokenService("k", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	ts.Now = func() time.Time { return issuedAt }
	tok, _, err := ts.Issue(models.User{ID: 9})
	require.NoError(t, err)

	ts.Now = time.Now
	_, err = ts.Parse(tok)
	var authErr domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.Expired)
}

func TestTokenWrongSecretIsForbidden(t *testing.T) {
	tok, _, err := NewTokenService("a", time.Hour).Issue(models.User{ID: 9})
	require.NoError(t, err)

	_, err = NewTokenService("b", time.Hour).Parse(tok)
	var authErr domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.Forbidden)
	assert.False(t, authErr.Expired)
}
