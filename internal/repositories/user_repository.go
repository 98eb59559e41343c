package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intdb "flavorjunction/internal/db"
	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, email, phone, password_hash, is_admin, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts u and fills its ID. A taken email yields ConflictError.
func (r UserRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (email, phone, password_hash, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.Phone, u.PasswordHash, u.IsAdmin, now, now,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "user", Msg: "email sudah terdaftar", Err: err}
		}
		return domain.PersistenceError{Msg: "gagal menyimpan user", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.PersistenceError{Msg: "gagal membaca id user", Err: err}
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetByEmail looks up a user. adminOnly restricts the match to is_admin=1.
func (r UserRepository) GetByEmail(ctx context.Context, email string, adminOnly bool) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	if adminOnly {
		query += ` AND is_admin = 1`
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, query+` LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.PersistenceError{Msg: "gagal query user", Err: err}
	}
	return u, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.PersistenceError{Msg: "gagal query user", Err: err}
	}
	return u, nil
}

// EmailTaken checks whether another user already owns email.
func (r UserRepository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?`, email, exceptID).Scan(&n)
	if err != nil {
		return false, domain.PersistenceError{Msg: "gagal cek email", Err: err}
	}
	return n > 0, nil
}

// UpdateProfile changes contact fields only; credentials and role stay as is.
func (r UserRepository) UpdateProfile(ctx context.Context, id int64, email, phone string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET email = ?, phone = ?, updated_at = ? WHERE id = ?`,
		email, phone, time.Now().UTC(), id)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "user", Msg: "email sudah terdaftar", Err: err}
		}
		return domain.PersistenceError{Msg: "gagal update profil", Err: err}
	}
	return nil
}

// Count backs the db-check endpoint.
func (r UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, domain.PersistenceError{Msg: "gagal query users", Err: err}
	}
	return n, nil
}
