package services

import (
	"context"
	"errors"

	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
	"flavorjunction/internal/repositories"
	"flavorjunction/internal/utils"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var fieldValidator = validator.New()

// AuthService handles registration, login and profile edits.
type AuthService struct {
	UserRepo  repositories.UserRepository
	Tokens    TokenService
	RequestID string
}

// Session is what a successful login returns.
type Session struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func validEmail(email string) error {
	if err := fieldValidator.Var(email, "required,email"); err != nil {
		return domain.ValidationError{Field: "email", Msg: "format email tidak valid", Err: err}
	}
	return nil
}

func (s AuthService) Register(ctx context.Context, email, phone, password string) (models.PublicUser, error) {
	email = utils.NormalizeEmail(email)
	phone = utils.TrimOrEmpty(phone)
	if err := validEmail(email); err != nil {
		return models.PublicUser{}, err
	}
	if phone == "" {
		return models.PublicUser{}, domain.ValidationError{Field: "phone", Msg: "wajib diisi"}
	}
	if len(password) < minPasswordLength {
		return models.PublicUser{}, domain.ValidationError{Field: "password", Msg: "minimal 6 karakter"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.PublicUser{}, err
	}
	u := models.User{Email: email, Phone: phone, PasswordHash: string(hash)}
	if err := s.UserRepo.Create(ctx, &u); err != nil {
		utils.LogEvent(s.RequestID, "auth", "register", "create failed: "+err.Error())
		return models.PublicUser{}, err
	}
	utils.LogFields(s.RequestID, "auth", "register", "user_id", u.ID)
	return u.ToPublic(), nil
}

func (s AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	return s.login(ctx, email, password, false)
}

// AdminLogin only matches accounts flagged is_admin.
func (s AuthService) AdminLogin(ctx context.Context, email, password string) (Session, error) {
	return s.login(ctx, email, password, true)
}

func (s AuthService) login(ctx context.Context, email, password string, adminOnly bool) (Session, error) {
	action := "login"
	if adminOnly {
		action = "admin_login"
	}
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, domain.ValidationError{Msg: "email dan password wajib diisi"}
	}

	badCredentials := domain.AuthError{Msg: "email atau password salah"}
	u, err := s.UserRepo.GetByEmail(ctx, email, adminOnly)
	if err != nil {
		if domain.IsNotFound(err) {
			utils.LogEvent(s.RequestID, "auth", action, "unknown account")
			return Session{}, badCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			utils.LogEvent(s.RequestID, "auth", action, "hash compare failed: "+err.Error())
		}
		return Session{}, badCredentials
	}

	token, _, err := s.Tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	utils.LogFields(s.RequestID, "auth", action, "user_id", u.ID, "admin", u.IsAdmin)
	return Session{Token: token, User: u.ToPublic()}, nil
}

func (s AuthService) Profile(ctx context.Context, userID int64) (models.PublicUser, error) {
	u, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.ToPublic(), nil
}

// UpdateProfile changes email and phone. Empty values keep the current one.
func (s AuthService) UpdateProfile(ctx context.Context, userID int64, email, phone string) (models.PublicUser, error) {
	u, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}
	if email = utils.NormalizeEmail(email); email != "" {
		if err := validEmail(email); err != nil {
			return models.PublicUser{}, err
		}
		u.Email = email
	}
	if phone = utils.TrimOrEmpty(phone); phone != "" {
		u.Phone = phone
	}

	taken, err := s.UserRepo.EmailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return models.PublicUser{}, err
	}
	if taken {
		return models.PublicUser{}, domain.ConflictError{Resource: "user", Msg: "email sudah terdaftar"}
	}
	if err := s.UserRepo.UpdateProfile(ctx, u.ID, u.Email, u.Phone); err != nil {
		return models.PublicUser{}, err
	}
	utils.LogFields(s.RequestID, "auth", "update_profile", "user_id", u.ID)
	return u.ToPublic(), nil
}
