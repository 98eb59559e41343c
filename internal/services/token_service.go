package services

import (
	"errors"
	"strings"
	"time"

	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload.
type Claims struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) TokenService {
	if ttl <= 0 {
		ttl = 15 * 24 * time.Hour
	}
	return TokenService{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (s TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue returns a signed token for u and its expiry.
func (s TokenService) Issue(u models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.TTL)
	claims := Claims{
		UserID:  u.ID,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies raw and returns the request identity it carries.
func (s TokenService) Parse(raw string) (domain.RequestContext, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.RequestContext{}, domain.AuthError{Msg: "token tidak ada"}
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.RequestContext{}, domain.AuthError{Msg: "token kedaluwarsa", Expired: true, Err: err}
		}
		return domain.RequestContext{}, domain.AuthError{Msg: "token tidak valid", Forbidden: true, Err: err}
	}
	if claims.UserID <= 0 {
		return domain.RequestContext{}, domain.AuthError{Msg: "token tidak valid", Forbidden: true}
	}
	return domain.RequestContext{UserID: domain.ID(claims.UserID), IsAdmin: claims.IsAdmin}, nil
}
