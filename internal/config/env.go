package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	AuthRateRPS   float64
	AuthRateBurst int

	TableDepositPerGuest float64

	Mpesa MpesaEnv
}

// MpesaEnv holds Daraja credentials. ConsumerKey/ConsumerSecret feed the OAuth
// exchange, Shortcode/Passkey derive the STK password.
type MpesaEnv struct {
	ConsumerKey    string
	ConsumerSecret string
	Passkey        string
	Shortcode      string
	CallbackURL    string
	CallbackToken  string
	Environment    string
	Timeout        time.Duration
}

// BaseURL picks the Daraja host for the configured environment.
func (m MpesaEnv) BaseURL() string {
	if strings.EqualFold(m.Environment, "production") {
		return "https://api.safaricom.co.ke"
	}
	return "https://sandbox.safaricom.co.ke"
}

func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[CONFIG] .env tidak terbaca: %v", err)
	}

	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = "sqlite"
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" && driver == "sqlite" {
		dsn = "file:flavor-junction.sqlite3?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	return Env{
		AppAddr:              appAddr,
		GinMode:              strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDriver:             driver,
		DBDSN:                dsn,
		JWTSecret:            strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:               envDuration("JWT_TTL", 15*24*time.Hour),
		CORSAllowedOrigins:   envList("CORS_ALLOWED_ORIGINS"),
		AuthRateRPS:          envFloat("AUTH_RATE_RPS", 1),
		AuthRateBurst:        envInt("AUTH_RATE_BURST", 5),
		TableDepositPerGuest: envFloat("TABLE_DEPOSIT_PER_GUEST", 500),
		Mpesa: MpesaEnv{
			ConsumerKey:    strings.TrimSpace(os.Getenv("MPESA_CONSUMER_KEY")),
			ConsumerSecret: strings.TrimSpace(os.Getenv("MPESA_CONSUMER_SECRET")),
			Passkey:        strings.TrimSpace(os.Getenv("MPESA_PASSKEY")),
			Shortcode:      strings.TrimSpace(os.Getenv("MPESA_SHORTCODE")),
			CallbackURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("MPESA_CALLBACK_URL")), "/"),
			CallbackToken:  strings.TrimSpace(os.Getenv("MPESA_CALLBACK_TOKEN")),
			Environment:    strings.TrimSpace(os.Getenv("MPESA_ENVIRONMENT")),
			Timeout:        envDuration("MPESA_TIMEOUT", 15*time.Second),
		},
	}
}

// Validate reports settings the server cannot start without.
func (e Env) Validate() error {
	var errs []error
	if e.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET wajib diisi"))
	}
	if e.DBDriver != "mysql" && e.DBDriver != "sqlite" {
		errs = append(errs, errors.New("DB_DRIVER harus mysql atau sqlite"))
	}
	if e.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN wajib diisi"))
	}
	if e.Mpesa.ConsumerKey == "" || e.Mpesa.ConsumerSecret == "" {
		errs = append(errs, errors.New("MPESA_CONSUMER_KEY dan MPESA_CONSUMER_SECRET wajib diisi"))
	}
	if e.Mpesa.Shortcode == "" || e.Mpesa.Passkey == "" {
		errs = append(errs, errors.New("MPESA_SHORTCODE dan MPESA_PASSKEY wajib diisi"))
	}
	if e.Mpesa.CallbackURL == "" {
		errs = append(errs, errors.New("MPESA_CALLBACK_URL wajib diisi"))
	}
	return errors.Join(errs...)
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[CONFIG] %s=%q tidak valid, pakai default %s", key, v, def)
		return def
	}
	return d
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[CONFIG] %s=%q tidak valid, pakai default %v", key, v, def)
		return def
	}
	return f
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[CONFIG] %s=%q tidak valid, pakai default %d", key, v, def)
		return def
	}
	return n
}

func envList(key string) []string {
	out := []string{}
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
