package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ADDR", "DB_DRIVER", "DB_DSN", "JWT_TTL", "MPESA_TIMEOUT",
		"TABLE_DEPOSIT_PER_GUEST", "AUTH_RATE_BURST", "MPESA_ENVIRONMENT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	env := LoadEnv()
	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, "sqlite", env.DBDriver)
	assert.NotEmpty(t, env.DBDSN)
	assert.Equal(t, 15*24*time.Hour, env.JWTTTL)
	assert.Equal(t, 15*time.Second, env.Mpesa.Timeout)
	assert.Equal(t, float64(500), env.TableDepositPerGuest)
	assert.Equal(t, 5, env.AuthRateBurst)
	assert.Equal(t, "https://sandbox.safaricom.co.ke", env.Mpesa.BaseURL())
	assert.Empty(t, env.CORSAllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_DSN", "u:p@tcp(db:3306)/fj?parseTime=true")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("MPESA_TIMEOUT", "nonsense")
	t.Setenv("MPESA_ENVIRONMENT", "Production")
	t.Setenv("MPESA_CALLBACK_URL", "https://example.com/api/payments/callback/")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	env := LoadEnv()
	assert.Equal(t, "mysql", env.DBDriver)
	assert.Equal(t, 2*time.Hour, env.JWTTTL)
	assert.Equal(t, 15*time.Second, env.Mpesa.Timeout)
	assert.Equal(t, "https://api.safaricom.co.ke", env.Mpesa.BaseURL())
	assert.Equal(t, "https://example.com/api/payments/callback", env.Mpesa.CallbackURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, env.CORSAllowedOrigins)
}

func TestValidateListsEveryMissingSetting(t *testing.T) {
	err := Env{DBDriver: "postgres"}.Validate()
	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET", "DB_DRIVER", "DB_DSN", "MPESA_CONSUMER_KEY", "MPESA_SHORTCODE", "MPESA_CALLBACK_URL"} {
		assert.Contains(t, err.Error(), want)
	}

	ok := Env{
		DBDriver:  "sqlite",
		DBDSN:     "file:test.sqlite3",
		JWTSecret: "s",
		Mpesa: MpesaEnv{ConsumerKey: "k", ConsumerSecret: "s", Shortcode: "174379",
			Passkey: "p", CallbackURL: "https://example.com/cb"},
	}
	assert.NoError(t, ok.Validate())
}
