package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	intconfig "flavorjunction/internal/config"
	intdb "flavorjunction/internal/db"
	router "flavorjunction/internal/http"
	"flavorjunction/internal/http/handlers"
	"flavorjunction/internal/http/middleware"
	"flavorjunction/internal/mpesa"
	"flavorjunction/internal/repositories"
	"flavorjunction/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if err := env.Validate(); err != nil {
		log.Fatalf("Konfigurasi tidak valid:\n%v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		log.Fatalf("Gagal konek database: %v", err)
	}
	defer intconfig.CloseDB(db)

	dialect, err := intdb.ParseDialect(env.DBDriver)
	if err != nil {
		log.Fatalf("%v", err)
	}
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = intdb.Migrate(migrateCtx, db, dialect)
	cancelMigrate()
	if err != nil {
		log.Fatalf("Migrasi gagal: %v", err)
	}

	users := repositories.UserRepository{DB: db}
	bookings := repositories.BookingRepository{DB: db}
	payments := repositories.PaymentRepository{DB: db}

	tokens := services.NewTokenService(env.JWTSecret, env.JWTTTL)
	gateway := mpesa.NewClient(mpesa.Config{
		BaseURL:        env.Mpesa.BaseURL(),
		ConsumerKey:    env.Mpesa.ConsumerKey,
		ConsumerSecret: env.Mpesa.ConsumerSecret,
		Shortcode:      env.Mpesa.Shortcode,
		Passkey:        env.Mpesa.Passkey,
		CallbackURL:    env.Mpesa.CallbackURL,
		CallbackToken:  env.Mpesa.CallbackToken,
		Timeout:        env.Mpesa.Timeout,
	}, nil)

	hd := &handlers.Handler{
		DB:    db,
		Users: users,
		Auth:  services.AuthService{UserRepo: users, Tokens: tokens},
		Bookings: services.BookingService{
			BookingRepo:          bookings,
			TableDepositPerGuest: env.TableDepositPerGuest,
		},
		Payments: services.PaymentService{
			DB:          db,
			PaymentRepo: payments,
			BookingRepo: bookings,
			Gateway:     gateway,
		},
		Receipts:      services.ReceiptService{PaymentRepo: payments, BookingRepo: bookings},
		CallbackToken: env.Mpesa.CallbackToken,
		CookieSecure:  strings.HasPrefix(env.Mpesa.CallbackURL, "https://"),
	}

	r := router.NewRouter(router.Deps{
		Handler:        hd,
		Tokens:         tokens,
		AuthLimiter:    middleware.NewIPRateLimiter(env.AuthRateRPS, env.AuthRateBurst),
		AllowedOrigins: env.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      env.Mpesa.Timeout + 20*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server berjalan di http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gagal menjalankan server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Mematikan server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown server gagal: %v", err)
		return
	}

	log.Println("Server berhenti dengan aman.")
}
