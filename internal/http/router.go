package api

import (
	"log"
	stdhttp "net/http"

	h "flavorjunction/internal/http/handlers"
	"flavorjunction/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Deps is what the router wires together.
type Deps struct {
	Handler        *h.Handler
	Tokens         middleware.TokenParser
	AuthLimiter    *middleware.IPRateLimiter
	AllowedOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	h.RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(d.AllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	hd := d.Handler
	hd.SetRoutes(r.Routes)
	authed := middleware.RequireAuth(d.Tokens)
	limited := middleware.RateLimit(d.AuthLimiter)

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", hd.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", limited, hd.Register)
		auth.POST("/login", limited, hd.Login)
		auth.POST("/logout", hd.Logout)

		// Profile
		user := api.Group("/user", authed)
		user.GET("/profile", hd.GetProfile)
		user.PUT("/profile", hd.UpdateProfile)
		user.GET("/bookings", hd.ListMyBookings())
		// legacy path
		api.PUT("/profile", authed, hd.UpdateProfile)

		// Bookings
		bookings := api.Group("/bookings", authed)
		mountBookings(bookings, hd)
		// legacy paths
		api.POST("/table-booking", authed, hd.CreateTableBooking)
		api.POST("/room-booking", authed, hd.CreateRoomBooking)
		api.GET("/tableBookings", authed, hd.ListTableBookings())
		api.GET("/roomBookings", authed, hd.ListRoomBookings())

		// Payments; the callback is called by M-Pesa and carries no user token
		payments := api.Group("/payments")
		payments.POST("/callback", hd.PaymentCallback)
		payments.POST("/initiate", authed, hd.InitiatePayment)
		payments.GET("/status/:checkoutRequestId", authed, hd.PaymentStatus)
		payments.GET("/receipt/:checkoutRequestId", authed, hd.PaymentReceipt)

		// Admin
		admin := api.Group("/admin")
		admin.POST("/login", limited, hd.AdminLogin)
		adminOnly := admin.Group("", authed, middleware.RequireAdmin())
		adminOnly.GET("/bookings", hd.AdminListBookings)
		adminOnly.GET("/payments/pending", hd.AdminPendingPayments)
	}

	return r
}

func mountBookings(g *gin.RouterGroup, hd *h.Handler) {
	g.POST("/table", hd.CreateTableBooking)
	g.GET("/table", hd.ListTableBookings())
	g.POST("/room", hd.CreateRoomBooking)
	g.GET("/room", hd.ListRoomBookings())
	g.GET("/:id", hd.GetBooking)
}
