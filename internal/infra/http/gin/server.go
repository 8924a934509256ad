package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"carrental/internal/app/dto"
	"carrental/internal/infra/config"
	"carrental/internal/infra/obs"
)

type VehicleHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	ListMine(c *gin.Context)
	Cancel(c *gin.Context)
	ConfirmPayment(c *gin.Context)
}

type AdminHTTP interface {
	AddVehicle(c *gin.Context)
	UpdateVehicle(c *gin.Context)
	DeleteVehicle(c *gin.Context)
	UploadImage(c *gin.Context)
	ListBookings(c *gin.Context)
}

type Handlers struct {
	Vehicle VehicleHTTP
	Booking BookingHTTP
	Admin   AdminHTTP
	Auth    Authenticator
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	router := NewRouter(cfg.CORSOrigins, obsMW, health, h)
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter wires middleware and routes without touching the global gin mode.
func NewRouter(origins []string, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Not found")
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.Message{Message: "Car Rental API is running!", Status: dto.StatusSuccess})
	})
	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	api.GET("/health", health.Health)
	if h.Vehicle != nil {
		api.GET("/vehicles", h.Vehicle.List)
		api.GET("/vehicles/:id", h.Vehicle.Get)
	}
	if h.Booking != nil {
		user := api.Group("", h.Auth.RequireUser())
		user.POST("/bookings", h.Booking.Create)
		user.GET("/my-bookings", h.Booking.ListMine)
		user.PATCH("/bookings/:id/cancel", h.Booking.Cancel)
		user.POST("/bookings/:id/confirm_payment", h.Booking.ConfirmPayment)
	}
	if h.Admin != nil {
		admin := api.Group("/admin", h.Auth.RequireAdmin())
		admin.POST("/vehicles", h.Admin.AddVehicle)
		admin.PUT("/vehicles/:id", h.Admin.UpdateVehicle)
		admin.DELETE("/vehicles/:id", h.Admin.DeleteVehicle)
		admin.POST("/vehicles/:id/image", h.Admin.UploadImage)
		admin.GET("/bookings", h.Admin.ListBookings)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
