package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mgltickets/api/config"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/handlers"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/metrics"
	"github.com/mgltickets/api/internal/middleware"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	cfg     *config.Config
	db      *gorm.DB
	logger  zerolog.Logger
	engine  *gin.Engine
	limiter *middleware.RateLimiter
}

// New wires repositories, services and handlers onto a gin engine.
func New(cfg *config.Config, db *gorm.DB, logger zerolog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		db:      db,
		logger:  logger,
		engine:  gin.New(),
		limiter: middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute),
	}
	s.setupRoutes(tokens)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Str("environment", s.cfg.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) setupRoutes(tokens *auth.TokenManager) {
	r := s.engine
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		zerolog.Ctx(c.Request.Context()).Error().Interface("panic", recovered).Msg("recovered from panic")
		helpers.RespondWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}))
	r.Use(middleware.Metrics())

	userRepo := repositories.NewUserRepository(s.db)
	eventRepo := repositories.NewEventRepository(s.db)
	ticketTypeRepo := repositories.NewTicketTypeRepository(s.db)
	bookingRepo := repositories.NewBookingRepository(s.db)
	ticketRepo := repositories.NewTicketInstanceRepository(s.db)
	paymentRepo := repositories.NewPaymentRepository(s.db)

	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userService, userRepo, tokens)
	eventService := services.NewEventService(eventRepo)
	ticketTypeService := services.NewTicketTypeService(s.db, ticketTypeRepo, eventRepo)
	bookingService := services.NewBookingService(s.db, bookingRepo, ticketTypeRepo, ticketRepo)
	ticketService := services.NewTicketInstanceService(ticketRepo, bookingRepo, ticketTypeRepo, eventRepo, helpers.NewTicketSignature(s.cfg.Auth.TicketSigningKey()))
	paymentService := services.NewPaymentService(paymentRepo, bookingRepo)

	uploads := helpers.ImageUploadConfig(s.cfg.Uploads.Dir)
	authHandler := handlers.NewAuthHandler(authService, userService)
	eventHandler := handlers.NewEventHandler(eventService, ticketTypeService, uploads)
	ticketTypeHandler := handlers.NewTicketTypeHandler(ticketTypeService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	userHandler := handlers.NewUserHandler(userService)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.Static(uploads.PublicPrefix, uploads.UploadBasePath)

	requireAuth := middleware.RequireAuth(authService)
	optionalAuth := middleware.OptionalAuth(authService)
	can := middleware.RequireCapability

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", optionalAuth, authHandler.Register)
		authRoutes.POST("/login", s.limiter.Middleware(), authHandler.Login)
		authRoutes.POST("/refresh", requireAuth, authHandler.Refresh)
		authRoutes.POST("/logout", requireAuth, authHandler.Logout)
		authRoutes.GET("/me", requireAuth, authHandler.Me)
	}

	v1.GET("/events/test", eventHandler.Test)
	v1.GET("/events/:id/ticket-types", optionalAuth, eventHandler.TicketTypes)

	protected := v1.Group("")
	protected.Use(requireAuth)

	events := protected.Group("/events")
	{
		events.GET("", can(auth.CapEventsRead), eventHandler.List)
		events.GET("/latest", can(auth.CapEventsRead), eventHandler.Latest)
		events.GET("/status/:status", can(auth.CapEventsRead), eventHandler.ListByStatus)
		events.GET("/:id", can(auth.CapEventsRead), eventHandler.Get)
		events.POST("", can(auth.CapEventsWrite), eventHandler.Create)
		events.PUT("/:id", can(auth.CapEventsWrite), eventHandler.Update)
		events.DELETE("/:id", can(auth.CapEventsWrite), eventHandler.Delete)
		events.POST("/:id/flyer", can(auth.CapEventsWrite), eventHandler.UploadFlyer)
		events.POST("/:id/approve", can(auth.CapEventsModerate), eventHandler.Approve)
		events.POST("/:id/reject", can(auth.CapEventsModerate), eventHandler.Reject)
		events.PUT("/:id/status/:status", can(auth.CapEventsWrite), eventHandler.UpdateStatus)
	}

	ticketTypes := protected.Group("/ticket-types")
	{
		ticketTypes.GET("", ticketTypeHandler.List)
		ticketTypes.GET("/:id", ticketTypeHandler.Get)
		ticketTypes.POST("", can(auth.CapTicketTypesWrite), ticketTypeHandler.Create)
		ticketTypes.PUT("/:id", can(auth.CapTicketTypesWrite), ticketTypeHandler.Update)
		ticketTypes.DELETE("/:id", can(auth.CapTicketTypesWrite), ticketTypeHandler.Delete)
	}

	bookings := protected.Group("/bookings")
	{
		bookings.POST("", can(auth.CapBookingsCreate), bookingHandler.Create)
		bookings.GET("", bookingHandler.List)
		bookings.GET("/recent", bookingHandler.Recent)
		bookings.GET("/:id", bookingHandler.Get)
		bookings.PUT("/:id", can(auth.CapBookingsManage), bookingHandler.Update)
		bookings.DELETE("/:id", can(auth.CapBookingsManage), bookingHandler.Delete)
		bookings.POST("/:id/confirm", bookingHandler.Confirm)
		bookings.POST("/:id/cancel", bookingHandler.Cancel)
	}

	tickets := protected.Group("/tickets")
	{
		tickets.GET("", ticketHandler.List)
		tickets.GET("/:id", ticketHandler.Get)
		tickets.GET("/:id/qr", ticketHandler.QRCode)
		tickets.POST("", can(auth.CapTicketsManage), ticketHandler.Issue)
		tickets.POST("/redeem", can(auth.CapTicketsValidate), ticketHandler.Redeem)
		tickets.PUT("/:id", can(auth.CapTicketsManage), ticketHandler.Update)
		tickets.DELETE("/:id", can(auth.CapTicketsManage), ticketHandler.Delete)
	}

	payments := protected.Group("/payments")
	{
		payments.GET("", can(auth.CapPaymentsManage), paymentHandler.List)
		payments.GET("/latest", can(auth.CapPaymentsManage), paymentHandler.Latest)
		payments.GET("/:id", paymentHandler.Get)
		payments.GET("/mpesa/:ref", paymentHandler.GetByMpesaRef)
		payments.GET("/booking/:id/total", can(auth.CapPaymentsManage), paymentHandler.TotalForBooking)
		payments.POST("", can(auth.CapPaymentsManage), paymentHandler.Create)
		payments.POST("/callback", can(auth.CapPaymentsManage), paymentHandler.Callback)
		payments.PUT("/:id", can(auth.CapPaymentsManage), paymentHandler.Update)
		payments.PUT("/:id/status/:status", can(auth.CapPaymentsManage), paymentHandler.UpdateStatus)
		payments.DELETE("/:id", can(auth.CapPaymentsManage), paymentHandler.Delete)
	}

	users := protected.Group("/users")
	{
		users.GET("", can(auth.CapUsersManage), userHandler.List)
		users.GET("/count", can(auth.CapUsersManage), userHandler.Count)
		users.GET("/search", can(auth.CapUsersManage), userHandler.Search)
		users.GET("/:id", can(auth.CapUsersManage), userHandler.Get)
		users.PUT("/:id/contact", userHandler.UpdateContact)
		users.PUT("/:id/password", userHandler.UpdatePassword)
		users.PUT("/:id/role", can(auth.CapUsersManage), userHandler.ChangeRole)
		users.POST("/:id/activate", can(auth.CapUsersManage), userHandler.Activate)
		users.POST("/:id/deactivate", can(auth.CapUsersManage), userHandler.Deactivate)
		users.POST("/:id/verify", can(auth.CapUsersManage), userHandler.Verify)
		users.POST("/:id/unverify", can(auth.CapUsersManage), userHandler.Unverify)
		users.POST("/:id/role/:action", can(auth.CapUsersManage), userHandler.RoleAction)
		users.DELETE("/:id", can(auth.CapUsersManage), userHandler.Delete)
	}
}

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
