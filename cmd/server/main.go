package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"edulist/docs"
	"edulist/internal/auth"
	"edulist/internal/cache"
	"edulist/internal/config"
	"edulist/internal/db"
	"edulist/internal/handler"
	"edulist/internal/logger"
	"edulist/internal/metrics"
	"edulist/internal/repository"
	"edulist/internal/router"
	"edulist/internal/service"
)

// @title EduList API
// @version 1.0
// @description Education directory with admin moderation of accounts, institutes and reviews.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.InitLogger(cfg.Environment, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Fatal("reset database", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("database handle", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := repository.NewStore(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	authService := service.NewAuthService(store, jwtService, tokenStore, log)
	userService := service.NewUserService(store, cacheClient, log)
	listingService := service.NewListingService(store, cacheClient, cfg.FeaturedCacheTTL, log)
	instituteService := service.NewInstituteService(store, cacheClient, log)
	courseService := service.NewCourseService(store)
	reviewService := service.NewReviewService(store, cacheClient, log)
	enquiryService := service.NewEnquiryService(store)
	analyticsService := service.NewAnalyticsService(store)
	facilityService := service.NewFacilityService(store, log)
	moderationService := service.NewModerationService(store, cacheClient, m, log, cfg.ModerationTimeout)

	// Handlers
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		User:      handler.NewUserHandler(userService),
		Institute: handler.NewInstituteHandler(listingService, instituteService, courseService, reviewService, analyticsService),
		Course:    handler.NewCourseHandler(courseService),
		Review:    handler.NewReviewHandler(reviewService),
		Enquiry:   handler.NewEnquiryHandler(enquiryService),
		Facility:  handler.NewFacilityHandler(facilityService),
		Admin: handler.NewAdminHandler(handler.AdminServices{
			Moderation: moderationService,
			Analytics:  analyticsService,
			Listing:    listingService,
			Users:      userService,
			Reviews:    reviewService,
			Enquiries:  enquiryService,
		}),
		Health: handler.NewHealthHandler(
			map[string]handler.Pinger{"mysql": handler.PingFunc(sqlDB.PingContext)},
			map[string]handler.Pinger{"redis": cacheClient},
		),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, handlers, router.Options{
		Auth:     authService,
		Metrics:  m,
		Gatherer: reg,
		Logger:   log,
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Info("swagger documentation available", zap.String("url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort)))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// swaggerURL builds the swagger UI address. SwaggerHost may already carry a
// scheme.
func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
