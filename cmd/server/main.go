package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"uniportal/docs" // swagger docs

	"uniportal/internal/auth"
	"uniportal/internal/authflow"
	"uniportal/internal/cache"
	"uniportal/internal/config"
	"uniportal/internal/db"
	"uniportal/internal/handler"
	"uniportal/internal/metrics"
	"uniportal/internal/repository"
	"uniportal/internal/router"
	"uniportal/internal/service"
)

// @title Campus Account API
// @version 1.0
// @description Sign-up and sign-in for the Greenwich student and staff portals.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Required().Ping(context.Background()); err != nil {
		log.Printf("redis unreachable at %s, sign-in will fail until it is back: %v", cfg.RedisAddr, err)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	gateway := service.NewIdentityGateway(repository.NewIdentityRepository(gormDB), jwtService, tokenStore)
	profiles := service.NewProfileStore(repository.NewProfileRepository(gormDB), cacheClient)
	roles := service.NewRoleCache(cacheClient)

	flowMetrics := metrics.NewFlowMetrics()
	flow := authflow.New(
		authflow.NewValidator(cfg.InstitutionDomain),
		gateway,
		profiles,
		roles,
		authflow.WithObserver(flowMetrics.Observe),
	)

	e := echo.New()
	router.Register(e, router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(flow, gateway, roles),
		ProfileHandler: handler.NewProfileHandler(profiles),
		JWTService:     jwtService,
		Gateway:        gateway,
		Metrics:        flowMetrics.Handler(),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	go func() {
		if err := e.Start(cfg.HTTPAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// swaggerURL builds the browsable docs address. host may already carry a scheme.
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
