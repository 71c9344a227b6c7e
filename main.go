// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"go-bikemart/config"
	"go-bikemart/controllers"
	"go-bikemart/middleware"
	"go-bikemart/routes"
	"go-bikemart/store"
	"go-bikemart/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		utils.Logger().Info("No .env file found. Proceeding with environment variables.")
	}

	logger := utils.Logger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("invalid configuration", "error", err)
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(cfg.JWTSecret)

	// Connect to MongoDB
	client, err := utils.ConnectDB(cfg.MongoURI)
	if err != nil {
		logger.Fatalw("mongodb connection failed", "error", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Errorw("mongodb disconnect failed", "error", err)
		}
	}()
	db := client.Database(cfg.MongoDB)

	userStore := store.NewMongoUserStore(db)
	bikeStore := store.NewMongoBikeStore(db)

	emailService := utils.NewEmailService(cfg)
	if !emailService.Enabled() {
		logger.Info("SMTP not configured, booking notifications disabled")
	}

	// Initialize controllers
	userController := controllers.NewUserController(userStore, cfg.UploadDir)
	cartController := controllers.NewCartController(userStore, bikeStore)
	bikeController := controllers.NewBikeController(bikeStore, userStore, emailService, cfg.UploadDir)
	adminController := controllers.NewAdminController(userStore, bikeStore)
	pdfController := controllers.NewPDFController(bikeStore, userStore, cfg.UploadDir)
	healthController := controllers.NewHealthController(time.Now())

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, cartController, bikeController,
		adminController, pdfController, healthController, cfg.UploadDir)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer limiter.Stop()

	handler := middleware.CORS(cfg.CORSOrigins,
		middleware.AccessLog(
			limiter.Middleware(router)))

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Infow("server starting", "addr", cfg.HTTPAddress())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server stopped", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	}
}
