package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-server/config"
	"marketplace-server/database"
	"marketplace-server/jobs"
	"marketplace-server/middleware"
	"marketplace-server/repository"
	"marketplace-server/routes"
	"marketplace-server/services"
	ws "marketplace-server/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	if cfg.Server.GinMode == "release" || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	if err := database.SeedDefaults(db, cfg.Admin); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	store := repository.NewStore(db)

	hub := ws.NewHub()
	go hub.Run()

	var sms services.SMSSender
	if cfg.SMSEnabled() {
		sms = services.NewTwilioSender(cfg.Twilio)
		log.Println("✅ Twilio SMS delivery enabled")
	} else {
		log.Println("⚠️ Twilio not configured, SMS notifications disabled")
	}

	images, err := services.NewImageStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize image storage:", err)
	}

	notifications := services.NewNotificationService(store, hub, sms)
	categories := services.NewCategoryService(store, images)
	reviews := services.NewReviewService(store)
	quotes := services.NewQuoteService(store, notifications, cfg.Jobs.DefaultQuoteValidity)
	complaints := services.NewComplaintService(store, notifications)

	limiter := middleware.NewRateLimiter()
	stopCleanup := make(chan struct{})
	middleware.StartLimiterCleanup(limiter, 5*time.Minute, stopCleanup)

	router := routes.SetupRouter(routes.Dependencies{
		Store:          store,
		Hub:            hub,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Auth:           services.NewAuthService(store),
		Users:          services.NewUserService(store),
		Categories:     categories,
		Employees:      services.NewEmployeeService(store),
		Reviews:        reviews,
		Quotes:         quotes,
		Chats:          services.NewChatService(store, hub, images),
		Notifications:  notifications,
		Complaints:     complaints,
		Admin:          services.NewAdminService(store, notifications),
	})

	expirationJob := jobs.NewExpirationJob(cfg.Jobs.QuoteExpirationSpec, quotes)
	if err := expirationJob.Start(); err != nil {
		log.Fatal("Failed to start quote expiration job:", err)
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	expirationJob.Stop()
	close(stopCleanup)
	hub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("✅ Server exited")
}
