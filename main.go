package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/PerezChris99/University-Library-RESTful-API/docs"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/books"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/borrowings"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/auth"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/db"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/mailer"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/reservations"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/users"
)

// @title Library Management API
// @version 1.0
// @description REST backend for books, users, borrowings and reservations.
// @BasePath /api/v1
func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		log.Fatal("config mode must be dev or release")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret (or JWT_SECRET) is required")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	tokens := auth.NewTokenIssuer(
		[]byte(cfg.Auth.JWTSecret),
		time.Duration(cfg.Auth.TokenExpiryHours)*time.Hour,
	)

	var mail mailer.Mailer
	if mode == "release" && cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		mail = mailer.LogMailer{}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	requireAuth := auth.RequireAuth([]byte(cfg.Auth.JWTSecret))
	requireElevated := auth.RequireElevated()

	api := r.Group("/api/v1")
	books.RegisterRoutes(api, books.NewService(conn), requireAuth, requireElevated)
	users.RegisterRoutes(api, users.NewService(conn, tokens, mail), requireAuth, requireElevated)
	borrowings.RegisterRoutes(api, borrowings.NewService(conn, cfg.Lending), requireAuth, requireElevated)
	reservations.RegisterRoutes(api, reservations.NewService(conn, cfg.Lending), requireAuth, requireElevated)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
