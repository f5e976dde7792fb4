package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"agentledger/internal/api"
	"agentledger/internal/config"
	"agentledger/internal/db"
	"agentledger/internal/ledger"
	"agentledger/internal/middleware"
	"agentledger/internal/notify"
	"agentledger/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	ledgerStore := store.NewGorm(gdb)

	// The single supervisory admin must exist before any request lands.
	if err := db.EnsureAdmin(context.Background(), ledgerStore); err != nil {
		logrus.Fatalf("failed to ensure admin exists: %v", err)
	}

	notifier := notify.NewNotifier(ledgerStore)
	processor := ledger.NewProcessor(ledgerStore, notifier)

	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/register", api.RegisterHandler(ledgerStore))
	r.POST("/login", api.LoginHandler(ledgerStore, cfg.JWTSecret))

	// Authenticated routes (worker and admin)
	authed := r.Group("/")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authed.GET("/me", api.MeHandler(ledgerStore, redisClient))
	authed.POST("/transactions", api.CreateTransactionHandler(ledgerStore, processor, redisClient))
	authed.GET("/transactions", api.ListMyTransactionsHandler(ledgerStore, redisClient))
	authed.GET("/notifications", api.ListNotificationsHandler(notifier, redisClient))
	authed.POST("/notifications/:id/read", api.MarkNotificationReadHandler(notifier, redisClient))
	authed.POST("/notifications/read-all", api.MarkAllNotificationsReadHandler(notifier, redisClient))

	// Admin routes
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(ledgerStore))
	adminGroup.GET("/users", api.ListUsersHandler(ledgerStore, redisClient))
	adminGroup.GET("/transactions", api.ListAllTransactionsHandler(ledgerStore, redisClient))
	adminGroup.PUT("/users/:id/balances", api.OverrideBalancesHandler(processor, redisClient))
	adminGroup.GET("/export", api.ExportHandler(ledgerStore))
	adminGroup.POST("/reset", api.ResetHandler(ledgerStore, redisClient))

	log.Println("Server running on " + cfg.AppPort)
	r.Run(":" + cfg.AppPort)
}
