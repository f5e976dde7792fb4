package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"agentledger/internal/config"
	"agentledger/internal/db"
	"agentledger/internal/store"
)

// Creates the schema and seeds the default admin.
func main() {
	cfg := config.LoadConfig()

	db.Migrate(cfg.DSN())

	gdb, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.EnsureAdmin(context.Background(), store.NewGorm(gdb)); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
}
