package db

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"agentledger/internal/domain"
	"agentledger/internal/store"
)

// Migrate creates or updates the schema for the three collections.
func Migrate(dsn string) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.User{}, &domain.Transaction{}, &domain.Notification{}); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}

// EnsureAdmin creates the default admin record when no ADMIN-role user
// exists. Runs at startup and after a reset, so exactly one admin is
// guaranteed at all times.
func EnsureAdmin(ctx context.Context, s store.Store) error {
	admins, err := s.ListUsersByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}
	admin := domain.User{
		ID:          "admin-001",
		FullName:    "System Admin",
		Address:     "HQ",
		PhoneNumber: "+2340000000000",
		PIN:         "1234",
		Role:        domain.RoleAdmin,
		CashAtHand:  0,
		CashInBank:  0,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.PutUser(ctx, &admin); err != nil {
		return err
	}
	logrus.Info("Default admin created")
	return nil
}
