package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"agentledger/internal/domain"
)

// MySQL access-denied error numbers (database, credentials, table).
var accessDeniedCodes = map[uint16]bool{1044: true, 1045: true, 1142: true}

// Gorm is the MySQL-backed Store.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// wrapErr maps driver-level failures onto the store error taxonomy.
// Anything unrecognized passes through as a transient failure.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && accessDeniedCodes[me.Number] {
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return err
}

func (s *Gorm) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (s *Gorm) FindUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, "phone_number = ?", phone).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (s *Gorm) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (s *Gorm) ListUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (s *Gorm) PutUser(ctx context.Context, u *domain.User) error {
	return wrapErr(s.db.WithContext(ctx).Save(u).Error)
}

func (s *Gorm) SetUserBalances(ctx context.Context, id string, cashAtHand, cashInBank int64) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"cash_at_hand": cashAtHand,
		"cash_in_bank": cashInBank,
		"version":      gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) CompareAndSetBalances(ctx context.Context, id string, cashAtHand, cashInBank, expectedVersion int64) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"cash_at_hand": cashAtHand,
			"cash_in_bank": cashInBank,
			"version":      expectedVersion + 1,
		})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing row from a stale version.
		var count int64
		if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return wrapErr(err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *Gorm) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	return wrapErr(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Gorm) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := s.db.WithContext(ctx).Find(&txs).Error; err != nil {
		return nil, wrapErr(err)
	}
	return txs, nil
}

func (s *Gorm) ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&txs).Error; err != nil {
		return nil, wrapErr(err)
	}
	return txs, nil
}

func (s *Gorm) CreateNotification(ctx context.Context, n *domain.Notification) error {
	return wrapErr(s.db.WithContext(ctx).Create(n).Error)
}

func (s *Gorm) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var notifs []domain.Notification
	if err := s.db.WithContext(ctx).Find(&notifs).Error; err != nil {
		return nil, wrapErr(err)
	}
	return notifs, nil
}

func (s *Gorm) ListNotificationsByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	var notifs []domain.Notification
	if err := s.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Find(&notifs).Error; err != nil {
		return nil, wrapErr(err)
	}
	return notifs, nil
}

func (s *Gorm) MarkNotificationRead(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) MarkNotificationsRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return wrapErr(s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id IN ?", ids).Update("read", true).Error)
}

func (s *Gorm) Reset(ctx context.Context) error {
	return wrapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&domain.User{}).Error
	}))
}
