// Package store defines the persistence interface for the three record
// collections (users, transactions, notifications) and its error
// taxonomy. Implementations: gorm.go (MySQL) and memory.go (in-memory,
// used by tests).
package store

import (
	"context"
	"errors"

	"agentledger/internal/domain"
)

var (
	// ErrNotFound means a referenced record identifier does not resolve.
	// Surfaced to the caller, never retried.
	ErrNotFound = errors.New("record not found")

	// ErrAccessDenied means the backing store rejected the operation at
	// the permission level. Non-retryable, requires operator intervention.
	ErrAccessDenied = errors.New("store access denied")

	// ErrVersionConflict means a conditional balance write lost a race
	// with a concurrent writer. Callers may retry with a fresh read.
	ErrVersionConflict = errors.New("balance version conflict")
)

// Store is the interface the core operates against. Reads return copies;
// list results carry no ordering guarantee, callers sort after retrieval.
//
// Each method is a single store round-trip. There is no multi-method
// transaction: a sequence of calls is not atomic as a group.
type Store interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]domain.User, error)
	PutUser(ctx context.Context, u *domain.User) error

	// SetUserBalances overwrites both balance fields unconditionally and
	// bumps the user's version. Used by the admin override.
	SetUserBalances(ctx context.Context, id string, cashAtHand, cashInBank int64) error

	// CompareAndSetBalances writes both balance fields only if the user's
	// version still equals expectedVersion, then bumps it. Returns
	// ErrVersionConflict when a concurrent writer got there first.
	CompareAndSetBalances(ctx context.Context, id string, cashAtHand, cashInBank, expectedVersion int64) error

	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error)

	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context) ([]domain.Notification, error)
	ListNotificationsByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// MarkNotificationsRead flips the read flag on every listed record in
	// one batch. The batch itself is all-or-nothing; it does not extend
	// atomicity across preceding reads.
	MarkNotificationsRead(ctx context.Context, ids []string) error

	// Reset destructively clears all three collections.
	Reset(ctx context.Context) error
}
