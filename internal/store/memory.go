package store

import (
	"context"
	"sync"

	"agentledger/internal/domain"
)

// Memory is an in-memory Store for tests and local development. It
// honors the same contracts as the MySQL implementation, including the
// version counter on balance writes.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	transactions  map[string]domain.Transaction
	notifications map[string]domain.Notification
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]domain.User),
		transactions:  make(map[string]domain.Transaction),
		notifications: make(map[string]domain.Notification),
	}
}

func (m *Memory) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) FindUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *Memory) ListUsersByRole(_ context.Context, role string) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []domain.User
	for _, u := range m.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *Memory) PutUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) SetUserBalances(_ context.Context, id string, cashAtHand, cashInBank int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.CashAtHand = cashAtHand
	u.CashInBank = cashInBank
	u.Version++
	m.users[id] = u
	return nil
}

func (m *Memory) CompareAndSetBalances(_ context.Context, id string, cashAtHand, cashInBank, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.Version != expectedVersion {
		return ErrVersionConflict
	}
	u.CashAtHand = cashAtHand
	u.CashInBank = cashInBank
	u.Version = expectedVersion + 1
	m.users[id] = u
	return nil
}

func (m *Memory) CreateTransaction(_ context.Context, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = *t
	return nil
}

func (m *Memory) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := make([]domain.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		txs = append(txs, t)
	}
	return txs, nil
}

func (m *Memory) ListTransactionsByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []domain.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

func (m *Memory) CreateNotification(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = *n
	return nil
}

func (m *Memory) ListNotifications(_ context.Context) ([]domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	notifs := make([]domain.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		notifs = append(notifs, n)
	}
	return notifs, nil
}

func (m *Memory) ListNotificationsByRecipient(_ context.Context, recipientID string) ([]domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var notifs []domain.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			notifs = append(notifs, n)
		}
	}
	return notifs, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}

func (m *Memory) MarkNotificationsRead(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if n, ok := m.notifications[id]; ok {
			n.Read = true
			m.notifications[id] = n
		}
	}
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]domain.User)
	m.transactions = make(map[string]domain.Transaction)
	m.notifications = make(map[string]domain.Notification)
	return nil
}
