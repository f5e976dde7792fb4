// Package notify constructs notification records and serves role-scoped
// queries and read marking over them.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agentledger/internal/domain"
	"agentledger/internal/store"
)

// Notifier appends notification records and manages their read state.
// Stateless; every call takes its scope explicitly.
type Notifier struct {
	store store.Store
}

func NewNotifier(s store.Store) *Notifier {
	return &Notifier{store: s}
}

func (n *Notifier) emit(ctx context.Context, recipientID, title, message string) error {
	notif := domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Read:        false,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := n.store.CreateNotification(ctx, &notif); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"notification_id": notif.ID,
		"recipient_id":    recipientID,
		"title":           title,
	}).Debug("notification emitted")
	return nil
}

// NewTransaction broadcasts a committed transaction to the admin. The
// message carries the raw submitted amount, not the rounded one.
func (n *Notifier) NewTransaction(ctx context.Context, t *domain.Transaction) error {
	msg := fmt.Sprintf("%s logged a %s of ₦%s.", t.UserName, t.Type, formatAmount(t.Amount))
	return n.emit(ctx, domain.RecipientAdmin, "New Transaction", msg)
}

// LowBalance alerts the admin that a worker's cash-at-hand dropped
// below the threshold.
func (n *Notifier) LowBalance(ctx context.Context, u *domain.User) error {
	msg := fmt.Sprintf("%s's Cash at Hand is low (₦%d).", u.FullName, u.CashAtHand)
	return n.emit(ctx, domain.RecipientAdmin, "Low Balance Alert", msg)
}

// BalanceUpdated tells a worker the admin reset their balances.
func (n *Notifier) BalanceUpdated(ctx context.Context, userID string, cashAtHand, cashInBank int64) error {
	msg := fmt.Sprintf("Your balances have been updated by the admin. Cash at Hand: ₦%d, Cash in Bank: ₦%d", cashAtHand, cashInBank)
	return n.emit(ctx, userID, "Balance Updated", msg)
}

// List returns the notifications for one scope, newest first. The scope
// is either domain.RecipientAdmin (broadcast records only — workers'
// directed notifications are never included, even for an admin actor)
// or a worker's user ID (that worker's directed records only). Ordering
// is applied here; the store returns records unordered.
func (n *Notifier) List(ctx context.Context, scope string) ([]domain.Notification, error) {
	notifs, err := n.store.ListNotificationsByRecipient(ctx, scope)
	if err != nil {
		return nil, err
	}
	sort.Slice(notifs, func(i, j int) bool {
		return parseCreatedAt(notifs[i].CreatedAt).After(parseCreatedAt(notifs[j].CreatedAt))
	})
	return notifs, nil
}

// MarkRead flips one record's read flag. One-directional: there is no
// way to mark a notification unread again.
func (n *Notifier) MarkRead(ctx context.Context, id string) error {
	return n.store.MarkNotificationRead(ctx, id)
}

// MarkAllRead lists the scope and batch-flips every unread record in
// that snapshot. A notification created between the read and the write
// is left unread; the next poll picks it up.
func (n *Notifier) MarkAllRead(ctx context.Context, scope string) error {
	notifs, err := n.List(ctx, scope)
	if err != nil {
		return err
	}
	var ids []string
	for _, notif := range notifs {
		if !notif.Read {
			ids = append(ids, notif.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return n.store.MarkNotificationsRead(ctx, ids)
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// formatAmount renders a raw amount without a fixed decimal count, so
// whole-unit amounts print without a trailing ".00".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
