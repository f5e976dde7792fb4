package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"agentledger/internal/domain"
	"agentledger/internal/notify"
	"agentledger/internal/store"
)

// casRetries bounds the balance write retry loop on version conflicts.
const casRetries = 3

// Processor commits transactions and admin balance overrides. It is
// stateless between calls; every operation takes its full input
// explicitly.
//
// Commit steps are individual store round-trips with no compensating
// rollback: a transaction record that was persisted stays persisted
// even if the balance write or a notification write fails afterwards.
// The error still propagates to the caller.
type Processor struct {
	store    store.Store
	notifier *notify.Notifier
}

func NewProcessor(s store.Store, n *notify.Notifier) *Processor {
	return &Processor{store: s, notifier: n}
}

// Process persists t, folds it into the owner's balances and emits the
// admin notifications. The caller must have assigned ID, date and
// timestamp. Returns the persisted transaction.
func (p *Processor) Process(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	// The owner must resolve before anything is written.
	if _, err := p.store.GetUser(ctx, t.UserID); err != nil {
		return nil, fmt.Errorf("resolve owner %s: %w", t.UserID, err)
	}

	// Step 1: the transaction record, verbatim and first. From here on
	// failures leave the record committed (accepted inconsistency window).
	if err := p.store.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	user, err := p.applyBalances(ctx, t)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"transaction_id": t.ID,
			"user_id":        t.UserID,
			"type":           t.Type,
			"error":          err.Error(),
		}).Error("balance update failed after transaction persist")
		return nil, err
	}

	if err := p.notifier.NewTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("notify admin: %w", err)
	}
	if user.CashAtHand < LowBalanceThreshold {
		if err := p.notifier.LowBalance(ctx, user); err != nil {
			return nil, fmt.Errorf("notify low balance: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": t.ID,
		"user_id":        t.UserID,
		"type":           t.Type,
		"amount":         t.Amount,
		"charge":         t.Charge,
		"cash_at_hand":   user.CashAtHand,
		"cash_in_bank":   user.CashInBank,
	}).Info("transaction committed")
	return t, nil
}

// applyBalances reads the owner, computes new balances and writes them
// conditionally on the version read. Same-user writers racing here lose
// the compare-and-set and retry from a fresh read.
func (p *Processor) applyBalances(ctx context.Context, t *domain.Transaction) (*domain.User, error) {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		user, err := p.store.GetUser(ctx, t.UserID)
		if err != nil {
			return nil, fmt.Errorf("load balances: %w", err)
		}
		newCashAtHand, newCashInBank := Apply(user.CashAtHand, user.CashInBank, *t)
		err = p.store.CompareAndSetBalances(ctx, user.ID, newCashAtHand, newCashInBank, user.Version)
		if err == nil {
			user.CashAtHand = newCashAtHand
			user.CashInBank = newCashInBank
			user.Version++
			return user, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, fmt.Errorf("persist balances: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("persist balances: %w", lastErr)
}

// Override sets a user's balances directly, bypassing the calculator.
// Subsequent transactions fold forward from these values. The new
// values are not validated; negative balances are allowed. Emits one
// notification addressed to the worker, never to the admin broadcast.
func (p *Processor) Override(ctx context.Context, userID string, cashAtHand, cashInBank int64) (*domain.User, error) {
	if err := p.store.SetUserBalances(ctx, userID, cashAtHand, cashInBank); err != nil {
		return nil, fmt.Errorf("override balances: %w", err)
	}
	if err := p.notifier.BalanceUpdated(ctx, userID, cashAtHand, cashInBank); err != nil {
		return nil, fmt.Errorf("notify worker: %w", err)
	}
	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":      userID,
		"cash_at_hand": cashAtHand,
		"cash_in_bank": cashInBank,
	}).Info("balances overridden by admin")
	return user, nil
}
