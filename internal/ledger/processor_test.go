package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentledger/internal/domain"
	"agentledger/internal/notify"
	"agentledger/internal/store"
)

func newTestProcessor(s store.Store) *Processor {
	return NewProcessor(s, notify.NewNotifier(s))
}

func seedWorker(t *testing.T, s store.Store, id string, cashAtHand, cashInBank int64) *domain.User {
	t.Helper()
	u := domain.User{
		ID:          id,
		FullName:    "Ada Obi",
		PhoneNumber: "+2348012345678",
		PIN:         "0000",
		Role:        domain.RoleWorker,
		CashAtHand:  cashAtHand,
		CashInBank:  cashInBank,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	require.NoError(t, s.PutUser(context.Background(), &u))
	return &u
}

func makeTx(userID string, txType domain.TransactionType, amount, charge float64, seq int) *domain.Transaction {
	return &domain.Transaction{
		ID:        fmt.Sprintf("tx-%s-%d", userID, seq),
		UserID:    userID,
		UserName:  "Ada Obi",
		Date:      time.Now().Format("2006-01-02"),
		Type:      txType,
		Amount:    amount,
		Charge:    charge,
		Timestamp: time.Now().UnixMilli() + int64(seq),
	}
}

func TestProcessPersistsAndFoldsBalances(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	proc := newTestProcessor(mem)
	seedWorker(t, mem, "w1", 0, 0)

	seq := []*domain.Transaction{
		makeTx("w1", domain.TypeTransfer, 5000, 100, 0),
		makeTx("w1", domain.TypeWithdrawal, 3000, 0, 1),
		makeTx("w1", domain.TypeAirtime, 1000, 0, 2),
		makeTx("w1", domain.TypeWithdrawAndTransfer, 7777, 99, 3),
	}

	var wantHand, wantBank int64
	for _, tx := range seq {
		committed, err := proc.Process(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, tx.ID, committed.ID)
		wantHand, wantBank = Apply(wantHand, wantBank, *tx)
	}

	user, err := mem.GetUser(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, wantHand, user.CashAtHand)
	assert.Equal(t, wantBank, user.CashInBank)

	txs, err := mem.ListTransactionsByUser(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, txs, len(seq))
}

func TestProcessUnknownUserWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	proc := newTestProcessor(mem)

	_, err := proc.Process(ctx, makeTx("ghost", domain.TypeTransfer, 100, 0, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)

	txs, err := mem.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
	notifs, err := mem.ListNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestProcessNotificationCounts(t *testing.T) {
	ctx := context.Background()

	t.Run("above threshold emits exactly one admin notification", func(t *testing.T) {
		mem := store.NewMemory()
		proc := newTestProcessor(mem)
		seedWorker(t, mem, "w1", 50000, 50000)

		_, err := proc.Process(ctx, makeTx("w1", domain.TypeAirtime, 1000, 0, 0))
		require.NoError(t, err)

		notifs, err := mem.ListNotificationsByRecipient(ctx, domain.RecipientAdmin)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, "New Transaction", notifs[0].Title)
		assert.False(t, notifs[0].Read)
	})

	t.Run("below threshold emits new-transaction plus low-balance", func(t *testing.T) {
		mem := store.NewMemory()
		proc := newTestProcessor(mem)
		seedWorker(t, mem, "w1", 12000, 50000)

		// 12000 - 5000 = 7000, under the 10000 threshold.
		_, err := proc.Process(ctx, makeTx("w1", domain.TypeWithdrawal, 5000, 0, 0))
		require.NoError(t, err)

		notifs, err := mem.ListNotificationsByRecipient(ctx, domain.RecipientAdmin)
		require.NoError(t, err)
		require.Len(t, notifs, 2)
		titles := []string{notifs[0].Title, notifs[1].Title}
		assert.Contains(t, titles, "New Transaction")
		assert.Contains(t, titles, "Low Balance Alert")
	})

	t.Run("landing exactly on threshold is not low", func(t *testing.T) {
		mem := store.NewMemory()
		proc := newTestProcessor(mem)
		seedWorker(t, mem, "w1", 15000, 50000)

		_, err := proc.Process(ctx, makeTx("w1", domain.TypeWithdrawal, 5000, 0, 0))
		require.NoError(t, err)

		notifs, err := mem.ListNotificationsByRecipient(ctx, domain.RecipientAdmin)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
	})
}

func TestOverrideResetsFoldStartingPoint(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	proc := newTestProcessor(mem)
	seedWorker(t, mem, "w1", 0, 0)

	_, err := proc.Process(ctx, makeTx("w1", domain.TypeTransfer, 5000, 100, 0))
	require.NoError(t, err)

	user, err := proc.Override(ctx, "w1", 100000, 200000)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), user.CashAtHand)
	assert.Equal(t, int64(200000), user.CashInBank)

	// Subsequent transactions fold forward from the override values.
	_, err = proc.Process(ctx, makeTx("w1", domain.TypeWithdrawal, 3000, 0, 1))
	require.NoError(t, err)

	user, err = mem.GetUser(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(97000), user.CashAtHand)
	assert.Equal(t, int64(203000), user.CashInBank)
}

func TestOverrideNotifiesWorkerOnly(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	proc := newTestProcessor(mem)
	seedWorker(t, mem, "w1", 0, 0)

	_, err := proc.Override(ctx, "w1", -500, 1000)
	require.NoError(t, err)

	workerNotifs, err := mem.ListNotificationsByRecipient(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, workerNotifs, 1)
	assert.Equal(t, "Balance Updated", workerNotifs[0].Title)

	adminNotifs, err := mem.ListNotificationsByRecipient(ctx, domain.RecipientAdmin)
	require.NoError(t, err)
	assert.Empty(t, adminNotifs)
}

func TestOverrideUnknownUser(t *testing.T) {
	ctx := context.Background()
	proc := newTestProcessor(store.NewMemory())

	_, err := proc.Override(ctx, "ghost", 0, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// balanceWriteFailStore fails every conditional balance write, so the
// transaction record commits but the balance step cannot.
type balanceWriteFailStore struct {
	store.Store
}

var errDown = errors.New("store unavailable")

func (s *balanceWriteFailStore) CompareAndSetBalances(context.Context, string, int64, int64, int64) error {
	return errDown
}

func TestProcessBalanceFailureLeavesTransactionCommitted(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedWorker(t, mem, "w1", 20000, 20000)
	failing := &balanceWriteFailStore{Store: mem}
	proc := newTestProcessor(failing)

	_, err := proc.Process(ctx, makeTx("w1", domain.TypeTransfer, 5000, 100, 0))
	require.ErrorIs(t, err, errDown)

	// Accepted inconsistency window: the record stays, balances are
	// stale, no notifications were emitted.
	txs, err := mem.ListTransactionsByUser(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	user, err := mem.GetUser(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), user.CashAtHand)
	assert.Equal(t, int64(20000), user.CashInBank)

	notifs, err := mem.ListNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

// racingStore injects a competing balance write before the first
// conditional write, forcing one version conflict.
type racingStore struct {
	store.Store
	raced bool
}

func (s *racingStore) CompareAndSetBalances(ctx context.Context, id string, cashAtHand, cashInBank, expectedVersion int64) error {
	if !s.raced {
		s.raced = true
		// Concurrent writer sneaks in with the same starting balances.
		if err := s.Store.SetUserBalances(ctx, id, cashAtHand, cashInBank); err != nil {
			return err
		}
	}
	return s.Store.CompareAndSetBalances(ctx, id, cashAtHand, cashInBank, expectedVersion)
}

func TestProcessRetriesOnVersionConflict(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedWorker(t, mem, "w1", 0, 0)
	racing := &racingStore{Store: mem}
	proc := newTestProcessor(racing)

	_, err := proc.Process(ctx, makeTx("w1", domain.TypeAirtime, 1000, 0, 0))
	require.NoError(t, err)
	assert.True(t, racing.raced)

	user, err := mem.GetUser(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), user.CashAtHand) // injected write + retried fold
	assert.Equal(t, int64(-2000), user.CashInBank)
}
