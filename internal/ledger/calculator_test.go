package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agentledger/internal/domain"
)

func TestApplyRuleTable(t *testing.T) {
	tests := []struct {
		name           string
		cashAtHand     int64
		cashInBank     int64
		txType         domain.TransactionType
		amount         float64
		charge         float64
		wantCashAtHand int64
		wantCashInBank int64
	}{
		{
			name:       "transfer adds to hand and deducts amount plus charge from bank",
			cashAtHand: 20000, cashInBank: 50000,
			txType: domain.TypeTransfer, amount: 5000, charge: 100,
			wantCashAtHand: 25000, wantCashInBank: 44900,
		},
		{
			name:       "withdrawal moves cash from hand to bank",
			cashAtHand: 10000, cashInBank: 10000,
			txType: domain.TypeWithdrawal, amount: 3000,
			wantCashAtHand: 7000, wantCashInBank: 13000,
		},
		{
			name:       "airtime adds to hand and deducts from bank",
			cashAtHand: 10000, cashInBank: 10000,
			txType: domain.TypeAirtime, amount: 1000,
			wantCashAtHand: 11000, wantCashInBank: 9000,
		},
		{
			name:       "data behaves like airtime",
			cashAtHand: 10000, cashInBank: 10000,
			txType: domain.TypeData, amount: 1000,
			wantCashAtHand: 11000, wantCashInBank: 9000,
		},
		{
			name:       "utilities behaves like airtime",
			cashAtHand: 10000, cashInBank: 10000,
			txType: domain.TypeUtilities, amount: 1000,
			wantCashAtHand: 11000, wantCashInBank: 9000,
		},
		{
			name:       "withdraw and transfer leaves balances unchanged",
			cashAtHand: 12345, cashInBank: -678,
			txType: domain.TypeWithdrawAndTransfer, amount: 99999, charge: 500,
			wantCashAtHand: 12345, wantCashInBank: -678,
		},
		{
			name:       "charge ignored outside transfer",
			cashAtHand: 0, cashInBank: 0,
			txType: domain.TypeWithdrawal, amount: 100, charge: 50,
			wantCashAtHand: -100, wantCashInBank: 100,
		},
		{
			name:       "negative amount accepted and applied",
			cashAtHand: 1000, cashInBank: 1000,
			txType: domain.TypeTransfer, amount: -500, charge: 0,
			wantCashAtHand: 500, wantCashInBank: 1500,
		},
		{
			name:       "zero amount is a no-op for withdrawal",
			cashAtHand: 1000, cashInBank: 1000,
			txType: domain.TypeWithdrawal, amount: 0,
			wantCashAtHand: 1000, wantCashInBank: 1000,
		},
		{
			name:       "balances may go negative",
			cashAtHand: 100, cashInBank: 50,
			txType: domain.TypeWithdrawal, amount: 500,
			wantCashAtHand: -400, wantCashInBank: 550,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := domain.Transaction{Type: tt.txType, Amount: tt.amount, Charge: tt.charge}
			gotHand, gotBank := Apply(tt.cashAtHand, tt.cashInBank, tx)
			assert.Equal(t, tt.wantCashAtHand, gotHand)
			assert.Equal(t, tt.wantCashInBank, gotBank)
		})
	}
}

func TestApplyRoundsHalfAwayFromZero(t *testing.T) {
	tx := domain.Transaction{Type: domain.TypeTransfer, Amount: 2.5, Charge: 0.5}
	hand, bank := Apply(0, 0, tx)
	assert.Equal(t, int64(3), hand)
	assert.Equal(t, int64(-4), bank) // 3 + 1

	tx = domain.Transaction{Type: domain.TypeTransfer, Amount: -2.5, Charge: 0}
	hand, bank = Apply(0, 0, tx)
	assert.Equal(t, int64(-3), hand)
	assert.Equal(t, int64(3), bank)

	tx = domain.Transaction{Type: domain.TypeWithdrawal, Amount: 1000.4}
	hand, bank = Apply(0, 0, tx)
	assert.Equal(t, int64(-1000), hand)
	assert.Equal(t, int64(1000), bank)
}

func TestApplyIsPure(t *testing.T) {
	tx := domain.Transaction{Type: domain.TypeTransfer, Amount: 5000, Charge: 100}
	h1, b1 := Apply(20000, 50000, tx)
	h2, b2 := Apply(20000, 50000, tx)
	assert.Equal(t, h1, h2)
	assert.Equal(t, b1, b2)
}
