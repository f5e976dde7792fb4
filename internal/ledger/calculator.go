// Package ledger holds the balance-mutation engine: the pure per-type
// balance arithmetic and the processor that sequences persistence and
// notification side effects around it.
package ledger

import (
	"math"

	"agentledger/internal/domain"
)

// LowBalanceThreshold is the cash-at-hand level below which a committed
// transaction raises a low-balance alert to the admin.
const LowBalanceThreshold = 10000

// Apply computes the post-transaction balances for one transaction.
// Pure: no I/O, no state. Amount and charge are rounded half away from
// zero to whole units before the arithmetic; the rule per type is:
//
//	Transfer:                 cashAtHand += amount, cashInBank -= amount + charge
//	Withdrawal:               cashAtHand -= amount, cashInBank += amount
//	Airtime/Data/Utilities:   cashAtHand += amount, cashInBank -= amount
//	Withdraw and Transfer:    no effect
//
// Any numeric input is accepted, including negative amounts and
// charges; sign validation is deliberately not performed here.
func Apply(cashAtHand, cashInBank int64, t domain.Transaction) (int64, int64) {
	amount := int64(math.Round(t.Amount))
	charge := int64(math.Round(t.Charge))

	switch t.Type {
	case domain.TypeTransfer:
		cashAtHand += amount
		cashInBank -= amount + charge
	case domain.TypeWithdrawal:
		cashAtHand -= amount
		cashInBank += amount
	case domain.TypeAirtime, domain.TypeData, domain.TypeUtilities:
		cashAtHand += amount
		cashInBank -= amount
	case domain.TypeWithdrawAndTransfer:
		// No balance effect.
	}
	return cashAtHand, cashInBank
}
