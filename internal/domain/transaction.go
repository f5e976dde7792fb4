package domain

// TransactionType is the closed set of cash movements a worker can log.
type TransactionType string

const (
	TypeTransfer            TransactionType = "Transfer"
	TypeWithdrawal          TransactionType = "Withdrawal"
	TypeAirtime             TransactionType = "Airtime"
	TypeUtilities           TransactionType = "Utilities"
	TypeData                TransactionType = "Data"
	TypeWithdrawAndTransfer TransactionType = "Withdraw and Transfer"
)

// Valid reports whether t is one of the six known variants.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeTransfer, TypeWithdrawal, TypeAirtime, TypeUtilities, TypeData, TypeWithdrawAndTransfer:
		return true
	}
	return false
}

// Transaction Model. Records are immutable after creation: no edit or
// delete path exists anywhere in the system.
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`    // Caller-generated key
	UserID      string          `gorm:"index;size:64;not null" json:"userId"`
	UserName    string          `json:"userName"`                        // Denormalized at creation, never re-synced
	Date        string          `gorm:"size:10" json:"date"`             // YYYY-MM-DD, always "today"
	Type        TransactionType `gorm:"size:30;not null" json:"type"`
	Amount      float64         `json:"amount"`                          // Raw value as submitted
	Charge      float64         `json:"charge"`                          // Raw value as submitted
	Description string          `json:"description,omitempty"`
	Timestamp   int64           `gorm:"autoCreateTime:milli;index" json:"timestamp"` // Sort key, unix millis
}
