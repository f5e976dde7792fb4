package domain

// User roles
const (
	RoleAdmin  = "ADMIN"  // Supervisory role, exactly one exists
	RoleWorker = "WORKER" // Field cash agent
)

// User Model
type User struct {
	ID                  string `gorm:"primaryKey;size:64" json:"id"`                // Caller-generated key
	FullName            string `gorm:"not null" json:"fullName"`                    // Display name
	Address             string `json:"address"`                                     // Home address
	PhoneNumber         string `gorm:"uniqueIndex;size:20" json:"phoneNumber"`      // Login identity (+234 format)
	GuardianPhoneNumber string `gorm:"size:20" json:"guardianPhoneNumber"`          // Next of kin contact
	PIN                 string `gorm:"column:pin;size:4;not null" json:"-"`         // 4-digit credential, stored cleartext
	Role                string `gorm:"size:10;not null;default:WORKER" json:"role"` // ADMIN or WORKER
	CashAtHand          int64  `gorm:"not null;default:0" json:"cashAtHand"`        // Physical cash balance, may go negative
	CashInBank          int64  `gorm:"not null;default:0" json:"cashInBank"`        // Linked bank balance, may go negative
	Version             int64  `gorm:"not null;default:0" json:"-"`                 // Bumped on every balance write
	CreatedAt           string `gorm:"size:40" json:"createdAt"`                    // RFC3339
}
