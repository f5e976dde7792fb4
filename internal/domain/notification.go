package domain

// RecipientAdmin is the broadcast target for admin-facing notifications.
// A notification is addressed either to this literal or to one worker's
// user ID, never both.
const RecipientAdmin = "ADMIN"

// Notification Model
type Notification struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`          // Caller-generated key
	RecipientID string `gorm:"index;size:64;not null" json:"recipientId"` // "ADMIN" or a worker user ID
	Title       string `gorm:"not null" json:"title"`
	Message     string `json:"message"`
	Read        bool   `gorm:"not null;default:false" json:"read"` // false -> true only, never reverts
	CreatedAt   string `gorm:"size:40" json:"createdAt"`           // RFC3339
}
