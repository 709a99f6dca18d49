package notification

import (
	"gorm.io/gorm"
)

// Notification is the persisted copy of a push event, written by the
// background consumer once the event is taken off the queue.
type Notification struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	Title    string `gorm:"type:varchar(100);not null" json:"title"`
	Body     string `gorm:"type:varchar(500)" json:"body"`
	DeepLink string `gorm:"type:varchar(255)" json:"deep_link"`
	Read     bool   `gorm:"not null;default:false" json:"read"`
}

// Event is the wire payload published to the push.dispatch queue.
type Event struct {
	UserID   uint   `json:"user_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	DeepLink string `json:"deep_link,omitempty"`
}
