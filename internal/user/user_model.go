package user

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username  string `gorm:"unique" json:"username"`
	Email     string `gorm:"unique" json:"email"`
	Password  string `json:"-"`
	Name      string `json:"name"`
	Phone     string `gorm:"uniqueIndex;not null" json:"phone"`
	IsAdmin   bool   `gorm:"default:false" json:"is_admin"`
	PushToken string `json:"-"` // device token for push dispatch, empty when never registered
}

type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}
