package club

import (
	"gorm.io/gorm"
)

type MemberRole string

const (
	RoleOwner   MemberRole = "owner"
	RoleManager MemberRole = "manager"
	RoleMember  MemberRole = "member"
)

type MemberStatus string

const (
	StatusPending  MemberStatus = "pending"
	StatusApproved MemberStatus = "approved"
	StatusRejected MemberStatus = "rejected"
)

type Club struct {
	gorm.Model
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:varchar(500)" json:"description"`
	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`
}

// ClubMember ties a user to a club. Only approved members count as
// club members for the guest gate on regular matches.
type ClubMember struct {
	gorm.Model
	ClubID uint         `gorm:"uniqueIndex:idx_club_user;not null" json:"club_id"`
	UserID uint         `gorm:"uniqueIndex:idx_club_user;not null" json:"user_id"`
	Role   MemberRole   `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Status MemberStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}

type CreateClubRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=500"`
}
