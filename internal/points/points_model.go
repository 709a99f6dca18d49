package points

import (
	"gorm.io/gorm"
)

// TransactionType classifies ledger entries. The sign of the amount is
// carried by the entry itself; the type records intent.
type TransactionType string

const (
	TransactionCharge          TransactionType = "charge"
	TransactionUse             TransactionType = "use"
	TransactionRefund          TransactionType = "refund"
	TransactionAdminAdjustment TransactionType = "admin_adjustment"
)

type ChargeRequestStatus string

const (
	ChargeRequestPending   ChargeRequestStatus = "pending"
	ChargeRequestConfirmed ChargeRequestStatus = "confirmed"
	ChargeRequestRejected  ChargeRequestStatus = "rejected"
)

// Wallet caches the current balance per user. The ledger is the source
// of truth; the wallet row only ever changes together with a new
// PointTransaction in the same transaction.
type Wallet struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	Points int  `gorm:"not null;default:0" json:"points"`
}

// PointTransaction is an append-only ledger entry. Amount is signed:
// positive for charge/refund, negative for use. BalanceAfter snapshots
// the wallet balance at commit time, so the chain
// balance_after[n] == balance_after[n-1] + amount[n] always holds.
type PointTransaction struct {
	gorm.Model
	UserID       uint            `gorm:"index;not null" json:"user_id"`
	Type         TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Amount       int             `gorm:"not null" json:"amount"`
	BalanceAfter int             `gorm:"not null" json:"balance_after"`
	Description  string          `gorm:"type:varchar(255)" json:"description"`
	ReferenceID  *uint           `gorm:"index" json:"reference_id,omitempty"`
}

// ChargeRequest records a user's claim of a completed bank transfer.
// Admins confirm (crediting the wallet) or reject it.
type ChargeRequest struct {
	gorm.Model
	UserID        uint                `gorm:"index;not null" json:"user_id"`
	Amount        int                 `gorm:"not null" json:"amount"`
	DepositorName string              `gorm:"type:varchar(50);not null" json:"depositor_name"`
	Status        ChargeRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ConfirmedBy   *uint               `json:"confirmed_by,omitempty"`
}

type ChargeRequestInput struct {
	Amount        int    `json:"amount" binding:"required,gt=0"`
	DepositorName string `json:"depositor_name" binding:"required,max=50"`
}

type AdjustInput struct {
	UserID uint   `json:"user_id" binding:"required"`
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}

type WalletResponse struct {
	UserID uint `json:"user_id"`
	Points int  `json:"points"`
}
