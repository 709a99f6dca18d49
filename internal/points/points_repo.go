package points

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientPoints    = errors.New("insufficient points")
	ErrChargeRequestNotFound = errors.New("charge request not found")
	ErrChargeRequestHandled  = errors.New("charge request already handled")
)

type PointsRepository interface {
	EnsureWallet(userID uint) error
	Balance(userID uint) (int, error)
	// Apply is the single mutation path for wallet balances. It appends a
	// ledger entry and writes the new cached balance in the same
	// transaction the repository is bound to.
	Apply(userID uint, delta int, txType TransactionType, description string, referenceID *uint) (*PointTransaction, error)
	ListTransactions(userID uint, page, pageSize int) ([]PointTransaction, int64, error)

	CreateChargeRequest(req *ChargeRequest) error
	GetChargeRequest(id uint) (*ChargeRequest, error)
	ListChargeRequestsByUser(userID uint) ([]ChargeRequest, error)
	ListChargeRequestsByStatus(status ChargeRequestStatus) ([]ChargeRequest, error)
	UpdateChargeRequest(req *ChargeRequest) error

	WithTransaction(fn func(repo PointsRepository) error) error
}

type gormPointsRepository struct {
	db *gorm.DB
}

func NewGormPointsRepository(db *gorm.DB) PointsRepository {
	return &gormPointsRepository{db: db}
}

func (r *gormPointsRepository) WithTransaction(fn func(repo PointsRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormPointsRepository{db: tx})
	})
}

func (r *gormPointsRepository) EnsureWallet(userID uint) error {
	var w Wallet
	return r.db.Where(Wallet{UserID: userID}).FirstOrCreate(&w).Error
}

func (r *gormPointsRepository) Balance(userID uint) (int, error) {
	var w Wallet
	if err := r.db.Where(Wallet{UserID: userID}).FirstOrCreate(&w).Error; err != nil {
		return 0, err
	}
	return w.Points, nil
}

// lockedWallet loads the user's wallet row, creating it on first use.
// Under postgres the row is locked FOR UPDATE so concurrent Apply calls
// serialize on it; sqlite serializes whole transactions anyway.
func (r *gormPointsRepository) lockedWallet(userID uint) (*Wallet, error) {
	var w Wallet
	if err := r.db.Where(Wallet{UserID: userID}).FirstOrCreate(&w).Error; err != nil {
		return nil, err
	}

	q := r.db
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&w, w.ID).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *gormPointsRepository) Apply(userID uint, delta int, txType TransactionType, description string, referenceID *uint) (*PointTransaction, error) {
	if delta == 0 {
		return nil, nil
	}

	w, err := r.lockedWallet(userID)
	if err != nil {
		return nil, err
	}

	newBalance := w.Points + delta
	if newBalance < 0 {
		return nil, fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientPoints, w.Points, -delta)
	}

	entry := PointTransaction{
		UserID:       userID,
		Type:         txType,
		Amount:       delta,
		BalanceAfter: newBalance,
		Description:  description,
		ReferenceID:  referenceID,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(w).Update("points", newBalance).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *gormPointsRepository) ListTransactions(userID uint, page, pageSize int) ([]PointTransaction, int64, error) {
	var total int64
	if err := r.db.Model(&PointTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []PointTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *gormPointsRepository) CreateChargeRequest(req *ChargeRequest) error {
	return r.db.Create(req).Error
}

func (r *gormPointsRepository) GetChargeRequest(id uint) (*ChargeRequest, error) {
	var req ChargeRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChargeRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *gormPointsRepository) ListChargeRequestsByUser(userID uint) ([]ChargeRequest, error) {
	var reqs []ChargeRequest
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *gormPointsRepository) ListChargeRequestsByStatus(status ChargeRequestStatus) ([]ChargeRequest, error) {
	var reqs []ChargeRequest
	err := r.db.Where("status = ?", status).Order("created_at ASC").Find(&reqs).Error
	return reqs, err
}

func (r *gormPointsRepository) UpdateChargeRequest(req *ChargeRequest) error {
	return r.db.Save(req).Error
}
