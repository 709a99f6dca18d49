package points

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) PointsRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Wallet{}, &PointTransaction{}, &ChargeRequest{}))
	return NewGormPointsRepository(db)
}

func TestApplyMaintainsBalanceChain(t *testing.T) {
	repo := newTestRepo(t)
	const userID = 1

	first, err := repo.Apply(userID, 10000, TransactionCharge, "충전", nil)
	require.NoError(t, err)
	require.Equal(t, 10000, first.BalanceAfter)

	second, err := repo.Apply(userID, -3000, TransactionUse, "참가비 차감", nil)
	require.NoError(t, err)
	require.Equal(t, -3000, second.Amount)
	require.Equal(t, first.BalanceAfter+second.Amount, second.BalanceAfter)

	third, err := repo.Apply(userID, 1500, TransactionRefund, "환불 (50%)", nil)
	require.NoError(t, err)
	require.Equal(t, second.BalanceAfter+third.Amount, third.BalanceAfter)

	balance, err := repo.Balance(userID)
	require.NoError(t, err)
	require.Equal(t, 8500, balance)
	require.Equal(t, third.BalanceAfter, balance)
}

func TestApplyRejectsOverdraft(t *testing.T) {
	repo := newTestRepo(t)
	const userID = 7

	_, err := repo.Apply(userID, 1000, TransactionCharge, "충전", nil)
	require.NoError(t, err)

	_, err = repo.Apply(userID, -1001, TransactionUse, "참가비 차감", nil)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	// The failed attempt left neither a ledger entry nor a balance change.
	balance, err := repo.Balance(userID)
	require.NoError(t, err)
	require.Equal(t, 1000, balance)

	entries, total, err := repo.ListTransactions(userID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
}

func TestApplyZeroDeltaWritesNothing(t *testing.T) {
	repo := newTestRepo(t)
	const userID = 3

	entry, err := repo.Apply(userID, 0, TransactionUse, "무료 참가", nil)
	require.NoError(t, err)
	require.Nil(t, entry)

	_, total, err := repo.ListTransactions(userID, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	const userID = 5

	for i := 1; i <= 5; i++ {
		_, err := repo.Apply(userID, i*100, TransactionCharge, fmt.Sprintf("충전 %d", i), nil)
		require.NoError(t, err)
	}

	entries, total, err := repo.ListTransactions(userID, 1, 3)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, entries, 3)
	require.Equal(t, 500, entries[0].Amount)
	require.Equal(t, 300, entries[2].Amount)
}

func TestChargeRequestLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	req := &ChargeRequest{UserID: 2, Amount: 50000, DepositorName: "김민수", Status: ChargeRequestPending}
	require.NoError(t, repo.CreateChargeRequest(req))

	pending, err := repo.ListChargeRequestsByStatus(ChargeRequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Confirm credits the wallet inside one transaction.
	err = repo.WithTransaction(func(txRepo PointsRepository) error {
		got, err := txRepo.GetChargeRequest(req.ID)
		if err != nil {
			return err
		}
		got.Status = ChargeRequestConfirmed
		if err := txRepo.UpdateChargeRequest(got); err != nil {
			return err
		}
		refID := got.ID
		_, err = txRepo.Apply(got.UserID, got.Amount, TransactionCharge, "포인트 충전", &refID)
		return err
	})
	require.NoError(t, err)

	balance, err := repo.Balance(2)
	require.NoError(t, err)
	require.Equal(t, 50000, balance)

	_, err = repo.GetChargeRequest(9999)
	require.ErrorIs(t, err, ErrChargeRequestNotFound)
}
