package match

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/hyunwoo-p/rinkmate/internal/club"
	"github.com/hyunwoo-p/rinkmate/internal/points"
	"github.com/hyunwoo-p/rinkmate/internal/user"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Per-test in-memory database to avoid cross-test interference.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&club.Club{}, &club.ClubMember{},
		&Match{}, &Participant{}, &RefundRule{},
		&points.Wallet{}, &points.PointTransaction{},
	))
	return db
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []fakeSend
}

type fakeSend struct {
	UserID uint
	Title  string
	Body   string
}

func (f *fakeNotifier) Send(userID uint, title, body, deepLink string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, fakeSend{UserID: userID, Title: title, Body: body})
}

func (f *fakeNotifier) sentTo(userID uint) []fakeSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeSend
	for _, s := range f.sends {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	engine   *Engine
	repo     MatchRepository
	ledger   points.PointsRepository
	notifier *fakeNotifier
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	engine := NewEngine(db, notifier, nil, nil)

	env := &testEnv{
		db:       db,
		engine:   engine,
		repo:     NewGormMatchRepository(db),
		ledger:   points.NewGormPointsRepository(db),
		notifier: notifier,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	engine.now = func() time.Time { return env.now }
	return env
}

func (env *testEnv) createUser(t *testing.T, balance int) uint {
	t.Helper()
	u := user.User{
		Username: fmt.Sprintf("user%d", time.Now().UnixNano()),
		Email:    fmt.Sprintf("u%d@test.local", time.Now().UnixNano()),
		Name:     "tester",
		Phone:    fmt.Sprintf("010-%d", time.Now().UnixNano()%100000000),
	}
	require.NoError(t, env.db.Create(&u).Error)
	if balance > 0 {
		_, err := env.ledger.Apply(u.ID, balance, points.TransactionCharge, "초기 충전", nil)
		require.NoError(t, err)
	} else {
		require.NoError(t, env.ledger.EnsureWallet(u.ID))
	}
	return u.ID
}

func (env *testEnv) createMatch(t *testing.T, mutate func(*Match)) *Match {
	t.Helper()
	m := &Match{
		Title:           "수요일 픽업 하키",
		StartTime:       env.now.Add(72 * time.Hour),
		Status:          MatchOpen,
		Category:        CategoryOpenHockey,
		EntryPoints:     10000,
		MaxSkaters:      10,
		MaxGoalies:      2,
		CreatedByUserID: 999,
	}
	if mutate != nil {
		mutate(m)
	}
	require.NoError(t, env.repo.CreateMatch(m))
	return m
}

func (env *testEnv) seedRules(t *testing.T, rules ...RefundRule) {
	t.Helper()
	require.NoError(t, env.db.Create(&rules).Error)
}

func (env *testEnv) balance(t *testing.T, userID uint) int {
	t.Helper()
	b, err := env.ledger.Balance(userID)
	require.NoError(t, err)
	return b
}

func (env *testEnv) transactions(t *testing.T, userID uint) []points.PointTransaction {
	t.Helper()
	var entries []points.PointTransaction
	require.NoError(t, env.db.Where("user_id = ?", userID).Order("id ASC").Find(&entries).Error)
	return entries
}

func TestJoinConfirmedDeductsFee(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t, 20000)
	m := env.createMatch(t, nil)

	result, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.NoError(t, err)
	require.Equal(t, ParticipantConfirmed, result.Status)
	require.True(t, result.Participant.PaymentStatus)

	require.Equal(t, 10000, env.balance(t, userID))

	entries := env.transactions(t, userID)
	require.Len(t, entries, 2) // initial charge + fee
	last := entries[len(entries)-1]
	require.Equal(t, points.TransactionUse, last.Type)
	require.Equal(t, -10000, last.Amount)
	require.Equal(t, 10000, last.BalanceAfter)
	require.NotNil(t, last.ReferenceID)
	require.Equal(t, m.ID, *last.ReferenceID)

	// Joiner confirmed and creator notified.
	require.NotEmpty(t, env.notifier.sentTo(userID))
	require.NotEmpty(t, env.notifier.sentTo(m.CreatedByUserID))
}

func TestJoinInsufficientBalanceBecomesPending(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t, 5000)
	m := env.createMatch(t, nil)

	result, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.NoError(t, err)
	require.Equal(t, ParticipantPendingPayment, result.Status)
	require.False(t, result.Participant.PaymentStatus)

	// No deduction and no ledger entry beyond the initial charge.
	require.Equal(t, 5000, env.balance(t, userID))
	require.Len(t, env.transactions(t, userID), 1)
}

func TestGoalieFreeJoinConfirmsWithoutDeduction(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t, 0)
	m := env.createMatch(t, func(m *Match) { m.GoalieFree = true })

	result, err := env.engine.Join(m.ID, userID, PositionGoalie, false)
	require.NoError(t, err)
	require.Equal(t, ParticipantConfirmed, result.Status)

	require.Equal(t, 0, env.balance(t, userID))
	require.Empty(t, env.transactions(t, userID))
}

func TestJoinRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t, 50000)
	m := env.createMatch(t, nil)

	_, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.NoError(t, err)

	_, err = env.engine.Join(m.ID, userID, PositionDefense, false)
	require.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = env.engine.JoinWaitlist(m.ID, userID, PositionForward)
	require.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestJoinRejectsClosedAndMissingMatch(t *testing.T) {
	env := newTestEnv(t)
	userID := env.createUser(t, 50000)
	m := env.createMatch(t, func(m *Match) { m.Status = MatchClosed })

	_, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.ErrorIs(t, err, ErrMatchNotOpen)

	_, err = env.engine.Join(m.ID+100, userID, PositionForward, false)
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestJoinEnforcesSkaterPoolCapacity(t *testing.T) {
	env := newTestEnv(t)
	m := env.createMatch(t, func(m *Match) { m.MaxSkaters = 2 })

	a := env.createUser(t, 50000)
	b := env.createUser(t, 50000)
	c := env.createUser(t, 50000)

	_, err := env.engine.Join(m.ID, a, PositionForward, false)
	require.NoError(t, err)
	_, err = env.engine.Join(m.ID, b, PositionDefense, false)
	require.NoError(t, err)

	// FW and DF share the skater pool, so a third skater is rejected
	// while the goalie slots remain open.
	_, err = env.engine.Join(m.ID, c, PositionForward, false)
	require.ErrorIs(t, err, ErrPositionFull)

	_, err = env.engine.Join(m.ID, c, PositionGoalie, false)
	require.NoError(t, err)
}

func TestGuestGateOnRegularMatch(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, 0)
	member := env.createUser(t, 50000)
	guest := env.createUser(t, 50000)

	c := club.Club{Name: "서울 아이스하키 클럽", OwnerID: owner}
	require.NoError(t, env.db.Create(&c).Error)
	require.NoError(t, env.db.Create(&club.ClubMember{
		ClubID: c.ID, UserID: member, Role: club.RoleMember, Status: club.StatusApproved,
	}).Error)

	// Gate defaults to 24h before start when unset.
	m := env.createMatch(t, func(m *Match) {
		m.Category = CategoryRegular
		m.ClubID = &c.ID
		m.StartTime = env.now.Add(48 * time.Hour)
	})

	_, err := env.engine.Join(m.ID, guest, PositionForward, false)
	require.ErrorIs(t, err, ErrGuestNotYetOpen)

	// Approved members bypass the gate at any time.
	_, err = env.engine.Join(m.ID, member, PositionForward, false)
	require.NoError(t, err)

	// Once inside the window the guest gets in.
	env.now = m.StartTime.Add(-23 * time.Hour)
	_, err = env.engine.Join(m.ID, guest, PositionDefense, false)
	require.NoError(t, err)
}

func TestCancelFullRefundRestoresBalance(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 48, Percent: 100}, RefundRule{HoursBefore: 0, Percent: 0})

	userID := env.createUser(t, 20000)
	m := env.createMatch(t, nil) // starts 72h out

	_, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.NoError(t, err)
	require.Equal(t, 10000, env.balance(t, userID))

	result, err := env.engine.Cancel(m.ID, userID)
	require.NoError(t, err)
	require.Equal(t, 10000, result.RefundAmount)
	require.Equal(t, 100, result.RefundPercent)

	// Round trip: balance is exactly back where it started.
	require.Equal(t, 20000, env.balance(t, userID))

	entries := env.transactions(t, userID)
	last := entries[len(entries)-1]
	require.Equal(t, points.TransactionRefund, last.Type)
	require.Equal(t, 10000, last.Amount)
	require.Contains(t, last.Description, "100%")

	// The row is gone from active lookups.
	_, err = env.repo.GetActiveParticipant(m.ID, userID)
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestCancelPartialRefundFloors(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t,
		RefundRule{HoursBefore: 48, Percent: 100},
		RefundRule{HoursBefore: 24, Percent: 33},
		RefundRule{HoursBefore: 0, Percent: 0},
	)

	userID := env.createUser(t, 20000)
	m := env.createMatch(t, func(m *Match) {
		m.EntryPoints = 1000
		m.StartTime = env.now.Add(30 * time.Hour) // falls in the 24h rule
	})

	_, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.NoError(t, err)

	result, err := env.engine.Cancel(m.ID, userID)
	require.NoError(t, err)
	require.Equal(t, 33, result.RefundPercent)
	require.Equal(t, 330, result.RefundAmount) // floor(1000*33/100)
}

func TestWaitingCancelRefundsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 0, Percent: 100})

	userID := env.createUser(t, 20000)
	m := env.createMatch(t, func(m *Match) { m.MaxSkaters = 1 })
	other := env.createUser(t, 20000)

	_, err := env.engine.Join(m.ID, other, PositionForward, false)
	require.NoError(t, err)

	_, err = env.engine.JoinWaitlist(m.ID, userID, PositionForward)
	require.NoError(t, err)

	result, err := env.engine.Cancel(m.ID, userID)
	require.NoError(t, err)
	require.Zero(t, result.RefundAmount)
	require.Equal(t, 20000, env.balance(t, userID))
	require.Len(t, env.transactions(t, userID), 1)
}

func TestPendingPaymentCancelRefundsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 0, Percent: 100})

	userID := env.createUser(t, 100)
	m := env.createMatch(t, nil)

	result, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.NoError(t, err)
	require.Equal(t, ParticipantPendingPayment, result.Status)

	cancel, err := env.engine.Cancel(m.ID, userID)
	require.NoError(t, err)
	require.Zero(t, cancel.RefundAmount)
	require.Equal(t, 100, env.balance(t, userID))
}

func TestCancelPromotesAcrossSkaterPool(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 0, Percent: 100})

	m := env.createMatch(t, func(m *Match) { m.MaxSkaters = 2 })

	fw := env.createUser(t, 50000)
	df := env.createUser(t, 50000)
	waiting := env.createUser(t, 50000)

	_, err := env.engine.Join(m.ID, fw, PositionForward, false)
	require.NoError(t, err)
	_, err = env.engine.Join(m.ID, df, PositionDefense, false)
	require.NoError(t, err)

	// Pool full: third skater queues as DF.
	_, err = env.engine.JoinWaitlist(m.ID, waiting, PositionDefense)
	require.NoError(t, err)

	// An FW cancellation vacates the shared skater pool; the waiting DF
	// is promoted and pays the fee like a direct join would.
	_, err = env.engine.Cancel(m.ID, fw)
	require.NoError(t, err)

	p, err := env.repo.GetActiveParticipant(m.ID, waiting)
	require.NoError(t, err)
	require.Equal(t, ParticipantConfirmed, p.Status)
	require.True(t, p.PaymentStatus)
	require.Equal(t, 40000, env.balance(t, waiting))

	sends := env.notifier.sentTo(waiting)
	require.NotEmpty(t, sends)
}

func TestPromotionInsufficientBalanceLeavesPending(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 0, Percent: 100})

	m := env.createMatch(t, func(m *Match) { m.MaxSkaters = 1 })

	seated := env.createUser(t, 50000)
	broke := env.createUser(t, 100)

	_, err := env.engine.Join(m.ID, seated, PositionForward, false)
	require.NoError(t, err)
	_, err = env.engine.JoinWaitlist(m.ID, broke, PositionForward)
	require.NoError(t, err)

	_, err = env.engine.Cancel(m.ID, seated)
	require.NoError(t, err)

	p, err := env.repo.GetActiveParticipant(m.ID, broke)
	require.NoError(t, err)
	require.Equal(t, ParticipantPendingPayment, p.Status)
	require.False(t, p.PaymentStatus)

	// No points were taken.
	require.Equal(t, 100, env.balance(t, broke))
	require.Len(t, env.transactions(t, broke), 1)
}

func TestPromotionIsFIFOWithIDTieBreak(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 0, Percent: 0})

	m := env.createMatch(t, func(m *Match) { m.MaxSkaters = 1 })

	seated := env.createUser(t, 50000)
	first := env.createUser(t, 50000)
	second := env.createUser(t, 50000)

	_, err := env.engine.Join(m.ID, seated, PositionForward, false)
	require.NoError(t, err)
	_, err = env.engine.JoinWaitlist(m.ID, first, PositionForward)
	require.NoError(t, err)
	_, err = env.engine.JoinWaitlist(m.ID, second, PositionDefense)
	require.NoError(t, err)

	_, err = env.engine.Cancel(m.ID, seated)
	require.NoError(t, err)

	// Exactly one promotion per vacancy, oldest row first.
	p, err := env.repo.GetActiveParticipant(m.ID, first)
	require.NoError(t, err)
	require.Equal(t, ParticipantConfirmed, p.Status)

	q, err := env.repo.GetActiveParticipant(m.ID, second)
	require.NoError(t, err)
	require.Equal(t, ParticipantWaiting, q.Status)
}

func TestAdminCancelRefundsEveryoneFully(t *testing.T) {
	env := newTestEnv(t)
	// Policy would pay nothing this close to start; admin cancels
	// bypass it entirely.
	env.seedRules(t, RefundRule{HoursBefore: 48, Percent: 0})

	m := env.createMatch(t, func(m *Match) {
		m.RentalPoints = 3000
		m.StartTime = env.now.Add(2 * time.Hour)
	})

	paid := env.createUser(t, 20000)
	rental := env.createUser(t, 20000)
	pending := env.createUser(t, 100)

	_, err := env.engine.Join(m.ID, paid, PositionForward, false)
	require.NoError(t, err)
	_, err = env.engine.Join(m.ID, rental, PositionDefense, true)
	require.NoError(t, err)
	_, err = env.engine.Join(m.ID, pending, PositionGoalie, false)
	require.NoError(t, err)

	require.NoError(t, env.engine.CancelMatchByAdmin(m.ID))

	got, err := env.repo.GetMatch(m.ID)
	require.NoError(t, err)
	require.Equal(t, MatchCanceled, got.Status)

	// Entry and rental both come back at 100%.
	require.Equal(t, 20000, env.balance(t, paid))
	require.Equal(t, 20000, env.balance(t, rental))
	require.Equal(t, 100, env.balance(t, pending))

	entries := env.transactions(t, rental)
	last := entries[len(entries)-1]
	require.Equal(t, points.TransactionRefund, last.Type)
	require.Equal(t, 13000, last.Amount)
	require.Equal(t, "관리자 취소 환불 (100%)", last.Description)

	// Everyone on the roster hears about it, paid or not.
	require.NotEmpty(t, env.notifier.sentTo(pending))

	// Cancelling twice is rejected, not double-refunded.
	require.ErrorIs(t, env.engine.CancelMatchByAdmin(m.ID), ErrMatchAlreadyCanceled)
	require.Equal(t, 20000, env.balance(t, paid))
}

func TestSelfCancelAfterAdminCancelRefundsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 0, Percent: 100})

	userID := env.createUser(t, 10000)
	m := env.createMatch(t, nil)

	_, err := env.engine.Join(m.ID, userID, PositionForward, false)
	require.NoError(t, err)
	require.Zero(t, env.balance(t, userID))

	require.NoError(t, env.engine.CancelMatchByAdmin(m.ID))
	require.Equal(t, 10000, env.balance(t, userID))

	// The admin cancel retired the row, so a self-cancel finds nothing
	// and cannot draw a second refund.
	_, err = env.engine.Cancel(m.ID, userID)
	require.ErrorIs(t, err, ErrNotParticipant)
	require.Equal(t, 10000, env.balance(t, userID))

	entries := env.transactions(t, userID)
	require.Len(t, entries, 3) // charge, fee, single refund
}

func TestWaitingCancelDoesNotPromote(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 0, Percent: 100})

	m := env.createMatch(t, func(m *Match) { m.MaxSkaters = 2 })

	seated := env.createUser(t, 50000)
	first := env.createUser(t, 50000)
	second := env.createUser(t, 50000)

	_, err := env.engine.Join(m.ID, seated, PositionForward, false)
	require.NoError(t, err)
	_, err = env.engine.JoinWaitlist(m.ID, first, PositionForward)
	require.NoError(t, err)
	_, err = env.engine.JoinWaitlist(m.ID, second, PositionForward)
	require.NoError(t, err)

	// A waiting row leaving the queue vacates no seat, so the other
	// waiter stays on the waitlist even though the pool has room.
	_, err = env.engine.Cancel(m.ID, first)
	require.NoError(t, err)

	p, err := env.repo.GetActiveParticipant(m.ID, second)
	require.NoError(t, err)
	require.Equal(t, ParticipantWaiting, p.Status)
	require.Equal(t, 50000, env.balance(t, second))
}

func TestLedgerChainStaysConsistent(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t, RefundRule{HoursBefore: 48, Percent: 100}, RefundRule{HoursBefore: 0, Percent: 50})

	userID := env.createUser(t, 30000)

	for i := 0; i < 3; i++ {
		m := env.createMatch(t, nil)
		_, err := env.engine.Join(m.ID, userID, PositionForward, false)
		require.NoError(t, err)
		_, err = env.engine.Cancel(m.ID, userID)
		require.NoError(t, err)
	}

	entries := env.transactions(t, userID)
	require.NotEmpty(t, entries)

	sum := 0
	prev := 0
	for i, e := range entries {
		sum += e.Amount
		if i > 0 {
			require.Equal(t, prev+e.Amount, e.BalanceAfter, "chain broken at entry %d", i)
		}
		prev = e.BalanceAfter
	}
	require.Equal(t, sum, env.balance(t, userID))
}
