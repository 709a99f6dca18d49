package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"

	"github.com/hyunwoo-p/rinkmate/internal/club"
	"github.com/hyunwoo-p/rinkmate/internal/logger"
	"github.com/hyunwoo-p/rinkmate/internal/notification"
	"github.com/hyunwoo-p/rinkmate/internal/points"
	"github.com/hyunwoo-p/rinkmate/pkg/cache"
)

var (
	ErrAlreadyJoined        = errors.New("already joined this match")
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchNotOpen         = errors.New("match is not open for registration")
	ErrNotParticipant       = errors.New("not a participant")
	ErrGuestNotYetOpen      = errors.New("guest registration not yet open")
	ErrPositionFull         = errors.New("position is full")
	ErrMatchAlreadyCanceled = errors.New("match already canceled")
	ErrInvalidPosition      = errors.New("invalid position")
)

// Engine owns the match participation state machine: joining, wait
// listing, cancellation with refunds, waitlist promotion and admin bulk
// cancellation. Every public operation runs inside one database
// transaction; notifications and cache invalidation happen after
// commit and never affect the outcome.
type Engine struct {
	db       *gorm.DB
	notifier notification.Notifier
	cache    *cache.Cache
	pool     *ants.Pool
	now      func() time.Time
}

func NewEngine(db *gorm.DB, notifier notification.Notifier, seatCache *cache.Cache, pool *ants.Pool) *Engine {
	return &Engine{
		db:       db,
		notifier: notifier,
		cache:    seatCache,
		pool:     pool,
		now:      time.Now,
	}
}

// Join seats a user on a match. The caller either ends up confirmed
// (fee deducted) or pending_payment (seat held, no deduction), or gets
// one of the sentinel errors above.
func (e *Engine) Join(matchID, userID uint, position Position, withRental bool) (*JoinResult, error) {
	if !position.Valid() {
		return nil, ErrInvalidPosition
	}

	var (
		result  JoinResult
		matched Match
	)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		repo := NewGormMatchRepository(tx)
		ledger := points.NewGormPointsRepository(tx)
		clubs := club.NewGormClubRepository(tx)

		m, err := e.checkJoinable(repo, clubs, matchID, userID)
		if err != nil {
			return err
		}

		capacity := m.PoolCapacity(position)
		if capacity > 0 {
			seated, err := repo.CountSeatHolders(matchID, position.Pool())
			if err != nil {
				return err
			}
			if seated >= int64(capacity) {
				return ErrPositionFull
			}
		}

		cost := m.EntryCost(position, withRental)
		balance, err := ledger.Balance(userID)
		if err != nil {
			return err
		}
		hasEnough := cost == 0 || balance >= cost

		status := ParticipantPendingPayment
		if hasEnough {
			status = ParticipantConfirmed
			if cost > 0 {
				refID := matchID
				if _, err := ledger.Apply(userID, -cost, points.TransactionUse, "참가비 차감", &refID); err != nil {
					return err
				}
			}
		}

		p := Participant{
			MatchID:       matchID,
			UserID:        userID,
			Position:      position,
			Status:        status,
			PaymentStatus: hasEnough,
			WithRental:    withRental,
		}
		if err := repo.CreateParticipant(&p); err != nil {
			return err
		}

		result = JoinResult{Status: status, Participant: &p}
		matched = *m
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.invalidateSeats(matchID)
	if result.Status == ParticipantConfirmed {
		e.notifyAsync(userID, "참가 확정", fmt.Sprintf("'%s' 참가가 확정되었습니다.", matched.Title), "")
	}
	e.notifyAsync(matched.CreatedByUserID, "새로운 참가 신청",
		fmt.Sprintf("'%s'에 새로운 참가자가 있습니다.", matched.Title), "")

	return &result, nil
}

// JoinWaitlist queues a user for a match without charging anything.
// The same already-joined, open and guest-gate checks apply.
func (e *Engine) JoinWaitlist(matchID, userID uint, position Position) (*Participant, error) {
	if !position.Valid() {
		return nil, ErrInvalidPosition
	}

	var (
		p       Participant
		matched Match
	)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		repo := NewGormMatchRepository(tx)
		clubs := club.NewGormClubRepository(tx)

		m, err := e.checkJoinable(repo, clubs, matchID, userID)
		if err != nil {
			return err
		}

		p = Participant{
			MatchID:  matchID,
			UserID:   userID,
			Position: position,
			Status:   ParticipantWaiting,
		}
		if err := repo.CreateParticipant(&p); err != nil {
			return err
		}
		matched = *m
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifyAsync(matched.CreatedByUserID, "대기자 등록",
		fmt.Sprintf("'%s'에 새로운 대기자가 있습니다.", matched.Title), "")

	return &p, nil
}

// checkJoinable runs the shared join preconditions: no live row for
// this user yet, match exists and is open, and the guest gate for
// club-gated categories.
func (e *Engine) checkJoinable(repo MatchRepository, clubs club.ClubRepository, matchID, userID uint) (*Match, error) {
	if _, err := repo.GetActiveParticipant(matchID, userID); err == nil {
		return nil, ErrAlreadyJoined
	} else if !errors.Is(err, ErrNotParticipant) {
		return nil, err
	}

	m, err := repo.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != MatchOpen {
		return nil, ErrMatchNotOpen
	}

	if m.Category.Config().GuestGateApplies && m.ClubID != nil {
		isMember, err := clubs.IsApprovedMember(*m.ClubID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember && e.now().Before(m.GuestGateOpensAt()) {
			return nil, ErrGuestNotYetOpen
		}
	}

	return m, nil
}

// Cancel removes the caller from a match, crediting any refund due
// under the time-based policy before the participant row is
// soft-deleted, all in one transaction. Waitlist promotion for the
// vacated pool runs afterwards in its own transaction; a promotion
// failure never surfaces to the canceller.
func (e *Engine) Cancel(matchID, userID uint) (*CancelResult, error) {
	var (
		result   CancelResult
		canceled Participant
		matched  Match
	)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		repo := NewGormMatchRepository(tx)
		ledger := points.NewGormPointsRepository(tx)

		p, err := repo.GetActiveParticipant(matchID, userID)
		if err != nil {
			return err
		}

		m, err := repo.GetMatch(matchID)
		if err != nil {
			return err
		}

		cost := m.EntryCost(p.Position, p.WithRental)
		if p.Status == ParticipantConfirmed && p.PaymentStatus && cost > 0 {
			rules, err := repo.ListRefundRules()
			if err != nil {
				return err
			}
			hoursRemaining := m.StartTime.Sub(e.now()).Hours()
			percent := SelectRefundPercent(rules, hoursRemaining)
			refund := RefundAmount(cost, percent)

			if refund > 0 {
				refID := matchID
				desc := fmt.Sprintf("환불 (%d%%)", percent)
				if _, err := ledger.Apply(userID, refund, points.TransactionRefund, desc, &refID); err != nil {
					return err
				}
			}
			result = CancelResult{RefundAmount: refund, RefundPercent: percent}
		}

		canceled = *p
		matched = *m
		return repo.SoftDeleteParticipant(p)
	})
	if err != nil {
		return nil, err
	}

	e.invalidateSeats(matchID)
	e.sendCancelNotification(&matched, &canceled, &result)

	// Only seat holders vacate a seat; a waiting row leaving the queue
	// triggers no promotion.
	if canceled.Status != ParticipantWaiting {
		if err := e.Promote(matchID, canceled.Position); err != nil {
			logger.Error("match %d: waitlist promotion after cancel failed: %v", matchID, err)
		}
	}

	return &result, nil
}

func (e *Engine) sendCancelNotification(m *Match, p *Participant, result *CancelResult) {
	switch {
	case result.RefundAmount > 0:
		e.notifyAsync(p.UserID, "참가 취소 및 환불",
			fmt.Sprintf("'%s' 참가가 취소되었습니다. %d 포인트가 환불되었습니다. (%d%%)",
				m.Title, result.RefundAmount, result.RefundPercent), "")
	case p.Status == ParticipantPendingPayment:
		e.notifyAsync(p.UserID, "참가 취소",
			fmt.Sprintf("'%s' 참가 신청이 취소되었습니다.", m.Title), "")
	case p.Position == PositionGoalie && m.GoalieFree:
		e.notifyAsync(p.UserID, "참가 취소",
			fmt.Sprintf("'%s' 골리 참가가 취소되었습니다.", m.Title), "")
	case p.Status == ParticipantWaiting:
		e.notifyAsync(p.UserID, "대기 취소",
			fmt.Sprintf("'%s' 대기 신청이 취소되었습니다.", m.Title), "")
	default:
		e.notifyAsync(p.UserID, "참가 취소",
			fmt.Sprintf("'%s' 참가가 취소되었습니다. 환불 대상이 아닙니다.", m.Title), "")
	}
}

// Promote offers the vacated seat to the longest-waiting user in the
// position's pool. Exactly one candidate is considered per vacancy: if
// the candidate cannot pay, they still take the seat as
// pending_payment rather than the next candidate being tried.
func (e *Engine) Promote(matchID uint, position Position) error {
	var (
		promoted  *Participant
		matched   Match
		confirmed bool
	)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		repo := NewGormMatchRepository(tx)
		ledger := points.NewGormPointsRepository(tx)

		m, err := repo.GetMatch(matchID)
		if err != nil {
			return err
		}
		if m.Status != MatchOpen {
			return nil
		}

		capacity := m.PoolCapacity(position)
		if capacity > 0 {
			seated, err := repo.CountSeatHolders(matchID, position.Pool())
			if err != nil {
				return err
			}
			if seated >= int64(capacity) {
				return nil
			}
		}

		candidate, err := repo.OldestWaiting(matchID, position.Pool())
		if err != nil {
			return err
		}
		if candidate == nil {
			return nil
		}

		cost := m.EntryCost(candidate.Position, candidate.WithRental)
		balance, err := ledger.Balance(candidate.UserID)
		if err != nil {
			return err
		}

		if cost == 0 || balance >= cost {
			if cost > 0 {
				refID := matchID
				if _, err := ledger.Apply(candidate.UserID, -cost, points.TransactionUse, "대기자 승격 결제", &refID); err != nil {
					return err
				}
			}
			candidate.Status = ParticipantConfirmed
			candidate.PaymentStatus = true
			confirmed = true
		} else {
			candidate.Status = ParticipantPendingPayment
			candidate.PaymentStatus = false
		}

		if err := repo.SaveParticipant(candidate); err != nil {
			return err
		}

		promoted = candidate
		matched = *m
		return nil
	})
	if err != nil || promoted == nil {
		return err
	}

	e.invalidateSeats(matchID)
	if confirmed {
		e.notifyAsync(promoted.UserID, "대기자 승격",
			fmt.Sprintf("'%s' 참가가 확정되었습니다.", matched.Title), "")
	} else {
		e.notifyAsync(promoted.UserID, "대기자 승격 (결제 필요)",
			fmt.Sprintf("'%s' 자리가 났습니다. 포인트 충전 후 결제해 주세요.", matched.Title), "")
	}
	return nil
}

// CancelMatchByAdmin cancels the match and refunds every confirmed
// paying participant in full, rental fee included. The time-based
// policy does not apply and no waitlist promotion runs.
func (e *Engine) CancelMatchByAdmin(matchID uint) error {
	var (
		matched      Match
		participants []Participant
	)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		repo := NewGormMatchRepository(tx)
		ledger := points.NewGormPointsRepository(tx)

		m, err := repo.GetMatch(matchID)
		if err != nil {
			return err
		}
		if m.Status == MatchCanceled {
			return ErrMatchAlreadyCanceled
		}

		m.Status = MatchCanceled
		if err := repo.SaveMatch(m); err != nil {
			return err
		}

		participants, err = repo.ListSeatHolders(matchID)
		if err != nil {
			return err
		}

		for i := range participants {
			p := &participants[i]
			if p.Status == ParticipantConfirmed && p.PaymentStatus {
				cost := m.EntryCost(p.Position, p.WithRental)
				if cost > 0 {
					refID := matchID
					if _, err := ledger.Apply(p.UserID, cost, points.TransactionRefund, "관리자 취소 환불 (100%)", &refID); err != nil {
						return err
					}
				}
			}
			// The row is retired together with the refund so a later
			// self-cancel cannot draw a second refund.
			if err := repo.SoftDeleteParticipant(p); err != nil {
				return err
			}
		}

		matched = *m
		return nil
	})
	if err != nil {
		return err
	}

	e.invalidateSeats(matchID)
	for _, p := range participants {
		userID := p.UserID
		e.notifyAsync(userID, "경기 취소",
			fmt.Sprintf("'%s' 경기가 취소되었습니다. 결제하신 포인트는 전액 환불됩니다.", matched.Title), "")
	}
	return nil
}

func (e *Engine) invalidateSeats(matchID uint) {
	if e.cache == nil {
		return
	}
	e.cache.InvalidateSeatCounts(context.Background(), matchID)
}

// notifyAsync fans a notification out through the worker pool when one
// is attached, falling back to a synchronous send.
func (e *Engine) notifyAsync(userID uint, title, body, deepLink string) {
	if e.notifier == nil {
		return
	}
	if e.pool != nil {
		if err := e.pool.Submit(func() {
			e.notifier.Send(userID, title, body, deepLink)
		}); err != nil {
			logger.Warn("notification pool submit failed, sending inline: %v", err)
			e.notifier.Send(userID, title, body, deepLink)
		}
		return
	}
	e.notifier.Send(userID, title, body, deepLink)
}
