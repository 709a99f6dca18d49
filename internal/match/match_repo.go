package match

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type MatchRepository interface {
	CreateMatch(m *Match) error
	GetMatch(id uint) (*Match, error)
	ListMatches(status MatchStatus, page, pageSize int) ([]Match, int64, error)
	SaveMatch(m *Match) error
	ListOpenMatchesStartedBefore(cutoff time.Time) ([]Match, error)

	CreateParticipant(p *Participant) error
	SaveParticipant(p *Participant) error
	// GetActiveParticipant returns the caller's live row on the match,
	// waiting rows included. Soft-deleted rows never match.
	GetActiveParticipant(matchID, userID uint) (*Participant, error)
	// CountSeatHolders counts live rows occupying seats in the given
	// position pool (waiting rows excluded).
	CountSeatHolders(matchID uint, pool []Position) (int64, error)
	// OldestWaiting returns the longest-queued waiting row in the pool,
	// ordered by creation time with row id as the deterministic
	// tie-break.
	OldestWaiting(matchID uint, pool []Position) (*Participant, error)
	ListSeatHolders(matchID uint) ([]Participant, error)
	SoftDeleteParticipant(p *Participant) error

	ListRefundRules() ([]RefundRule, error)
	SeedRefundRules(rules []RefundRule) error

	SeatCounts(m *Match) (SeatCounts, error)
}

type gormMatchRepository struct {
	db *gorm.DB
}

func NewGormMatchRepository(db *gorm.DB) MatchRepository {
	return &gormMatchRepository{db: db}
}

func (r *gormMatchRepository) CreateMatch(m *Match) error {
	return r.db.Create(m).Error
}

func (r *gormMatchRepository) GetMatch(id uint) (*Match, error) {
	var m Match
	if err := r.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormMatchRepository) ListMatches(status MatchStatus, page, pageSize int) ([]Match, int64, error) {
	q := r.db.Model(&Match{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var matches []Match
	err := q.Order("start_time ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&matches).Error
	if err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

func (r *gormMatchRepository) SaveMatch(m *Match) error {
	return r.db.Save(m).Error
}

func (r *gormMatchRepository) ListOpenMatchesStartedBefore(cutoff time.Time) ([]Match, error) {
	var matches []Match
	err := r.db.Where("status = ? AND start_time < ?", MatchOpen, cutoff).Find(&matches).Error
	return matches, err
}

func (r *gormMatchRepository) CreateParticipant(p *Participant) error {
	return r.db.Create(p).Error
}

func (r *gormMatchRepository) SaveParticipant(p *Participant) error {
	return r.db.Save(p).Error
}

func (r *gormMatchRepository) GetActiveParticipant(matchID, userID uint) (*Participant, error) {
	var p Participant
	err := r.db.Where("match_id = ? AND user_id = ?", matchID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormMatchRepository) CountSeatHolders(matchID uint, pool []Position) (int64, error) {
	var count int64
	err := r.db.Model(&Participant{}).
		Where("match_id = ? AND position IN ? AND status IN ?", matchID, pool, seatHolderStatuses).
		Count(&count).Error
	return count, err
}

func (r *gormMatchRepository) OldestWaiting(matchID uint, pool []Position) (*Participant, error) {
	var p Participant
	err := r.db.Where("match_id = ? AND position IN ? AND status = ?", matchID, pool, ParticipantWaiting).
		Order("created_at ASC, id ASC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormMatchRepository) ListSeatHolders(matchID uint) ([]Participant, error) {
	var participants []Participant
	err := r.db.Where("match_id = ? AND status IN ?", matchID, seatHolderStatuses).
		Order("created_at ASC").
		Find(&participants).Error
	return participants, err
}

// SoftDeleteParticipant marks the row canceled, then soft-deletes it.
// The status write lands before the delete so a restored or directly
// queried row still reads as canceled.
func (r *gormMatchRepository) SoftDeleteParticipant(p *Participant) error {
	if err := r.db.Model(p).Update("status", ParticipantCanceled).Error; err != nil {
		return err
	}
	return r.db.Delete(p).Error
}

func (r *gormMatchRepository) ListRefundRules() ([]RefundRule, error) {
	var rules []RefundRule
	err := r.db.Order("hours_before DESC").Find(&rules).Error
	return rules, err
}

func (r *gormMatchRepository) SeedRefundRules(rules []RefundRule) error {
	var count int64
	if err := r.db.Model(&RefundRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(&rules).Error
}

func (r *gormMatchRepository) SeatCounts(m *Match) (SeatCounts, error) {
	skaters, err := r.CountSeatHolders(m.ID, []Position{PositionForward, PositionDefense})
	if err != nil {
		return SeatCounts{}, err
	}
	goalies, err := r.CountSeatHolders(m.ID, []Position{PositionGoalie})
	if err != nil {
		return SeatCounts{}, err
	}
	return SeatCounts{
		Skaters:    skaters,
		MaxSkaters: m.MaxSkaters,
		Goalies:    goalies,
		MaxGoalies: m.MaxGoalies,
	}, nil
}
