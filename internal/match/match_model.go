package match

import (
	"time"

	"gorm.io/gorm"
)

// Category is the single match taxonomy. Per-category behavior (fees,
// guest gating, gear rental) hangs off CategoryConfig instead of ad hoc
// boolean checks at call sites.
type Category string

const (
	CategoryOpenHockey Category = "open_hockey"
	CategoryRegular    Category = "regular"
	CategoryTraining   Category = "training"
	CategoryGame       Category = "game"
	CategoryTeamMatch  Category = "team_match"
)

type CategoryConfig struct {
	FeeApplies       bool
	GuestGateApplies bool
	RentalApplies    bool
}

var categoryConfigs = map[Category]CategoryConfig{
	CategoryOpenHockey: {FeeApplies: true, GuestGateApplies: false, RentalApplies: true},
	CategoryRegular:    {FeeApplies: true, GuestGateApplies: true, RentalApplies: true},
	CategoryTraining:   {FeeApplies: true, GuestGateApplies: false, RentalApplies: false},
	CategoryGame:       {FeeApplies: true, GuestGateApplies: false, RentalApplies: false},
	CategoryTeamMatch:  {FeeApplies: false, GuestGateApplies: false, RentalApplies: false},
}

func (c Category) Valid() bool {
	_, ok := categoryConfigs[c]
	return ok
}

func (c Category) Config() CategoryConfig {
	return categoryConfigs[c]
}

type MatchStatus string

const (
	MatchOpen     MatchStatus = "open"
	MatchClosed   MatchStatus = "closed"
	MatchCanceled MatchStatus = "canceled"
)

type Position string

const (
	PositionForward Position = "FW"
	PositionDefense Position = "DF"
	PositionGoalie  Position = "G"
)

func (p Position) Valid() bool {
	return p == PositionForward || p == PositionDefense || p == PositionGoalie
}

// Pool returns the positions sharing a capacity pool with p. Forwards
// and defensemen draw from the combined skater pool; goalies have
// their own.
func (p Position) Pool() []Position {
	if p == PositionGoalie {
		return []Position{PositionGoalie}
	}
	return []Position{PositionForward, PositionDefense}
}

const defaultGuestOpenHours = 24

type Match struct {
	gorm.Model
	Title                string      `gorm:"type:varchar(100);not null" json:"title"`
	Venue                string      `gorm:"type:varchar(100)" json:"venue"`
	StartTime            time.Time   `gorm:"index;not null" json:"start_time"`
	Status               MatchStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Category             Category    `gorm:"type:varchar(20);not null" json:"category"`
	EntryPoints          int         `gorm:"not null;default:0" json:"entry_points"`
	RentalPoints         int         `gorm:"not null;default:0" json:"rental_points"`
	MaxSkaters           int         `gorm:"not null;default:0" json:"max_skaters"`
	MaxGoalies           int         `gorm:"not null;default:0" json:"max_goalies"`
	GoalieFree           bool        `gorm:"not null;default:false" json:"goalie_free"`
	GuestOpenHoursBefore *int        `json:"guest_open_hours_before,omitempty"`
	ClubID               *uint       `gorm:"index" json:"club_id,omitempty"`
	CreatedByUserID      uint        `gorm:"not null" json:"created_by_user_id"`
}

// EntryCost is the points a participant pays for this match at the
// given position, including the rental fee when opted in. A goalie on
// a goalie-free match pays nothing for entry but still pays rental.
func (m *Match) EntryCost(position Position, withRental bool) int {
	cfg := m.Category.Config()
	cost := 0
	if cfg.FeeApplies && !(position == PositionGoalie && m.GoalieFree) {
		cost = m.EntryPoints
	}
	if withRental && cfg.RentalApplies {
		cost += m.RentalPoints
	}
	return cost
}

// GuestGateOpensAt is the moment non-club-members may join. Only
// meaningful for categories with GuestGateApplies.
func (m *Match) GuestGateOpensAt() time.Time {
	hours := defaultGuestOpenHours
	if m.GuestOpenHoursBefore != nil {
		hours = *m.GuestOpenHoursBefore
	}
	return m.StartTime.Add(-time.Duration(hours) * time.Hour)
}

// PoolCapacity returns the seat ceiling for the pool containing the
// given position. Zero means unlimited.
func (m *Match) PoolCapacity(position Position) int {
	if position == PositionGoalie {
		return m.MaxGoalies
	}
	return m.MaxSkaters
}

type ParticipantStatus string

const (
	ParticipantApplied        ParticipantStatus = "applied"
	ParticipantConfirmed      ParticipantStatus = "confirmed"
	ParticipantPendingPayment ParticipantStatus = "pending_payment"
	ParticipantWaiting        ParticipantStatus = "waiting"
	ParticipantCanceled       ParticipantStatus = "canceled"
)

// seatHolderStatuses are the statuses that occupy a seat in the
// capacity pools. Waiting rows do not hold a seat.
var seatHolderStatuses = []ParticipantStatus{
	ParticipantApplied,
	ParticipantConfirmed,
	ParticipantPendingPayment,
}

// Participant is one user's registration on a match. Cancellation
// soft-deletes the row so ledger reference ids stay explainable.
type Participant struct {
	gorm.Model
	MatchID       uint              `gorm:"index:idx_match_user;not null" json:"match_id"`
	UserID        uint              `gorm:"index:idx_match_user;not null" json:"user_id"`
	Position      Position          `gorm:"type:varchar(5);not null" json:"position"`
	Status        ParticipantStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus bool              `gorm:"not null;default:false" json:"payment_status"`
	WithRental    bool              `gorm:"not null;default:false" json:"with_rental"`
}

// RefundRule maps hours-before-start at cancellation time to a refund
// percentage. Rules are evaluated in descending HoursBefore order; the
// first rule whose threshold is at or under the remaining hours wins.
type RefundRule struct {
	gorm.Model
	HoursBefore int `gorm:"not null" json:"hours_before"`
	Percent     int `gorm:"not null" json:"percent"`
}

type SeatCounts struct {
	Skaters    int64 `json:"skaters"`
	MaxSkaters int   `json:"max_skaters"`
	Goalies    int64 `json:"goalies"`
	MaxGoalies int   `json:"max_goalies"`
}

type CreateMatchRequest struct {
	Title                string    `json:"title" binding:"required,max=100"`
	Venue                string    `json:"venue" binding:"max=100"`
	StartTime            time.Time `json:"start_time" binding:"required"`
	Category             Category  `json:"category" binding:"required"`
	EntryPoints          int       `json:"entry_points" binding:"gte=0"`
	RentalPoints         int       `json:"rental_points" binding:"gte=0"`
	MaxSkaters           int       `json:"max_skaters" binding:"gte=0"`
	MaxGoalies           int       `json:"max_goalies" binding:"gte=0"`
	GoalieFree           bool      `json:"goalie_free"`
	GuestOpenHoursBefore *int      `json:"guest_open_hours_before"`
	ClubID               *uint     `json:"club_id"`
}

type UpdateMatchRequest struct {
	Title                *string      `json:"title"`
	Venue                *string      `json:"venue"`
	StartTime            *time.Time   `json:"start_time"`
	Status               *MatchStatus `json:"status"`
	EntryPoints          *int         `json:"entry_points"`
	RentalPoints         *int         `json:"rental_points"`
	MaxSkaters           *int         `json:"max_skaters"`
	MaxGoalies           *int         `json:"max_goalies"`
	GoalieFree           *bool        `json:"goalie_free"`
	GuestOpenHoursBefore *int         `json:"guest_open_hours_before"`
}

type JoinRequest struct {
	Position   Position `json:"position" binding:"required"`
	WithRental bool     `json:"with_rental"`
}

type WaitlistRequest struct {
	Position Position `json:"position" binding:"required"`
}

type JoinResult struct {
	Status      ParticipantStatus `json:"status"`
	Participant *Participant      `json:"participant"`
}

type CancelResult struct {
	RefundAmount  int `json:"refund_amount"`
	RefundPercent int `json:"refund_percent"`
}

type MatchDetail struct {
	Match Match      `json:"match"`
	Seats SeatCounts `json:"seats"`
}
