package match

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hyunwoo-p/rinkmate/internal/audit"
	"github.com/hyunwoo-p/rinkmate/internal/middleware"
	"github.com/hyunwoo-p/rinkmate/pkg/cache"
	"github.com/hyunwoo-p/rinkmate/pkg/responses"
)

type MatchController struct {
	repo      MatchRepository
	engine    *Engine
	seatCache *cache.Cache
	auditor   *audit.Recorder
}

func NewMatchController(repo MatchRepository, engine *Engine, seatCache *cache.Cache, auditor *audit.Recorder) *MatchController {
	return &MatchController{repo: repo, engine: engine, seatCache: seatCache, auditor: auditor}
}

// ListMatches godoc
// @Summary List matches
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (open, closed, canceled)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} responses.jsonPaginatedResponse{data=[]Match}
// @Router /matches [get]
func (mc *MatchController) ListMatches(c *gin.Context) {
	status := MatchStatus(c.Query("status"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	matches, total, err := mc.repo.ListMatches(status, page, pageSize)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load matches")
		return
	}

	responses.PaginatedResponse(c, http.StatusOK, matches, total, page, pageSize)
}

// GetMatch godoc
// @Summary Match detail with live seat counts
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.jsonSuccessResponse{data=MatchDetail}
// @Failure 404 {object} responses.jsonErrorResponse
// @Router /matches/{id} [get]
func (mc *MatchController) GetMatch(c *gin.Context) {
	id, err := parseMatchID(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	m, err := mc.repo.GetMatch(id)
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
			return
		}
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load match")
		return
	}

	var seats SeatCounts
	if mc.seatCache != nil && mc.seatCache.GetSeatCounts(c.Request.Context(), id, &seats) {
		responses.SuccessResponse(c, http.StatusOK, MatchDetail{Match: *m, Seats: seats})
		return
	}

	seats, err = mc.repo.SeatCounts(m)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to count seats")
		return
	}
	if mc.seatCache != nil {
		mc.seatCache.SetSeatCounts(c.Request.Context(), id, seats)
	}

	responses.SuccessResponse(c, http.StatusOK, MatchDetail{Match: *m, Seats: seats})
}

// Join godoc
// @Summary Join a match
// @Description Seats the caller as confirmed (fee deducted) or pending_payment.
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param request body JoinRequest true "Join payload"
// @Success 200 {object} responses.jsonSuccessResponse{data=JoinResult}
// @Failure 403 {object} responses.jsonErrorResponse
// @Failure 404 {object} responses.jsonErrorResponse
// @Failure 409 {object} responses.jsonErrorResponse
// @Router /matches/{id}/join [post]
func (mc *MatchController) Join(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := parseMatchID(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	result, err := mc.engine.Join(id, userID, req.Position, req.WithRental)
	if err != nil {
		mc.respondEngineError(c, err)
		return
	}

	responses.SuccessResponse(c, http.StatusOK, result)
}

// JoinWaitlist godoc
// @Summary Queue for a match
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param request body WaitlistRequest true "Waitlist payload"
// @Success 201 {object} responses.jsonSuccessResponse{data=Participant}
// @Failure 404 {object} responses.jsonErrorResponse
// @Failure 409 {object} responses.jsonErrorResponse
// @Router /matches/{id}/waitlist [post]
func (mc *MatchController) JoinWaitlist(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := parseMatchID(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req WaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	p, err := mc.engine.JoinWaitlist(id, userID, req.Position)
	if err != nil {
		mc.respondEngineError(c, err)
		return
	}

	responses.SuccessResponse(c, http.StatusCreated, p)
}

// CancelJoin godoc
// @Summary Cancel own participation
// @Description Credits any refund due under the time-based policy, then frees the seat.
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.jsonSuccessResponse{data=CancelResult}
// @Failure 404 {object} responses.jsonErrorResponse
// @Router /matches/{id}/cancel [post]
func (mc *MatchController) CancelJoin(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := parseMatchID(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	result, err := mc.engine.Cancel(id, userID)
	if err != nil {
		mc.respondEngineError(c, err)
		return
	}

	responses.SuccessResponse(c, http.StatusOK, result)
}

// CreateMatch godoc
// @Summary Create a match
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMatchRequest true "Match payload"
// @Success 201 {object} responses.jsonSuccessResponse{data=Match}
// @Router /admin/matches [post]
func (mc *MatchController) CreateMatch(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}
	if !req.Category.Valid() {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match category")
		return
	}

	m := Match{
		Title:                req.Title,
		Venue:                req.Venue,
		StartTime:            req.StartTime,
		Status:               MatchOpen,
		Category:             req.Category,
		EntryPoints:          req.EntryPoints,
		RentalPoints:         req.RentalPoints,
		MaxSkaters:           req.MaxSkaters,
		MaxGoalies:           req.MaxGoalies,
		GoalieFree:           req.GoalieFree,
		GuestOpenHoursBefore: req.GuestOpenHoursBefore,
		ClubID:               req.ClubID,
		CreatedByUserID:      adminID,
	}
	if err := mc.repo.CreateMatch(&m); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create match")
		return
	}

	mc.auditor.Record(adminID, "match.create", "match", m.ID, m.Title)
	responses.SuccessResponse(c, http.StatusCreated, m)
}

// UpdateMatch godoc
// @Summary Update a match
// @Description Setting status to canceled triggers the bulk-refund cancellation flow.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param request body UpdateMatchRequest true "Fields to update"
// @Success 200 {object} responses.jsonSuccessResponse{data=Match}
// @Failure 404 {object} responses.jsonErrorResponse
// @Router /admin/matches/{id} [put]
func (mc *MatchController) UpdateMatch(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := parseMatchID(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req UpdateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	// Cancellation routes through the refund engine, never a bare
	// status write.
	if req.Status != nil && *req.Status == MatchCanceled {
		if err := mc.engine.CancelMatchByAdmin(id); err != nil {
			mc.respondEngineError(c, err)
			return
		}
		mc.auditor.Record(adminID, "match.cancel", "match", id, "bulk refund at 100%")
		m, err := mc.repo.GetMatch(id)
		if err != nil {
			responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load match")
			return
		}
		responses.SuccessResponse(c, http.StatusOK, m)
		return
	}

	m, err := mc.repo.GetMatch(id)
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
			return
		}
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load match")
		return
	}

	// Canceled is terminal: refunds already went out, so the status
	// never moves again.
	if m.Status == MatchCanceled && req.Status != nil {
		responses.ErrorResponse(c, http.StatusConflict, "Match already canceled")
		return
	}

	applyMatchUpdates(m, &req)
	if err := mc.repo.SaveMatch(m); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to update match")
		return
	}

	mc.auditor.Record(adminID, "match.update", "match", m.ID, "")
	responses.SuccessResponse(c, http.StatusOK, m)
}

// CancelMatch godoc
// @Summary Cancel a match with full refunds
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.jsonSuccessResponse
// @Failure 404 {object} responses.jsonErrorResponse
// @Failure 409 {object} responses.jsonErrorResponse
// @Router /admin/matches/{id}/cancel [post]
func (mc *MatchController) CancelMatch(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := parseMatchID(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	if err := mc.engine.CancelMatchByAdmin(id); err != nil {
		mc.respondEngineError(c, err)
		return
	}

	mc.auditor.Record(adminID, "match.cancel", "match", id, "bulk refund at 100%")
	responses.MessageResponse(c, http.StatusOK, fmt.Sprintf("Match %d canceled, participants refunded", id))
}

func (mc *MatchController) respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyJoined):
		responses.ErrorResponse(c, http.StatusConflict, "Already joined this match")
	case errors.Is(err, ErrMatchNotFound):
		responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
	case errors.Is(err, ErrMatchNotOpen):
		responses.ErrorResponse(c, http.StatusConflict, "Match is not open for registration")
	case errors.Is(err, ErrNotParticipant):
		responses.ErrorResponse(c, http.StatusNotFound, "Not a participant")
	case errors.Is(err, ErrGuestNotYetOpen):
		responses.ErrorResponseWithCode(c, http.StatusForbidden, "guest_not_yet_open", "GUEST_NOT_YET_OPEN")
	case errors.Is(err, ErrPositionFull):
		responses.ErrorResponseWithCode(c, http.StatusConflict, "Position is full", "POSITION_FULL")
	case errors.Is(err, ErrMatchAlreadyCanceled):
		responses.ErrorResponse(c, http.StatusConflict, "Match already canceled")
	case errors.Is(err, ErrInvalidPosition):
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid position")
	default:
		responses.ErrorResponse(c, http.StatusInternalServerError, "Operation failed")
	}
}

func applyMatchUpdates(m *Match, req *UpdateMatchRequest) {
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Venue != nil {
		m.Venue = *req.Venue
	}
	if req.StartTime != nil {
		m.StartTime = *req.StartTime
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	if req.EntryPoints != nil {
		m.EntryPoints = *req.EntryPoints
	}
	if req.RentalPoints != nil {
		m.RentalPoints = *req.RentalPoints
	}
	if req.MaxSkaters != nil {
		m.MaxSkaters = *req.MaxSkaters
	}
	if req.MaxGoalies != nil {
		m.MaxGoalies = *req.MaxGoalies
	}
	if req.GoalieFree != nil {
		m.GoalieFree = *req.GoalieFree
	}
	if req.GuestOpenHoursBefore != nil {
		m.GuestOpenHoursBefore = req.GuestOpenHoursBefore
	}
}

func parseMatchID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
