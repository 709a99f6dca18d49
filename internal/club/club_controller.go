package club

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hyunwoo-p/rinkmate/internal/middleware"
	"github.com/hyunwoo-p/rinkmate/internal/notification"
	"github.com/hyunwoo-p/rinkmate/pkg/responses"
)

type ClubController struct {
	repo     ClubRepository
	notifier notification.Notifier
}

func NewClubController(repo ClubRepository, notifier notification.Notifier) *ClubController {
	return &ClubController{repo: repo, notifier: notifier}
}

// CreateClub godoc
// @Summary Create a club
// @Description The creator becomes the club owner with an approved membership.
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateClubRequest true "Club payload"
// @Success 201 {object} responses.jsonSuccessResponse{data=Club}
// @Router /clubs [post]
func (cc *ClubController) CreateClub(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	newClub := Club{Name: req.Name, Description: req.Description, OwnerID: userID}
	if err := cc.repo.CreateClub(&newClub); err != nil {
		responses.ErrorResponse(c, http.StatusConflict, "Club name already in use")
		return
	}

	owner := ClubMember{
		ClubID: newClub.ID,
		UserID: userID,
		Role:   RoleOwner,
		Status: StatusApproved,
	}
	if err := cc.repo.CreateMember(&owner); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create club owner membership")
		return
	}

	responses.SuccessResponse(c, http.StatusCreated, newClub)
}

// ListClubs godoc
// @Summary List clubs
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.jsonSuccessResponse{data=[]Club}
// @Router /clubs [get]
func (cc *ClubController) ListClubs(c *gin.Context) {
	clubs, err := cc.repo.ListClubs()
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load clubs")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, clubs)
}

// JoinClub godoc
// @Summary Request club membership
// @Description Creates a pending membership awaiting manager approval.
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 201 {object} responses.jsonSuccessResponse{data=ClubMember}
// @Failure 404 {object} responses.jsonErrorResponse
// @Failure 409 {object} responses.jsonErrorResponse
// @Router /clubs/{id}/join [post]
func (cc *ClubController) JoinClub(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	clubID, err := parseUintParam(c, "id")
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid club ID")
		return
	}

	target, err := cc.repo.GetClub(clubID)
	if err != nil {
		if errors.Is(err, ErrClubNotFound) {
			responses.ErrorResponse(c, http.StatusNotFound, "Club not found")
			return
		}
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load club")
		return
	}

	if _, err := cc.repo.GetMember(clubID, userID); err == nil {
		responses.ErrorResponse(c, http.StatusConflict, "Already a member or pending")
		return
	}

	member := ClubMember{
		ClubID: clubID,
		UserID: userID,
		Role:   RoleMember,
		Status: StatusPending,
	}
	if err := cc.repo.CreateMember(&member); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create membership request")
		return
	}

	cc.notifier.Send(target.OwnerID, "가입 신청",
		target.Name+" 클럽에 새로운 가입 신청이 있습니다.", "")

	responses.SuccessResponse(c, http.StatusCreated, member)
}

// ListMembers godoc
// @Summary List club members
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} responses.jsonSuccessResponse{data=[]ClubMember}
// @Router /clubs/{id}/members [get]
func (cc *ClubController) ListMembers(c *gin.Context) {
	clubID, err := parseUintParam(c, "id")
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid club ID")
		return
	}

	members, err := cc.repo.ListMembers(clubID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load members")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, members)
}

// ApproveMember godoc
// @Summary Approve a pending membership
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param memberId path int true "Membership ID"
// @Success 200 {object} responses.jsonSuccessResponse{data=ClubMember}
// @Failure 403 {object} responses.jsonErrorResponse
// @Router /clubs/{id}/members/{memberId}/approve [post]
func (cc *ClubController) ApproveMember(c *gin.Context) {
	cc.reviewMember(c, StatusApproved)
}

// RejectMember godoc
// @Summary Reject a pending membership
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param memberId path int true "Membership ID"
// @Success 200 {object} responses.jsonSuccessResponse{data=ClubMember}
// @Failure 403 {object} responses.jsonErrorResponse
// @Router /clubs/{id}/members/{memberId}/reject [post]
func (cc *ClubController) RejectMember(c *gin.Context) {
	cc.reviewMember(c, StatusRejected)
}

func (cc *ClubController) reviewMember(c *gin.Context, decision MemberStatus) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	clubID, err := parseUintParam(c, "id")
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid club ID")
		return
	}
	memberID, err := parseUintParam(c, "memberId")
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid member ID")
		return
	}

	isManager, err := cc.repo.IsManager(clubID, userID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to check permissions")
		return
	}
	if !isManager {
		responses.ErrorResponse(c, http.StatusForbidden, "Requires club owner or manager")
		return
	}

	member, err := cc.repo.GetMemberByID(memberID)
	if err != nil || member.ClubID != clubID {
		responses.ErrorResponse(c, http.StatusNotFound, "Member not found")
		return
	}
	if member.Status != StatusPending {
		responses.ErrorResponse(c, http.StatusConflict, "Membership already reviewed")
		return
	}

	member.Status = decision
	if err := cc.repo.UpdateMember(member); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to update membership")
		return
	}

	if decision == StatusApproved {
		cc.notifier.Send(member.UserID, "가입 승인", "클럽 가입이 승인되었습니다.", "")
	} else {
		cc.notifier.Send(member.UserID, "가입 거절", "클럽 가입이 거절되었습니다.", "")
	}

	responses.SuccessResponse(c, http.StatusOK, member)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
