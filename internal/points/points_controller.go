package points

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hyunwoo-p/rinkmate/internal/audit"
	"github.com/hyunwoo-p/rinkmate/internal/middleware"
	"github.com/hyunwoo-p/rinkmate/internal/notification"
	"github.com/hyunwoo-p/rinkmate/pkg/responses"
)

type PointsController struct {
	repo     PointsRepository
	auditor  *audit.Recorder
	notifier notification.Notifier
}

func NewPointsController(repo PointsRepository, auditor *audit.Recorder, notifier notification.Notifier) *PointsController {
	return &PointsController{repo: repo, auditor: auditor, notifier: notifier}
}

// GetWallet godoc
// @Summary Current points balance
// @Tags points
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.jsonSuccessResponse{data=WalletResponse}
// @Router /points/wallet [get]
func (pc *PointsController) GetWallet(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	balance, err := pc.repo.Balance(userID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load wallet")
		return
	}

	responses.SuccessResponse(c, http.StatusOK, WalletResponse{UserID: userID, Points: balance})
}

// ListTransactions godoc
// @Summary Points ledger history, newest first
// @Tags points
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} responses.jsonPaginatedResponse{data=[]PointTransaction}
// @Router /points/transactions [get]
func (pc *PointsController) ListTransactions(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := pc.repo.ListTransactions(userID, page, pageSize)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	responses.PaginatedResponse(c, http.StatusOK, entries, total, page, pageSize)
}

// CreateChargeRequest godoc
// @Summary File a charge request after a bank transfer
// @Tags points
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChargeRequestInput true "Charge request payload"
// @Success 201 {object} responses.jsonSuccessResponse{data=ChargeRequest}
// @Router /points/charges [post]
func (pc *PointsController) CreateChargeRequest(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var input ChargeRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	req := ChargeRequest{
		UserID:        userID,
		Amount:        input.Amount,
		DepositorName: input.DepositorName,
		Status:        ChargeRequestPending,
	}
	if err := pc.repo.CreateChargeRequest(&req); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create charge request")
		return
	}

	responses.SuccessResponse(c, http.StatusCreated, req)
}

// ListMyChargeRequests godoc
// @Summary List own charge requests
// @Tags points
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.jsonSuccessResponse{data=[]ChargeRequest}
// @Router /points/charges [get]
func (pc *PointsController) ListMyChargeRequests(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	reqs, err := pc.repo.ListChargeRequestsByUser(userID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load charge requests")
		return
	}

	responses.SuccessResponse(c, http.StatusOK, reqs)
}

// ListChargeRequestsForAdmin godoc
// @Summary List charge requests by status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" default(pending)
// @Success 200 {object} responses.jsonSuccessResponse{data=[]ChargeRequest}
// @Router /admin/points/charges [get]
func (pc *PointsController) ListChargeRequestsForAdmin(c *gin.Context) {
	status := ChargeRequestStatus(c.DefaultQuery("status", string(ChargeRequestPending)))

	reqs, err := pc.repo.ListChargeRequestsByStatus(status)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load charge requests")
		return
	}

	responses.SuccessResponse(c, http.StatusOK, reqs)
}

// ConfirmChargeRequest godoc
// @Summary Confirm a charge request and credit the wallet
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charge request ID"
// @Success 200 {object} responses.jsonSuccessResponse{data=ChargeRequest}
// @Failure 404 {object} responses.jsonErrorResponse
// @Failure 409 {object} responses.jsonErrorResponse
// @Router /admin/points/charges/{id}/confirm [post]
func (pc *PointsController) ConfirmChargeRequest(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid charge request ID")
		return
	}

	var confirmed *ChargeRequest
	err = pc.repo.WithTransaction(func(repo PointsRepository) error {
		req, err := repo.GetChargeRequest(id)
		if err != nil {
			return err
		}
		if req.Status != ChargeRequestPending {
			return ErrChargeRequestHandled
		}

		req.Status = ChargeRequestConfirmed
		req.ConfirmedBy = &adminID
		if err := repo.UpdateChargeRequest(req); err != nil {
			return err
		}

		refID := req.ID
		if _, err := repo.Apply(req.UserID, req.Amount, TransactionCharge, "포인트 충전", &refID); err != nil {
			return err
		}

		confirmed = req
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrChargeRequestNotFound):
			responses.ErrorResponse(c, http.StatusNotFound, "Charge request not found")
		case errors.Is(err, ErrChargeRequestHandled):
			responses.ErrorResponse(c, http.StatusConflict, "Charge request already handled")
		default:
			responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to confirm charge request")
		}
		return
	}

	pc.auditor.Record(adminID, "charge_request.confirm", "charge_request", confirmed.ID,
		fmt.Sprintf("credited %d points to user %d", confirmed.Amount, confirmed.UserID))
	pc.notifier.Send(confirmed.UserID, "포인트 충전 완료",
		fmt.Sprintf("%d 포인트가 충전되었습니다.", confirmed.Amount), "")

	responses.SuccessResponse(c, http.StatusOK, confirmed)
}

// RejectChargeRequest godoc
// @Summary Reject a pending charge request
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charge request ID"
// @Success 200 {object} responses.jsonSuccessResponse{data=ChargeRequest}
// @Failure 404 {object} responses.jsonErrorResponse
// @Failure 409 {object} responses.jsonErrorResponse
// @Router /admin/points/charges/{id}/reject [post]
func (pc *PointsController) RejectChargeRequest(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid charge request ID")
		return
	}

	var rejected *ChargeRequest
	err = pc.repo.WithTransaction(func(repo PointsRepository) error {
		req, err := repo.GetChargeRequest(id)
		if err != nil {
			return err
		}
		if req.Status != ChargeRequestPending {
			return ErrChargeRequestHandled
		}

		req.Status = ChargeRequestRejected
		req.ConfirmedBy = &adminID
		if err := repo.UpdateChargeRequest(req); err != nil {
			return err
		}

		rejected = req
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrChargeRequestNotFound):
			responses.ErrorResponse(c, http.StatusNotFound, "Charge request not found")
		case errors.Is(err, ErrChargeRequestHandled):
			responses.ErrorResponse(c, http.StatusConflict, "Charge request already handled")
		default:
			responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to reject charge request")
		}
		return
	}

	pc.auditor.Record(adminID, "charge_request.reject", "charge_request", rejected.ID, "")
	pc.notifier.Send(rejected.UserID, "포인트 충전 거절",
		"충전 요청이 거절되었습니다. 입금 정보를 확인해 주세요.", "")

	responses.SuccessResponse(c, http.StatusOK, rejected)
}

// Adjust godoc
// @Summary Manually adjust a user's balance
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdjustInput true "Adjustment payload"
// @Success 200 {object} responses.jsonSuccessResponse{data=PointTransaction}
// @Failure 422 {object} responses.jsonErrorResponse
// @Router /admin/points/adjust [post]
func (pc *PointsController) Adjust(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var input AdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	var entry *PointTransaction
	err = pc.repo.WithTransaction(func(repo PointsRepository) error {
		entry, err = repo.Apply(input.UserID, input.Delta, TransactionAdminAdjustment, input.Reason, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientPoints) {
			responses.ErrorResponse(c, http.StatusUnprocessableEntity, "Adjustment would make balance negative")
			return
		}
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to apply adjustment")
		return
	}

	pc.auditor.Record(adminID, "points.adjust", "user", input.UserID,
		fmt.Sprintf("delta %d: %s", input.Delta, input.Reason))

	responses.SuccessResponse(c, http.StatusOK, entry)
}

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
