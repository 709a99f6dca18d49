package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hyunwoo-p/rinkmate/config"
	"github.com/hyunwoo-p/rinkmate/internal/middleware"
	"github.com/hyunwoo-p/rinkmate/internal/points"
	"github.com/hyunwoo-p/rinkmate/internal/user"
	"github.com/hyunwoo-p/rinkmate/pkg/responses"
	"github.com/hyunwoo-p/rinkmate/pkg/token"
	"github.com/hyunwoo-p/rinkmate/pkg/utils"
)

type AuthController struct {
	repo       AuthRepository
	pointsRepo points.PointsRepository
	cfg        *config.Config
}

func NewAuthController(repo AuthRepository, pointsRepo points.PointsRepository, cfg *config.Config) *AuthController {
	return &AuthController{repo: repo, pointsRepo: pointsRepo, cfg: cfg}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a user account together with an empty points wallet.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} responses.jsonSuccessResponse{data=UserResponse}
// @Failure 400 {object} responses.jsonErrorResponse
// @Failure 409 {object} responses.jsonErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	if _, err := ac.repo.GetUserByEmail(req.Email); err == nil {
		responses.ErrorResponse(c, http.StatusConflict, "Email already in use")
		return
	}
	if _, err := ac.repo.GetUserByUsername(req.Username); err == nil {
		responses.ErrorResponse(c, http.StatusConflict, "Username already in use")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to process password")
		return
	}

	newUser := user.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
		Password: hashed,
		Phone:    req.Phone,
	}
	if err := ac.repo.CreateUser(&newUser); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// Every account gets a wallet up front so balance reads never miss.
	if err := ac.pointsRepo.EnsureWallet(newUser.ID); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create wallet")
		return
	}

	responses.SuccessResponse(c, http.StatusCreated, FilterUserRecord(&newUser))
}

// Login godoc
// @Summary Log in
// @Description Authenticates by email or username and issues an access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} responses.jsonSuccessResponse{data=AuthResponse}
// @Failure 401 {object} responses.jsonErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	var u *user.User
	var err error
	if strings.Contains(req.LoginIdentifier, "@") {
		u, err = ac.repo.GetUserByEmail(strings.ToLower(req.LoginIdentifier))
	} else {
		u, err = ac.repo.GetUserByUsername(req.LoginIdentifier)
	}
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !utils.CheckPassword(u.Password, req.Password) {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	ac.issueTokens(c, u)
}

// RefreshToken godoc
// @Summary Rotate tokens
// @Description Exchanges a valid refresh token for a new token pair. The old refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} responses.jsonSuccessResponse{data=AuthResponse}
// @Failure 401 {object} responses.jsonErrorResponse
// @Router /auth/refresh [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	stored, err := ac.repo.GetRefreshToken(req.RefreshToken)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	u, err := ac.repo.GetUserByID(stored.UserID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "User no longer exists")
		return
	}

	// Rotation: the presented token is burned before a new pair goes out.
	if err := ac.repo.InvalidateRefreshToken(req.RefreshToken); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to rotate token")
		return
	}

	ac.issueTokens(c, u)
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.jsonSuccessResponse{data=UserResponse}
// @Failure 401 {object} responses.jsonErrorResponse
// @Router /auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.ErrorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	responses.SuccessResponse(c, http.StatusOK, FilterUserRecord(u))
}

// Logout godoc
// @Summary Log out
// @Description Revokes the given refresh token, or all of the user's sessions.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.jsonSuccessResponse
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req LogoutRequest
	// Body is optional; an empty logout still succeeds.
	_ = c.ShouldBindJSON(&req)

	if req.InvalidateAllSessions {
		if err := ac.repo.InvalidateAllRefreshTokens(userID); err != nil {
			responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to log out")
			return
		}
	} else if req.RefreshToken != "" {
		if err := ac.repo.InvalidateRefreshToken(req.RefreshToken); err != nil {
			responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to log out")
			return
		}
	}

	responses.MessageResponse(c, http.StatusOK, "Logged out")
}

// RegisterPushToken godoc
// @Summary Register a device push token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PushTokenRequest true "Push token payload"
// @Success 200 {object} responses.jsonSuccessResponse
// @Router /auth/push-token [post]
func (ac *AuthController) RegisterPushToken(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	if err := ac.repo.UpdatePushToken(userID, req.PushToken); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to save push token")
		return
	}

	responses.MessageResponse(c, http.StatusOK, "Push token registered")
}

func (ac *AuthController) issueTokens(c *gin.Context, u *user.User) {
	accessToken, err := token.GenerateJWT(u.ID, u.IsAdmin, ac.cfg.JWT.AccessTokenSecret, ac.cfg.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	refreshToken, err := token.GenerateRefreshToken(u.ID, ac.cfg.JWT.RefreshTokenSecret, ac.cfg.JWT.RefreshTokenExpiryDays)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	expiresAt := time.Now().AddDate(0, 0, ac.cfg.JWT.RefreshTokenExpiryDays)
	if err := ac.repo.SaveRefreshToken(u.ID, refreshToken, expiresAt); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to persist session")
		return
	}

	responses.SuccessResponse(c, http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u),
	})
}
