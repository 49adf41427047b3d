package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/config"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/store"
	"github.com/pillcare/pillcare-backend/util"
)

type KakaoLoginRequest struct {
	KakaoAccessToken string `json:"kakao_access_token" binding:"required" example:"xxxxxxxx"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiJ9..."`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiJ9..."`
	TokenType    string `json:"token_type" example:"bearer"`
}

func issueTokenPair(user *model.User) (*TokenPairResponse, error) {
	cfg := config.LoadConfig()

	accessToken, err := util.IssueAccessToken(user.KakaoID, user.Nickname, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := util.IssueRefreshToken(user.KakaoID, time.Duration(cfg.RefreshTokenDays)*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// KakaoLogin godoc
// @Summary      Kakao login
// @Description  Exchange a Kakao access token for a local access/refresh token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body KakaoLoginRequest true "Kakao access token"
// @Success      200 {object} util.APIResponse{data=TokenPairResponse} "Token pair issued"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Kakao rejected the token"
// @Failure      503 {object} util.APIResponse "Kakao unavailable"
// @Router       /api/auth/kakao [post]
func KakaoLogin(c *gin.Context) {
	var req KakaoLoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	if kakaoClient == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Identity provider not configured", Err: fmt.Errorf("kakao client missing")})
		return
	}

	kakaoUser, err := kakaoClient.UserInfo(c.Request.Context(), req.KakaoAccessToken)
	if err != nil {
		util.LogLoginFailure(c.ClientIP(), c.Request.UserAgent(), err.Error())
		respondProviderError(c, "Kakao login failed", err)
		return
	}

	user, err := store.GetOrCreateUser(db, kakaoUser.KakaoID, kakaoUser.Nickname, kakaoUser.ProfileImageURL)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to store user", Err: err})
		return
	}

	pair, err := issueTokenPair(user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate tokens", Err: err})
		return
	}

	util.LogLoginSuccess(user.KakaoID, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Login successful", Data: pair})
}

// RefreshToken godoc
// @Summary      Refresh token pair
// @Description  Exchange a valid refresh token for a new access/refresh pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} util.APIResponse{data=TokenPairResponse} "New token pair issued"
// @Failure      401 {object} util.APIResponse "Refresh token invalid or expired"
// @Router       /api/auth/refresh [post]
func RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	claims, err := util.VerifyToken(req.RefreshToken, util.TokenTypeRefresh)
	if err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Refresh token invalid or expired. Please log in again.", Err: err})
		return
	}
	kakaoID, err := util.SubjectFromClaims(claims)
	if err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid refresh token payload", Err: err})
		return
	}

	user, err := store.GetUserByKakaoID(db, kakaoID)
	if errors.Is(err, store.ErrNotFound) {
		util.LogOrphanedToken(kakaoID, c.ClientIP())
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not found for refresh token", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to resolve user", Err: err})
		return
	}

	pair, err := issueTokenPair(user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate tokens", Err: err})
		return
	}

	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventTokenRefresh,
		Subject:   user.KakaoID,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   "Token pair refreshed",
	})
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Token refreshed", Data: pair})
}

// CurrentUser godoc
// @Summary      Current user
// @Description  Return the profile of the bearer-authenticated user
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=model.User} "Current user"
// @Failure      401 {object} util.APIResponse "Missing or invalid token"
// @Router       /api/auth/users/me [get]
func CurrentUser(c *gin.Context) {
	user, ok := getCurrentUserOrRespond(c)
	if !ok {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Current user", Data: user})
}
