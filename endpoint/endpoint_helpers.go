package endpoint

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/client"
	"github.com/pillcare/pillcare-backend/middleware"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/util"
	"gorm.io/gorm"
)

// Outbound clients, attached once during startup.
var (
	kakaoClient      *client.KakaoClient
	drugSearchClient *client.DrugSearchClient
)

// SetKakaoClient attaches the identity-provider client used by the auth
// endpoints.
func SetKakaoClient(c *client.KakaoClient) {
	kakaoClient = c
}

// SetDrugSearchClient attaches the drug-information client used by the pill
// endpoints.
func SetDrugSearchClient(c *client.DrugSearchClient) {
	drugSearchClient = c
}

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func getCurrentUserOrRespond(c *gin.Context) (*model.User, bool) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Authentication required", Err: fmt.Errorf("no authenticated user in context")})
		return nil, false
	}
	return user, true
}

func parseUintParamOrRespond(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: fmt.Sprintf("Invalid %s", name), Err: err})
		return 0, false
	}
	return uint(v), true
}

func parseUintQueryOrRespond(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: fmt.Sprintf("Missing %s", name), Err: fmt.Errorf("%s query parameter is required", name)})
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: fmt.Sprintf("Invalid %s", name), Err: err})
		return 0, false
	}
	return uint(v), true
}

// respondProviderError maps the normalized third-party error set onto HTTP
// statuses: bad credentials 401, outage 503, anything unexpected 502.
func respondProviderError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, client.ErrProviderUnauthorized):
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: msg, Err: err})
	case errors.Is(err, client.ErrProviderUnavailable):
		util.CallServiceUnavailable(c, util.APIErrorParams{Msg: msg, Err: err})
	default:
		util.CallBadGateway(c, util.APIErrorParams{Msg: msg, Err: err})
	}
}
