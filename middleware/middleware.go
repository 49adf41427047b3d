package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/detect"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/storage"
	"github.com/pillcare/pillcare-backend/store"
	"github.com/pillcare/pillcare-backend/util"
	"gorm.io/gorm"
)

// Context keys for request-scoped dependencies and identity.
const (
	DBKey          = "db"
	DetectorKey    = "detector"
	ImageStoreKey  = "image_store"
	CurrentUserKey = "current_user"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PUT")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware stores the shared gorm handle in the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the request-scoped DB handle, or nil if none was injected.
func GetDB(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(DBKey); ok {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return nil
}

// DetectorMiddleware injects the detection adapter. The record workflow
// receives it through the context instead of reaching for a global model.
func DetectorMiddleware(d detect.Detector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DetectorKey, d)
		c.Next()
	}
}

// GetDetector returns the injected detection adapter, or nil.
func GetDetector(c *gin.Context) detect.Detector {
	if v, ok := c.Get(DetectorKey); ok {
		if d, ok := v.(detect.Detector); ok {
			return d
		}
	}
	return nil
}

// ImageStoreMiddleware injects the original-image store.
func ImageStoreMiddleware(s *storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ImageStoreKey, s)
		c.Next()
	}
}

// GetImageStore returns the injected image store, or nil.
func GetImageStore(c *gin.Context) *storage.ImageStore {
	if v, ok := c.Get(ImageStoreKey); ok {
		if s, ok := v.(*storage.ImageStore); ok {
			return s
		}
	}
	return nil
}

// AuthRequired verifies the bearer access token and resolves the current
// user from the database. A valid token whose user disappeared is rejected
// with 401 and logged as an anomaly rather than silently recovered.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Missing bearer token", Err: fmt.Errorf("authorization header absent or malformed")})
			c.Abort()
			return
		}

		claims, err := util.VerifyToken(token, util.TokenTypeAccess)
		if err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid access token", Err: err})
			c.Abort()
			return
		}
		kakaoID, err := util.SubjectFromClaims(claims)
		if err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid access token payload", Err: err})
			c.Abort()
			return
		}

		// Known subjects come from the cache; user rows never change after
		// first login, so a hit skips the DB round-trip entirely.
		if cached, ok := util.UserCacheGet(kakaoID); ok {
			c.Set(CurrentUserKey, cached)
			c.Next()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
			c.Abort()
			return
		}

		user, err := store.GetUserByKakaoID(db, kakaoID)
		if errors.Is(err, store.ErrNotFound) {
			util.LogOrphanedToken(kakaoID, c.ClientIP())
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not found for token", Err: err})
			c.Abort()
			return
		}
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to resolve current user", Err: err})
			c.Abort()
			return
		}

		util.UserCacheSet(user)
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// GetCurrentUser returns the authenticated user set by AuthRequired, or nil.
func GetCurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
