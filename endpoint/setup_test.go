package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/detect"
	"github.com/pillcare/pillcare-backend/middleware"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/storage"
	"github.com/pillcare/pillcare-backend/util"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// endpointTestModels is the standard set of models migrated for endpoint tests.
var endpointTestModels = []interface{}{
	&model.User{},
	&model.Pharmacy{},
	&model.Consultation{},
	&model.Pill{},
	&model.Record{},
	&model.RecordDetail{},
}

// fakeDetector returns canned detections without talking to a model server.
type fakeDetector struct {
	detections []detect.Detection
	err        error
}

func (f *fakeDetector) Detect(ctx context.Context, imageBytes []byte) ([]detect.Detection, error) {
	return f.detections, f.err
}

// setupEndpointTestDB creates an in-memory SQLite database with the full
// schema migrated. The database name is uniquified with the current Unix
// nanosecond timestamp so endpoint tests never see each other's rows.
func setupEndpointTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("APPENV", "test")
	t.Setenv("JWTSECRET", "test-secret-123")
	util.SetJWTSecret("test-secret-123")
	util.InitPillCache(100)
	util.InitUserCache(100)

	dsn := fmt.Sprintf("file:endpointtest_%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// setupEndpointTest returns a Gin engine and database connection configured
// for endpoint tests, with a fake detector and a temp image store injected.
func setupEndpointTest(t *testing.T, detector detect.Detector) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupEndpointTestDB(t)

	imageStore, err := storage.NewImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("image store: %v", err)
	}

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.DetectorMiddleware(detector))
	r.Use(middleware.ImageStoreMiddleware(imageStore))
	return r, db
}

func createTestUser(t *testing.T, db *gorm.DB, kakaoID string) *model.User {
	t.Helper()
	user := model.User{KakaoID: kakaoID, Nickname: "tester"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createTestPill(t *testing.T, db *gorm.DB, code, name string) *model.Pill {
	t.Helper()
	pill := model.Pill{DrugCode: code, DrugName: name, Dosage: "1 tablet", Effect: "test", Caution: "test"}
	if err := db.Create(&pill).Error; err != nil {
		t.Fatalf("create pill: %v", err)
	}
	return &pill
}

func issueTestAccessToken(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := util.IssueAccessToken(user.KakaoID, user.Nickname, time.Minute)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	return token
}

func doJSONRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartImageRequest(t *testing.T, path, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) util.APIResponse {
	t.Helper()
	var resp util.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

func assertSuccess(t *testing.T, w *httptest.ResponseRecorder) util.APIResponse {
	t.Helper()
	resp := decodeResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	return resp
}
