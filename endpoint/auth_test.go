package endpoint

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pillcare/pillcare-backend/client"
	"github.com/pillcare/pillcare-backend/middleware"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/util"
	"github.com/stretchr/testify/assert"
)

func stubKakao(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	SetKakaoClient(client.NewKakaoClientWithURL(srv.URL))
}

func TestKakaoLoginCreatesUserAndIssuesTokens(t *testing.T) {
	r, db := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/kakao", KakaoLogin)

	stubKakao(t, http.StatusOK, `{"id":12345,"kakao_account":{"profile":{"nickname":"tester","profile_image_url":"https://img.example/p.png"}}}`)

	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/kakao", KakaoLoginRequest{KakaoAccessToken: "provider-token"})
	resp := assertSuccess(t, w)

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", resp.Data)
	}
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.Equal(t, "bearer", data["token_type"])

	var user model.User
	if err := db.Where("kakao_id = ?", "12345").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	assert.Equal(t, "tester", user.Nickname)
}

func TestKakaoLoginExistingUserNotDuplicated(t *testing.T) {
	r, db := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/kakao", KakaoLogin)
	createTestUser(t, db, "12345")

	stubKakao(t, http.StatusOK, `{"id":12345}`)

	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/kakao", KakaoLoginRequest{KakaoAccessToken: "provider-token"})
	assertSuccess(t, w)

	var count int64
	db.Model(&model.User{}).Where("kakao_id = ?", "12345").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestKakaoLoginProviderRejection(t *testing.T) {
	r, _ := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/kakao", KakaoLogin)

	stubKakao(t, http.StatusUnauthorized, `{}`)
	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/kakao", KakaoLoginRequest{KakaoAccessToken: "bad-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestKakaoLoginProviderOutage(t *testing.T) {
	r, _ := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/kakao", KakaoLogin)

	stubKakao(t, http.StatusBadGateway, `{}`)
	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/kakao", KakaoLoginRequest{KakaoAccessToken: "token"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestKakaoLoginWithoutClientConfigured(t *testing.T) {
	r, _ := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/kakao", KakaoLogin)

	SetKakaoClient(nil)
	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/kakao", KakaoLoginRequest{KakaoAccessToken: "token"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestKakaoLoginMissingPayload(t *testing.T) {
	r, _ := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/kakao", KakaoLogin)

	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/kakao", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	r, _ := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/kakao", KakaoLogin)
	r.POST("/api/auth/refresh", RefreshToken)

	stubKakao(t, http.StatusOK, `{"id":12345,"kakao_account":{"profile":{"nickname":"tester"}}}`)
	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/kakao", KakaoLoginRequest{KakaoAccessToken: "provider-token"})
	resp := assertSuccess(t, w)
	data := resp.Data.(map[string]interface{})
	refreshToken, _ := data["refresh_token"].(string)
	if refreshToken == "" {
		t.Fatal("no refresh token issued")
	}

	w = doJSONRequest(t, r, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{RefreshToken: refreshToken})
	resp = assertSuccess(t, w)
	data = resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
}

func TestRefreshWithAccessTokenFails(t *testing.T) {
	r, db := setupEndpointTest(t, &fakeDetector{})
	r.POST("/api/auth/refresh", RefreshToken)

	user := createTestUser(t, db, "12345")
	accessToken := issueTestAccessToken(t, user)

	w := doJSONRequest(t, r, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{RefreshToken: accessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUserResolvesSubject(t *testing.T) {
	r, db := setupEndpointTest(t, &fakeDetector{})
	r.GET("/api/auth/users/me", middleware.AuthRequired(), CurrentUser)

	user := createTestUser(t, db, "12345")
	token := issueTestAccessToken(t, user)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := assertSuccess(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "12345", data["kakao_id"])
}

func TestCurrentUserPopulatesSubjectCache(t *testing.T) {
	r, db := setupEndpointTest(t, &fakeDetector{})
	r.GET("/api/auth/users/me", middleware.AuthRequired(), CurrentUser)

	user := createTestUser(t, db, "12345")
	token := issueTestAccessToken(t, user)

	_, ok := util.UserCacheGet(user.KakaoID)
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assertSuccess(t, w)

	// The lookup result is cached under the subject for later requests.
	cached, ok := util.UserCacheGet(user.KakaoID)
	if !ok {
		t.Fatal("user not cached after authenticated request")
	}
	assert.Equal(t, user.ID, cached.ID)

	// A second request is served from the cache: the row can be gone from
	// the database and the subject still resolves.
	if err := db.Delete(&model.User{}, user.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/auth/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assertSuccess(t, w)
}

func TestCurrentUserMissingToken(t *testing.T) {
	r, _ := setupEndpointTest(t, &fakeDetector{})
	r.GET("/api/auth/users/me", middleware.AuthRequired(), CurrentUser)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/users/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUserOrphanedToken(t *testing.T) {
	r, _ := setupEndpointTest(t, &fakeDetector{})
	r.GET("/api/auth/users/me", middleware.AuthRequired(), CurrentUser)

	// Valid token for a subject with no user row.
	orphan := &model.User{KakaoID: "ghost-999", Nickname: "ghost"}
	token := issueTestAccessToken(t, orphan)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
