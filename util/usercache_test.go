package util

import (
	"fmt"
	"testing"

	"github.com/pillcare/pillcare-backend/model"
	"github.com/stretchr/testify/assert"
)

func TestUserCacheSetGet(t *testing.T) {
	InitUserCache(10)

	_, ok := UserCacheGet("kakao-1")
	assert.False(t, ok)

	UserCacheSet(&model.User{ID: 7, KakaoID: "kakao-1", Nickname: "tester"})
	user, ok := UserCacheGet("kakao-1")
	assert.True(t, ok)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "tester", user.Nickname)

	// Overwrite keeps a single entry per subject.
	UserCacheSet(&model.User{ID: 8, KakaoID: "kakao-1", Nickname: "renamed"})
	user, ok = UserCacheGet("kakao-1")
	assert.True(t, ok)
	assert.Equal(t, uint(8), user.ID)
}

func TestUserCacheReturnsCopy(t *testing.T) {
	InitUserCache(10)

	UserCacheSet(&model.User{ID: 1, KakaoID: "kakao-1", Nickname: "tester"})
	first, _ := UserCacheGet("kakao-1")
	first.Nickname = "mutated"

	second, ok := UserCacheGet("kakao-1")
	assert.True(t, ok)
	assert.Equal(t, "tester", second.Nickname)
}

func TestUserCacheEviction(t *testing.T) {
	InitUserCache(2)

	for i := 1; i <= 3; i++ {
		UserCacheSet(&model.User{ID: uint(i), KakaoID: fmt.Sprintf("kakao-%d", i)})
	}

	// The first subject is the least recently used and must be gone.
	_, ok := UserCacheGet("kakao-1")
	assert.False(t, ok)
	_, ok = UserCacheGet("kakao-2")
	assert.True(t, ok)
	_, ok = UserCacheGet("kakao-3")
	assert.True(t, ok)
}

func TestUserCacheIgnoresInvalidEntries(t *testing.T) {
	InitUserCache(10)

	UserCacheSet(nil)
	UserCacheSet(&model.User{ID: 1})

	_, ok := UserCacheGet("")
	assert.False(t, ok)
}
