package util

import (
	"container/list"
	"sync"

	"github.com/pillcare/pillcare-backend/model"
)

// LRU cache for kakao subject -> user row, fronting the auth middleware's
// per-request lookup. A user row is created on first login and its identity
// fields are never mutated afterwards, so cached entries cannot go stale;
// the capacity bound keeps memory flat regardless of how many subjects
// authenticate.
type authEntry struct {
	kakaoID string
	user    model.User
}

type authLRU struct {
	mu       sync.Mutex
	ll       *list.List
	cache    map[string]*list.Element
	capacity int
}

var authUserCache *authLRU

// InitUserCache initializes the LRU cache with given capacity.
// If capacity <= 0, a default of 1000 is used.
func InitUserCache(capacity int) {
	if capacity <= 0 {
		capacity = 1000
	}
	authUserCache = &authLRU{
		ll:       list.New(),
		cache:    make(map[string]*list.Element),
		capacity: capacity,
	}
}

// UserCacheGet returns a copy of the cached user for a subject, if present.
func UserCacheGet(kakaoID string) (*model.User, bool) {
	if authUserCache == nil {
		return nil, false
	}
	authUserCache.mu.Lock()
	defer authUserCache.mu.Unlock()
	if ele, ok := authUserCache.cache[kakaoID]; ok {
		authUserCache.ll.MoveToFront(ele)
		if e, ok := ele.Value.(authEntry); ok {
			user := e.user
			return &user, true
		}
	}
	return nil, false
}

// UserCacheSet stores a user row under its subject, evicting the least
// recently used entry when over capacity.
func UserCacheSet(user *model.User) {
	if authUserCache == nil || user == nil || user.KakaoID == "" {
		return
	}
	authUserCache.mu.Lock()
	defer authUserCache.mu.Unlock()
	if ele, ok := authUserCache.cache[user.KakaoID]; ok {
		ele.Value = authEntry{kakaoID: user.KakaoID, user: *user}
		authUserCache.ll.MoveToFront(ele)
		return
	}
	ele := authUserCache.ll.PushFront(authEntry{kakaoID: user.KakaoID, user: *user})
	authUserCache.cache[user.KakaoID] = ele
	if authUserCache.ll.Len() > authUserCache.capacity {
		oldest := authUserCache.ll.Back()
		if oldest != nil {
			authUserCache.ll.Remove(oldest)
			if e, ok := oldest.Value.(authEntry); ok {
				delete(authUserCache.cache, e.kakaoID)
			}
		}
	}
}
