package util

import (
	"container/list"
	"sync"
)

// LRU cache for detection label -> pill id. The pill reference table is
// populated out-of-band and never mutated by request flows, so cached
// matches cannot go stale within a process lifetime.
type pillEntry struct {
	label  string
	pillID uint
}

type pillLRU struct {
	mu       sync.Mutex
	ll       *list.List
	cache    map[string]*list.Element
	capacity int
}

var pillCache *pillLRU

// InitPillCache initializes the LRU cache with given capacity.
// If capacity <= 0, a default of 1000 is used.
func InitPillCache(capacity int) {
	if capacity <= 0 {
		capacity = 1000
	}
	pillCache = &pillLRU{
		ll:       list.New(),
		cache:    make(map[string]*list.Element),
		capacity: capacity,
	}
}

// PillCacheGet returns the pill id and true if the label is cached.
func PillCacheGet(label string) (uint, bool) {
	if pillCache == nil {
		return 0, false
	}
	pillCache.mu.Lock()
	defer pillCache.mu.Unlock()
	if ele, ok := pillCache.cache[label]; ok {
		pillCache.ll.MoveToFront(ele)
		if e, ok := ele.Value.(pillEntry); ok {
			return e.pillID, true
		}
	}
	return 0, false
}

// PillCacheSet stores the pill id for a detection label, evicting the least
// recently used entry when over capacity.
func PillCacheSet(label string, pillID uint) {
	if pillCache == nil {
		return
	}
	pillCache.mu.Lock()
	defer pillCache.mu.Unlock()
	if ele, ok := pillCache.cache[label]; ok {
		ele.Value = pillEntry{label: label, pillID: pillID}
		pillCache.ll.MoveToFront(ele)
		return
	}
	ele := pillCache.ll.PushFront(pillEntry{label: label, pillID: pillID})
	pillCache.cache[label] = ele
	if pillCache.ll.Len() > pillCache.capacity {
		oldest := pillCache.ll.Back()
		if oldest != nil {
			pillCache.ll.Remove(oldest)
			if e, ok := oldest.Value.(pillEntry); ok {
				delete(pillCache.cache, e.label)
			}
		}
	}
}
