package cas

import "container/list"

// LRUStore wraps a Store and caches stored bytes with LRU eviction, so
// repeated retrievals of the same program skip the underlying store.
type LRUStore struct {
	underlying Store
	cache      map[Hash]*list.Element
	evictList  *list.List
	maxSize    int
	hits       int
	misses     int
}

type cacheEntry struct {
	hash  Hash
	value []byte
}

// NewLRUStore wraps underlying with a cache of at most maxSize
// entries. A non-positive maxSize picks a default.
func NewLRUStore(underlying Store, maxSize int) *LRUStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &LRUStore{
		underlying: underlying,
		cache:      make(map[Hash]*list.Element),
		evictList:  list.New(),
		maxSize:    maxSize,
	}
}

func (l *LRUStore) Put(item Encodable) (Hash, error) {
	return l.underlying.Put(item)
}

func (l *LRUStore) Has(hash Hash) bool {
	return l.underlying.Has(hash)
}

func (l *LRUStore) getValue(h Hash) (bool, []byte, error) {
	if elem, ok := l.cache[h]; ok {
		l.evictList.MoveToFront(elem)
		l.hits++
		return true, elem.Value.(*cacheEntry).value, nil
	}
	l.misses++

	has, data, err := l.underlying.getValue(h)
	if err != nil || !has {
		return false, nil, err
	}

	elem := l.evictList.PushFront(&cacheEntry{hash: h, value: data})
	l.cache[h] = elem
	if l.evictList.Len() > l.maxSize {
		oldest := l.evictList.Back()
		l.evictList.Remove(oldest)
		delete(l.cache, oldest.Value.(*cacheEntry).hash)
	}
	return true, data, nil
}

type CacheStats struct {
	Size    int
	MaxSize int
	Hits    int
	Misses  int
}

func (l *LRUStore) Stats() CacheStats {
	return CacheStats{
		Size:    len(l.cache),
		MaxSize: l.maxSize,
		Hits:    l.hits,
		Misses:  l.misses,
	}
}
