package algebra

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/floatdrop/lru"
	fasthex "github.com/tmthrgd/go-hex"
	"go.uber.org/zap"
)

// TableCache keeps the most recently used fixed-base tables of a curve,
// keyed by base point and window.
type TableCache struct {
	mu     sync.Mutex
	cache  *lru.LRU[string, *FixedBaseTable]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewTableCache returns a cache holding at most size tables.
func NewTableCache(size int) *TableCache {
	return &TableCache{cache: lru.New[string, *FixedBaseTable](size)}
}

func tableKey(base *Affine, w uint) string {
	return base.c.name + "/" + strconv.FormatUint(uint64(w), 10) + "/" + fasthex.EncodeToString(base.EncodeCompressed())
}

// Get returns the table of base for window w, building it on a miss.
func (t *TableCache) Get(base *Affine, w uint) *FixedBaseTable {
	key := tableKey(base, w)
	t.mu.Lock()
	v := t.cache.Get(key)
	t.mu.Unlock()
	if v != nil {
		t.hits.Add(1)
		return *v
	}

	t.misses.Add(1)
	logger().Debug("table cache miss", zap.String("key", key))
	tbl := base.c.NewFixedBaseTable(base, w)
	t.mu.Lock()
	t.cache.Set(key, tbl)
	t.mu.Unlock()
	return tbl
}

// Stats returns the number of hits and misses so far.
func (t *TableCache) Stats() (hits, misses uint64) {
	return t.hits.Load(), t.misses.Load()
}
