package stripemap

import (
	"errors"
	"sync"

	"stripemap/ds"
	"stripemap/util"
)

// Integer is the set of supported key types: any fixed-width integer type.
type Integer = util.Integer

// ErrInvalidPartitionCount is returned when a Map is constructed with a zero
// or negative partition count.
var ErrInvalidPartitionCount = errors.New("stripemap: partition count must be positive")

// partition is one lock stripe: a mutex guarding an ordered sub-map. A
// partition only ever holds keys that shard to its index, and its mutex is
// the sole arbiter of mutation to the sub-map.
type partition[K Integer, V any] struct {
	mu      sync.Mutex
	entries *ds.Tree[K, V]
}

// Map is a concurrent sorted map sharded into independently locked
// partitions. Operations on keys in different partitions proceed in
// parallel; operations on keys in the same partition serialize on that
// partition's mutex. The partition count is fixed at construction.
type Map[K Integer, V any] struct {
	partitions   []*partition[K, V]
	sharding     func(key K) uint64
	dumpFileSize int64
}

// New creates a Map with the given number of partitions and default
// configuration. Returns ErrInvalidPartitionCount if partitionCount <= 0.
func New[K Integer, V any](partitionCount int) (*Map[K, V], error) {
	cfg := DefaultConfig[K]()
	cfg.PartitionCount = partitionCount
	return NewWithConfig[K, V](cfg)
}

// NewWithConfig creates a Map from an explicit Config.
func NewWithConfig[K Integer, V any](cfg Config[K]) (*Map[K, V], error) {
	if cfg.PartitionCount <= 0 {
		return nil, ErrInvalidPartitionCount
	}
	sharding := cfg.Sharding
	if sharding == nil {
		sharding = util.Widen64[K]
	}
	dumpFileSize := cfg.DumpFileSize
	if dumpFileSize <= 0 {
		dumpFileSize = defaultDumpFileSize
	}

	m := &Map[K, V]{
		partitions:   make([]*partition[K, V], cfg.PartitionCount),
		sharding:     sharding,
		dumpFileSize: dumpFileSize,
	}
	for i := range m.partitions {
		m.partitions[i] = &partition[K, V]{entries: ds.NewTree[K, V]()}
	}
	return m, nil
}

func (m *Map[K, V]) getPartition(key K) *partition[K, V] {
	return m.partitions[m.sharding(key)%uint64(len(m.partitions))]
}

// PartitionCount returns the number of partitions, fixed at construction.
func (m *Map[K, V]) PartitionCount() int {
	return len(m.partitions)
}

// Access is a scoped handle over one map entry. It holds the owning
// partition's mutex from creation until Release, and Value points into the
// partition for exactly that window. Callers must Release on every path;
// Update is the safer form when the critical section fits in a callback.
type Access[K Integer, V any] struct {
	p     *partition[K, V]
	Value *V
}

// Release unlocks the partition and invalidates Value. Safe to call more
// than once. After Release, Value is nil so stale use fails fast instead of
// racing.
func (a *Access[K, V]) Release() {
	if a.p == nil {
		return
	}
	p := a.p
	a.p = nil
	a.Value = nil
	p.mu.Unlock()
}

// Access blocks until key's partition lock is acquired and returns a handle
// exposing a mutable reference to the entry for key. If key is absent it is
// inserted with the zero value first, so even a read-only caller may grow
// the map. There is no timeout: a caller needing bounded waiting must wrap
// the call externally.
func (m *Map[K, V]) Access(key K) *Access[K, V] {
	p := m.getPartition(key)
	p.mu.Lock()
	return &Access[K, V]{p: p, Value: p.entries.Upsert(key)}
}

// Update runs fn on the value bound to key while holding the partition lock,
// inserting the zero value first if key is absent. The pointer passed to fn
// must not escape fn.
func (m *Map[K, V]) Update(key K, fn func(value *V)) {
	a := m.Access(key)
	defer a.Release()
	fn(a.Value)
}

// Erase removes key if present. Erasing an absent key is a no-op.
func (m *Map[K, V]) Erase(key K) {
	p := m.getPartition(key)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries.Delete(key)
}

// Get returns a copy of the value bound to key. Unlike Access it never
// inserts.
func (m *Map[K, V]) Get(key K) (V, bool) {
	p := m.getPartition(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	ref, ok := p.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return *ref, true
}

// Set binds key to value, overwriting any previous binding.
func (m *Map[K, V]) Set(key K, value V) {
	m.Update(key, func(ref *V) {
		*ref = value
	})
}

// Has reports whether key is present, without inserting.
func (m *Map[K, V]) Has(key K) bool {
	p := m.getPartition(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.entries.Get(key)
	return ok
}

// Len returns the number of entries. Partitions are counted one at a time
// under their own locks, so under concurrent writers the total is a
// per-partition-consistent figure, not an atomic one.
func (m *Map[K, V]) Len() int {
	n := 0
	for _, p := range m.partitions {
		p.mu.Lock()
		n += p.entries.Size()
		p.mu.Unlock()
	}
	return n
}

// Snapshot merges all partitions into an ordinary ordered map, visiting
// partitions in index order and holding each partition's lock only while
// copying it. The result is NOT an atomic point-in-time view of the whole
// map: a concurrent writer may mutate a not-yet-visited partition after an
// earlier one was copied. Each partition's contribution is individually
// consistent, and no single value is ever observed half-written.
func (m *Map[K, V]) Snapshot() *ds.SortedMap[K, V] {
	result := ds.NewSortedMap[K, V]()
	for _, p := range m.partitions {
		p.mu.Lock()
		p.entries.Ascend(func(key K, ref *V) bool {
			result.Put(key, *ref)
			return true
		})
		p.mu.Unlock()
	}
	return result
}
