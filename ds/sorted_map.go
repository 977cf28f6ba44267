package ds

import (
	"github.com/gansidui/skiplist"

	"stripemap/util"
)

// Entry is one key-value pair of a SortedMap.
type Entry[K util.Integer, V any] struct {
	Key   K
	Value V
}

// Less orders entries by key. Required by the skiplist.
func (e *Entry[K, V]) Less(other interface{}) bool {
	return e.Key < other.(*Entry[K, V]).Key
}

// SortedMap is an ordinary, unsynchronized ordered map: a skiplist keeps
// entries in ascending key order for ordered and ranked access, a plain map
// serves point lookups. Keys are unique.
type SortedMap[K util.Integer, V any] struct {
	skl   *skiplist.SkipList
	items map[K]*Entry[K, V]
}

func NewSortedMap[K util.Integer, V any]() *SortedMap[K, V] {
	return &SortedMap[K, V]{
		skl:   skiplist.New(),
		items: make(map[K]*Entry[K, V]),
	}
}

// Put binds key to value, replacing any previous binding.
func (sm *SortedMap[K, V]) Put(key K, value V) {
	if old, ok := sm.items[key]; ok {
		sm.skl.Delete(old)
	}
	e := &Entry[K, V]{Key: key, Value: value}
	sm.items[key] = e
	sm.skl.Insert(e)
}

func (sm *SortedMap[K, V]) Get(key K) (V, bool) {
	if e, ok := sm.items[key]; ok {
		return e.Value, true
	}
	var zero V
	return zero, false
}

func (sm *SortedMap[K, V]) Has(key K) bool {
	_, ok := sm.items[key]
	return ok
}

// Delete removes key and reports whether it was present.
func (sm *SortedMap[K, V]) Delete(key K) bool {
	e, ok := sm.items[key]
	if !ok {
		return false
	}
	delete(sm.items, key)
	sm.skl.Delete(e)
	return true
}

func (sm *SortedMap[K, V]) Len() int {
	return len(sm.items)
}

// Ascend visits entries in ascending key order until fn returns false.
func (sm *SortedMap[K, V]) Ascend(fn func(key K, value V) bool) {
	if sm.skl.Len() == 0 {
		return
	}
	for e := sm.skl.GetElementByRank(1); e != nil; e = e.Next() {
		entry := e.Value.(*Entry[K, V])
		if !fn(entry.Key, entry.Value) {
			return
		}
	}
}

// Min returns the smallest key and its value.
func (sm *SortedMap[K, V]) Min() (K, V, bool) {
	return sm.byRank(1)
}

// Max returns the largest key and its value.
func (sm *SortedMap[K, V]) Max() (K, V, bool) {
	return sm.byRank(sm.skl.Len())
}

// Rank returns the 1-based ascending rank of key, or 0 if key is absent.
func (sm *SortedMap[K, V]) Rank(key K) int {
	e, ok := sm.items[key]
	if !ok {
		return 0
	}
	return sm.skl.GetRank(e)
}

func (sm *SortedMap[K, V]) byRank(rank int) (K, V, bool) {
	if rank < 1 || rank > sm.skl.Len() {
		var k K
		var v V
		return k, v, false
	}
	e := sm.skl.GetElementByRank(rank).Value.(*Entry[K, V])
	return e.Key, e.Value, true
}
