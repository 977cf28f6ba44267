package stripemap

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stripemap/util"
)

func TestNew_PartitionCount(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -4, true},
		{"one", 1, false},
		{"many", 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New[int, int](tt.count)
			if tt.wantErr {
				assert.Nil(t, m)
				assert.ErrorIs(t, err, ErrInvalidPartitionCount)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.count, m.PartitionCount())
			}
		})
	}
}

func TestMap_AccessUpsertDefault(t *testing.T) {
	m, err := New[int, int](3)
	assert.Nil(t, err)

	a := m.Access(42)
	assert.Equal(t, 0, *a.Value)
	*a.Value = 7
	a.Release()

	v, ok := m.Get(42)
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	// a bare read through Access still inserts
	m.Access(99).Release()
	assert.True(t, m.Has(99))
}

func TestAccess_ReleaseIdempotent(t *testing.T) {
	m, _ := New[int, int](1)

	a := m.Access(1)
	a.Release()
	assert.Nil(t, a.Value)
	a.Release()

	// the partition lock is free again
	b := m.Access(1)
	b.Release()
}

func TestMap_Update(t *testing.T) {
	m, _ := New[int, string](4)

	m.Update(5, func(v *string) {
		assert.Equal(t, "", *v)
		*v = "x"
	})
	m.Update(5, func(v *string) {
		*v += "y"
	})

	v, ok := m.Get(5)
	assert.True(t, ok)
	assert.Equal(t, "xy", v)
}

func TestMap_EraseAbsent(t *testing.T) {
	m, _ := New[int, int](3)
	m.Set(1, 10)
	m.Set(2, 20)

	m.Erase(777)

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.Len())
	v, ok := snap.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	m.Erase(1)
	m.Erase(1)
	assert.False(t, m.Has(1))
	assert.Equal(t, 1, m.Len())
}

func runConcurrentUpdates(m *Map[int, int], workers, keyCount int) {
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pass := 0; pass < 2; pass++ {
				for key := -keyCount / 2; key < keyCount-keyCount/2; key++ {
					m.Update(key, func(v *int) {
						*v++
					})
				}
			}
		}()
	}
	wg.Wait()
}

func TestMap_ConcurrentUpdates(t *testing.T) {
	const (
		workers  = 3
		keyCount = 50000
	)
	m, err := New[int, int](3)
	assert.Nil(t, err)

	runConcurrentUpdates(m, workers, keyCount)

	snap := m.Snapshot()
	assert.Equal(t, keyCount, snap.Len())
	snap.Ascend(func(key, value int) bool {
		if value != workers*2 {
			t.Errorf("key %v = %v, want %v", key, value, workers*2)
			return false
		}
		return true
	})
}

func TestMap_ReadAndWrite(t *testing.T) {
	const keyCount = 50000
	m, err := New[uint, string](5)
	assert.Nil(t, err)

	updater := func() {
		for i := uint(0); i < keyCount; i++ {
			m.Update(i, func(v *string) {
				*v += "a"
			})
		}
	}
	reader := func() []string {
		result := make([]string, keyCount)
		for i := uint(0); i < keyCount; i++ {
			a := m.Access(i)
			result[i] = *a.Value
			a.Release()
		}
		return result
	}

	var wg sync.WaitGroup
	results := make([][]string, 2)
	wg.Add(4)
	go func() { defer wg.Done(); updater() }()
	go func() { defer wg.Done(); results[0] = reader() }()
	go func() { defer wg.Done(); updater() }()
	go func() { defer wg.Done(); results[1] = reader() }()
	wg.Wait()

	for _, result := range results {
		for i, s := range result {
			if s != "" && s != "a" && s != "aa" {
				t.Fatalf("key %v: read torn value %q", i, s)
			}
		}
	}
}

func TestMap_PartitionIsolation(t *testing.T) {
	m, _ := New[int, int](2)

	// hold partition 0
	held := m.Access(0)
	defer held.Release()

	done := make(chan struct{})
	go func() {
		// key 1 lives in partition 1, must not block on partition 0
		m.Access(1).Release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("access to a different partition blocked behind a held lock")
	}
}

func TestMap_SamePartitionSerializes(t *testing.T) {
	m, _ := New[int, int](2)

	held := m.Access(0)

	done := make(chan struct{})
	go func() {
		// key 2 shares partition 0 with the held key
		m.Access(2).Release()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("access to a held partition did not block")
	case <-time.After(50 * time.Millisecond):
	}

	held.Release()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("access did not proceed after the lock was released")
	}
}

func TestMap_SnapshotPerEntryConsistency(t *testing.T) {
	const keyCount = 2000
	m, _ := New[int, int](8)
	for key := 0; key < keyCount; key++ {
		m.Set(key, 1)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for key := 0; key < keyCount; key++ {
			m.Set(key, 2)
		}
	}()

	// a mix of old and new values is allowed, a torn value is not
	snap := m.Snapshot()
	wg.Wait()

	assert.Equal(t, keyCount, snap.Len())
	snap.Ascend(func(key, value int) bool {
		if value != 1 && value != 2 {
			t.Errorf("key %v = %v, want 1 or 2", key, value)
			return false
		}
		return true
	})
}

func TestMap_SnapshotOrdered(t *testing.T) {
	m, _ := New[int, int](4)
	for _, key := range []int{30, -10, 0, 7, -99, 15} {
		m.Set(key, key)
	}
	m.Erase(7)

	snap := m.Snapshot()
	assert.Equal(t, 5, snap.Len())

	want := []int{-99, -10, 0, 15, 30}
	var got []int
	snap.Ascend(func(key, value int) bool {
		assert.Equal(t, key, value)
		got = append(got, key)
		return true
	})
	assert.Equal(t, want, got)

	minKey, _, ok := snap.Min()
	assert.True(t, ok)
	assert.Equal(t, -99, minKey)
	maxKey, _, ok := snap.Max()
	assert.True(t, ok)
	assert.Equal(t, 30, maxKey)
}

func TestMap_SpreadSharding(t *testing.T) {
	cfg := DefaultConfig[int]()
	cfg.PartitionCount = 7
	cfg.Sharding = util.Spread64[int]

	m, err := NewWithConfig[int, int](cfg)
	assert.Nil(t, err)

	runConcurrentUpdates(m, 3, 1000)

	snap := m.Snapshot()
	assert.Equal(t, 1000, snap.Len())
	snap.Ascend(func(key, value int) bool {
		assert.Equal(t, 6, value)
		return value == 6
	})
}
