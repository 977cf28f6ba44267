package ds

import (
	art "github.com/plar/go-adaptive-radix-tree"

	"stripemap/util"
)

// Tree is an ordered key-value map backed by an adaptive radix tree. Keys are
// stored in their order-preserving byte encoding, so iteration yields numeric
// key order. Values live behind stable pointers: Upsert returns the same *V
// for a key until the key is deleted.
type Tree[K util.Integer, V any] struct {
	tree art.Tree
}

func NewTree[K util.Integer, V any]() *Tree[K, V] {
	return &Tree[K, V]{tree: art.New()}
}

// Upsert returns the value pointer bound to key, inserting a zero value
// first if the key is absent.
func (t *Tree[K, V]) Upsert(key K) *V {
	enc := util.KeyToByte(key)
	if val, found := t.tree.Search(enc); found {
		return val.(*V)
	}
	ref := new(V)
	t.tree.Insert(enc, ref)
	return ref
}

func (t *Tree[K, V]) Get(key K) (*V, bool) {
	val, found := t.tree.Search(util.KeyToByte(key))
	if !found {
		return nil, false
	}
	return val.(*V), true
}

// Delete removes key and reports whether it was present.
func (t *Tree[K, V]) Delete(key K) bool {
	_, deleted := t.tree.Delete(util.KeyToByte(key))
	return deleted
}

func (t *Tree[K, V]) Size() int {
	return t.tree.Size()
}

// Ascend visits entries in ascending key order until fn returns false.
func (t *Tree[K, V]) Ascend(fn func(key K, ref *V) bool) {
	t.tree.ForEach(func(node art.Node) bool {
		if node.Kind() != art.Leaf {
			return true
		}
		return fn(util.ByteToKey[K](node.Key()), node.Value().(*V))
	})
}
