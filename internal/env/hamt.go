package env

import (
	"hash/fnv"
	"math/bits"
	"sort"
)

// Persistent hash array mapped trie keyed by symbol names.
// Every update returns a new map sharing unchanged nodes with the old one.

const (
	hamtBits = 5
	hamtSize = 1 << hamtBits
	hamtMask = hamtSize - 1
)

type symbolMap[V any] struct {
	root  *hamtNode[V]
	count int
}

type hamtEntry[V any] struct {
	hash  uint32
	key   string
	value V
}

// hamtSlot holds either an entry or a child node.
type hamtSlot[V any] struct {
	entry *hamtEntry[V]
	child *hamtNode[V]
}

type hamtNode[V any] struct {
	bitmap uint32
	slots  []hamtSlot[V]
}

func hashKey(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}

func (m symbolMap[V]) Len() int {
	return m.count
}

func (m symbolMap[V]) Get(key string) (V, bool) {
	if m.root == nil {
		var zero V
		return zero, false
	}
	return m.root.get(hashKey(key), key, 0)
}

func (m symbolMap[V]) Put(key string, value V) symbolMap[V] {
	root := m.root
	if root == nil {
		root = &hamtNode[V]{}
	}
	newRoot, added := root.put(&hamtEntry[V]{hash: hashKey(key), key: key, value: value}, 0)
	count := m.count
	if added {
		count++
	}
	return symbolMap[V]{root: newRoot, count: count}
}

func (m symbolMap[V]) Remove(key string) symbolMap[V] {
	if m.root == nil {
		return m
	}
	newRoot, removed := m.root.remove(hashKey(key), key, 0)
	if !removed {
		return m
	}
	return symbolMap[V]{root: newRoot, count: m.count - 1}
}

// Keys returns all keys in sorted order.
func (m symbolMap[V]) Keys() []string {
	keys := make([]string, 0, m.count)
	m.Range(func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	return keys
}

// Range calls fn for each entry in unspecified order until fn returns false.
func (m symbolMap[V]) Range(fn func(key string, value V) bool) {
	if m.root != nil {
		m.root.walk(fn)
	}
}

func (n *hamtNode[V]) clone() *hamtNode[V] {
	c := &hamtNode[V]{bitmap: n.bitmap, slots: make([]hamtSlot[V], len(n.slots))}
	copy(c.slots, n.slots)
	return c
}

func (n *hamtNode[V]) get(hash uint32, key string, shift uint) (V, bool) {
	var zero V
	if shift >= 32 {
		for _, s := range n.slots {
			if s.entry != nil && s.entry.key == key {
				return s.entry.value, true
			}
		}
		return zero, false
	}

	bit := uint32(1) << ((hash >> shift) & hamtMask)
	if n.bitmap&bit == 0 {
		return zero, false
	}
	s := n.slots[bits.OnesCount32(n.bitmap&(bit-1))]
	if s.child != nil {
		return s.child.get(hash, key, shift+hamtBits)
	}
	if s.entry.hash == hash && s.entry.key == key {
		return s.entry.value, true
	}
	return zero, false
}

func (n *hamtNode[V]) put(e *hamtEntry[V], shift uint) (*hamtNode[V], bool) {
	// Hash bits exhausted: linear collision bucket.
	if shift >= 32 {
		c := n.clone()
		for i, s := range c.slots {
			if s.entry != nil && s.entry.key == e.key {
				c.slots[i] = hamtSlot[V]{entry: e}
				return c, false
			}
		}
		c.slots = append(c.slots, hamtSlot[V]{entry: e})
		return c, true
	}

	bit := uint32(1) << ((e.hash >> shift) & hamtMask)
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	c := n.clone()

	if n.bitmap&bit == 0 {
		c.bitmap |= bit
		c.slots = append(c.slots, hamtSlot[V]{})
		copy(c.slots[pos+1:], c.slots[pos:])
		c.slots[pos] = hamtSlot[V]{entry: e}
		return c, true
	}

	existing := c.slots[pos]
	if existing.child != nil {
		child, added := existing.child.put(e, shift+hamtBits)
		c.slots[pos] = hamtSlot[V]{child: child}
		return c, added
	}
	if existing.entry.hash == e.hash && existing.entry.key == e.key {
		c.slots[pos] = hamtSlot[V]{entry: e}
		return c, false
	}

	// Two keys share this slot: push both one level down.
	child, _ := (&hamtNode[V]{}).put(existing.entry, shift+hamtBits)
	child, _ = child.put(e, shift+hamtBits)
	c.slots[pos] = hamtSlot[V]{child: child}
	return c, true
}

func (n *hamtNode[V]) remove(hash uint32, key string, shift uint) (*hamtNode[V], bool) {
	if shift >= 32 {
		for i, s := range n.slots {
			if s.entry != nil && s.entry.key == key {
				c := &hamtNode[V]{bitmap: n.bitmap, slots: make([]hamtSlot[V], 0, len(n.slots)-1)}
				c.slots = append(c.slots, n.slots[:i]...)
				c.slots = append(c.slots, n.slots[i+1:]...)
				return c, true
			}
		}
		return n, false
	}

	bit := uint32(1) << ((hash >> shift) & hamtMask)
	if n.bitmap&bit == 0 {
		return n, false
	}
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	s := n.slots[pos]

	if s.child == nil {
		if s.entry.hash != hash || s.entry.key != key {
			return n, false
		}
		return n.without(pos, bit), true
	}

	child, removed := s.child.remove(hash, key, shift+hamtBits)
	if !removed {
		return n, false
	}
	switch {
	case len(child.slots) == 0:
		return n.without(pos, bit), true
	case len(child.slots) == 1 && child.slots[0].entry != nil:
		// Pull a lone entry up.
		c := n.clone()
		c.slots[pos] = child.slots[0]
		return c, true
	}
	c := n.clone()
	c.slots[pos] = hamtSlot[V]{child: child}
	return c, true
}

func (n *hamtNode[V]) without(pos int, bit uint32) *hamtNode[V] {
	c := &hamtNode[V]{bitmap: n.bitmap &^ bit, slots: make([]hamtSlot[V], 0, len(n.slots)-1)}
	c.slots = append(c.slots, n.slots[:pos]...)
	c.slots = append(c.slots, n.slots[pos+1:]...)
	return c
}

func (n *hamtNode[V]) walk(fn func(string, V) bool) bool {
	for _, s := range n.slots {
		if s.child != nil {
			if !s.child.walk(fn) {
				return false
			}
			continue
		}
		if !fn(s.entry.key, s.entry.value) {
			return false
		}
	}
	return true
}
