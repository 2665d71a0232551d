// Package memtable holds the ordered in-memory index behind the memory
// storage engine. A SkipList is not safe for concurrent use; callers lock.
package memtable

import (
	"math/rand"

	"github.com/distkv/distkv/worker/internal/model"
)

const (
	MaxLevel    = 16
	Probability = 0.5
)

// SkipListNode represents a node in the skip list
type SkipListNode struct {
	Entry   model.Entry
	Forward []*SkipListNode
}

// SkipList keeps entries ordered by key
type SkipList struct {
	head  *SkipListNode
	level int
	size  int
}

// NewSkipList creates a new skip list
func NewSkipList() *SkipList {
	return &SkipList{
		head: &SkipListNode{Forward: make([]*SkipListNode, MaxLevel)},
	}
}

func (sl *SkipList) randomLevel() int {
	level := 0
	for rand.Float64() < Probability && level < MaxLevel-1 {
		level++
	}
	return level
}

// findPredecessors fills update with the rightmost node before key on every level
func (sl *SkipList) findPredecessors(key string, update []*SkipListNode) *SkipListNode {
	current := sl.head
	for i := sl.level; i >= 0; i-- {
		for current.Forward[i] != nil && current.Forward[i].Entry.Key < key {
			current = current.Forward[i]
		}
		if update != nil {
			update[i] = current
		}
	}
	return current.Forward[0]
}

// Insert adds an entry or replaces the stored one with the same key.
// Reports whether the key was new.
func (sl *SkipList) Insert(entry model.Entry) bool {
	update := make([]*SkipListNode, MaxLevel)
	next := sl.findPredecessors(entry.Key, update)

	if next != nil && next.Entry.Key == entry.Key {
		next.Entry = entry
		return false
	}

	newLevel := sl.randomLevel()
	if newLevel > sl.level {
		for i := sl.level + 1; i <= newLevel; i++ {
			update[i] = sl.head
		}
		sl.level = newLevel
	}

	node := &SkipListNode{
		Entry:   entry,
		Forward: make([]*SkipListNode, newLevel+1),
	}
	for i := 0; i <= newLevel; i++ {
		node.Forward[i] = update[i].Forward[i]
		update[i].Forward[i] = node
	}

	sl.size++
	return true
}

// Search finds an entry by key
func (sl *SkipList) Search(key string) (model.Entry, bool) {
	next := sl.findPredecessors(key, nil)
	if next != nil && next.Entry.Key == key {
		return next.Entry, true
	}
	return model.Entry{}, false
}

// Delete removes a key from the skip list
func (sl *SkipList) Delete(key string) bool {
	update := make([]*SkipListNode, MaxLevel)
	target := sl.findPredecessors(key, update)
	if target == nil || target.Entry.Key != key {
		return false
	}

	for i := 0; i <= sl.level; i++ {
		if update[i].Forward[i] != target {
			break
		}
		update[i].Forward[i] = target.Forward[i]
	}

	for sl.level > 0 && sl.head.Forward[sl.level] == nil {
		sl.level--
	}

	sl.size--
	return true
}

// Len returns the number of entries in the skip list
func (sl *SkipList) Len() int {
	return sl.size
}

// Iterator returns an iterator positioned before the first entry
func (sl *SkipList) Iterator() *SkipListIterator {
	return &SkipListIterator{current: sl.head}
}

// SkipListIterator walks entries in key order
type SkipListIterator struct {
	current *SkipListNode
}

// Next moves to the next element
func (it *SkipListIterator) Next() bool {
	if it.current == nil {
		return false
	}
	it.current = it.current.Forward[0]
	return it.current != nil
}

// Entry returns the current entry
func (it *SkipListIterator) Entry() model.Entry {
	if it.current == nil {
		return model.Entry{}
	}
	return it.current.Entry
}
