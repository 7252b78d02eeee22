// Copyright 2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package skip is an append-only skip list used to buffer edits to
// encoded row keys before they are flushed to a sorted store. Deletes
// are recorded as tombstones so that a merge with the store can hide
// the deleted rows.
package skip

import (
	"bytes"
	"math"
	"math/rand"
)

const (
	levels   = 10
	maxNodes = math.MaxUint32 - 1
	head     = ref(0)
)

// KeyOrder orders the keys of a List.
type KeyOrder func(l, r []byte) (cmp int)

// List is a sorted map of byte keys to edits. A List is not safe for
// concurrent use.
//
// Nodes are never modified once an edit replaces them; an overwrite
// appends a fresh node and relinks its neighbours. Everything appended
// before |saved| is the state Revert returns to.
type List struct {
	nodes      []node
	live       uint32
	tombstones uint32
	saved      ref
	order      KeyOrder
}

// ref is the index of a node in List.nodes. The head node at index 0
// is both the first and the last link of every level.
type ref uint32

type tower [levels]ref

type node struct {
	key, val []byte
	tomb     bool
	level    uint8
	next     tower
	prev     ref
}

// NewSkipList returns an empty List ordered by |order|, or by
// bytes.Compare when |order| is nil.
func NewSkipList(order KeyOrder) *List {
	if order == nil {
		order = bytes.Compare
	}
	l := &List{order: order}
	l.Truncate()
	return l
}

// Checkpoint records a checkpoint that can be reverted to.
func (l *List) Checkpoint() {
	l.saved = ref(len(l.nodes))
}

// Revert discards every edit made since the last Checkpoint.
func (l *List) Revert() {
	history := append([]node(nil), l.nodes[1:l.saved]...)
	l.Truncate()
	for _, n := range history {
		l.put(n.key, n.val, n.tomb)
	}
	l.Checkpoint()
}

// Truncate deletes all entries from the list.
func (l *List) Truncate() {
	if l.nodes == nil {
		l.nodes = make([]node, 1, 8)
	}
	l.nodes = l.nodes[:1]
	l.nodes[head] = node{level: levels - 1}
	l.live, l.tombstones = 0, 0
	l.saved = 1
}

// Count returns the number of keys with an edit, tombstones included.
func (l *List) Count() int {
	return int(l.live)
}

// Tombstones returns the number of deleted keys.
func (l *List) Tombstones() int {
	return int(l.tombstones)
}

// Has returns true if |key| has a live value in |l|.
func (l *List) Has(key []byte) bool {
	_, ok := l.Get(key)
	return ok
}

// Get returns the value of |key|. |ok| is false when |key| is absent or
// deleted.
func (l *List) Get(key []byte) (val []byte, ok bool) {
	val, deleted, found := l.GetEdit(key)
	if !found || deleted {
		return nil, false
	}
	return val, true
}

// GetEdit returns the edit recorded for |key|.
func (l *List) GetEdit(key []byte) (val []byte, deleted, found bool) {
	r := l.ceiling(key)
	if r == head || l.order(key, l.nodes[r].key) != 0 {
		return nil, false, false
	}
	n := l.nodes[r]
	return n.val, n.tomb, true
}

// Put records |val| as the value of |key|.
func (l *List) Put(key, val []byte) {
	l.put(key, val, false)
}

// Delete records a tombstone for |key|.
func (l *List) Delete(key []byte) {
	l.put(key, nil, true)
}

func (l *List) put(key, val []byte, tomb bool) {
	if key == nil {
		panic("skip: nil key")
	}
	if len(l.nodes) >= maxNodes {
		panic("skip: list is full")
	}

	path := l.predecessors(key)
	at := l.nodes[path[0]].next[0]

	if at != head && l.order(key, l.nodes[at].key) == 0 {
		old := l.nodes[at]
		switch {
		case tomb && !old.tomb:
			l.tombstones++
		case !tomb && old.tomb:
			l.tombstones--
		}
		l.link(node{key: key, val: val, tomb: tomb, level: old.level, next: old.next}, path)
		return
	}

	n := node{key: key, val: val, tomb: tomb, level: randomLevel()}
	for lvl := 0; lvl <= int(n.level); lvl++ {
		n.next[lvl] = l.nodes[path[lvl]].next[lvl]
	}
	l.link(n, path)
	l.live++
	if tomb {
		l.tombstones++
	}
}

// link appends |n|, whose forward links are already set, and points
// the predecessors in |path| and the node after |n| at it.
func (l *List) link(n node, path tower) {
	r := ref(len(l.nodes))
	n.prev = path[0]
	l.nodes = append(l.nodes, n)
	for lvl := 0; lvl <= int(n.level); lvl++ {
		l.nodes[path[lvl]].next[lvl] = r
	}
	l.nodes[n.next[0]].prev = r
}

// predecessors returns, for every level, the last node whose key is
// strictly less than |key|.
func (l *List) predecessors(key []byte) (path tower) {
	at := head
	for lvl := levels - 1; lvl >= 0; lvl-- {
		for {
			nx := l.nodes[at].next[lvl]
			if nx == head || l.order(l.nodes[nx].key, key) >= 0 {
				break
			}
			at = nx
		}
		path[lvl] = at
	}
	return path
}

// ceiling returns the node with the smallest key >= |key|, or head.
func (l *List) ceiling(key []byte) ref {
	return l.nodes[l.predecessors(key)[0]].next[0]
}

// ListIter iterates the edits of a List, tombstones included.
type ListIter struct {
	list *List
	at   ref
	stop []byte
}

// Current returns the current key and value. |key| is nil once the
// iterator is exhausted.
func (it *ListIter) Current() (key, val []byte) {
	if it.at == head {
		return nil, nil
	}
	n := &it.list.nodes[it.at]
	if it.stop != nil && it.list.order(n.key, it.stop) >= 0 {
		return nil, nil
	}
	return n.key, n.val
}

// Deleted returns true if the current key is a tombstone.
func (it *ListIter) Deleted() bool {
	return it.list.nodes[it.at].tomb
}

func (it *ListIter) Advance() {
	it.at = it.list.nodes[it.at].next[0]
}

func (it *ListIter) Retreat() {
	it.at = it.list.nodes[it.at].prev
}

// GetIterAt returns an iterator at the smallest key >= |key|, or at the
// last key when every key is smaller.
func (l *List) GetIterAt(key []byte) *ListIter {
	at := l.ceiling(key)
	if at == head {
		at = l.nodes[head].prev
	}
	return &ListIter{list: l, at: at}
}

// IterRange returns a forward iterator over keys in [start, stop). A nil
// |start| begins at the first key and a nil |stop| runs to the end.
func (l *List) IterRange(start, stop []byte) *ListIter {
	if start == nil {
		return &ListIter{list: l, at: l.nodes[head].next[0], stop: stop}
	}
	return &ListIter{list: l, at: l.ceiling(start), stop: stop}
}

func (l *List) IterAtStart() *ListIter {
	return l.IterRange(nil, nil)
}

func (l *List) IterAtEnd() *ListIter {
	return &ListIter{list: l, at: l.nodes[head].prev}
}

// compareKeys orders |left| before the head node's nil key.
func (l *List) compareKeys(left, right []byte) int {
	if right == nil {
		return -1
	}
	return l.order(left, right)
}

// levelOdds[i] is the threshold a random uint32 must fall under for a
// node to reach level i+1. Each level is 1/e as likely as the one below.
var (
	levelOdds [levels - 1]uint32
	levelRand = rand.New(rand.NewSource(rand.Int63()))
)

func init() {
	p := 1.0
	for i := range levelOdds {
		p /= math.E
		levelOdds[i] = uint32(float64(math.MaxUint32) * p)
	}
}

func randomLevel() uint8 {
	r := levelRand.Uint32()
	lvl := uint8(0)
	for int(lvl) < len(levelOdds) && r <= levelOdds[lvl] {
		lvl++
	}
	return lvl
}
