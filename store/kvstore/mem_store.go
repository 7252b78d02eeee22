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

package kvstore

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"
)

const memStoreDegree = 64

var compareKeys = bytes.Compare

type kvPair struct {
	key, val []byte
}

func pairLess(l, r kvPair) bool {
	return compareKeys(l.key, r.key) < 0
}

// MemStore is an in-memory Store backed by a B-tree.
type MemStore struct {
	mu     sync.RWMutex
	tree   *btree.BTreeG[kvPair]
	closed bool
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		tree: btree.NewG[kvPair](memStoreDegree, pairLess),
	}
}

func (m *MemStore) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrStoreClosed
	}
	p, ok := m.tree.Get(kvPair{key: key})
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), p.val...), true, nil
}

func (m *MemStore) Put(ctx context.Context, key, val []byte) error {
	return m.PutMany(ctx, []Edit{{Key: key, Value: val}})
}

func (m *MemStore) Delete(ctx context.Context, key []byte) error {
	return m.PutMany(ctx, []Edit{{Key: key, Delete: true}})
}

func (m *MemStore) PutMany(ctx context.Context, edits []Edit) error {
	for _, e := range edits {
		if len(e.Key) == 0 {
			return ErrEmptyKey
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	for _, e := range edits {
		if e.Delete {
			m.tree.Delete(kvPair{key: e.Key})
			continue
		}
		m.tree.ReplaceOrInsert(kvPair{
			key: append([]byte(nil), e.Key...),
			val: append([]byte(nil), e.Value...),
		})
	}
	return nil
}

// Scan holds a read lock while |cb| runs; |cb| must not write to |m|.
func (m *MemStore) Scan(ctx context.Context, rng Range, cb ScanFn) (err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStoreClosed
	}

	iter := func(p kvPair) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		var stop bool
		stop, err = cb(p.key, p.val)
		return !stop && err == nil
	}

	start := kvPair{key: rng.Start}
	switch {
	case rng.Start == nil && rng.Stop == nil:
		m.tree.Ascend(iter)
	case rng.Stop == nil:
		m.tree.AscendGreaterOrEqual(start, iter)
	case rng.Start == nil:
		m.tree.AscendLessThan(kvPair{key: rng.Stop}, iter)
	default:
		m.tree.AscendRange(start, kvPair{key: rng.Stop}, iter)
	}
	return err
}

// Len returns the number of pairs in |m|.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Len()
}

func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.tree.Clear(false)
	return nil
}
