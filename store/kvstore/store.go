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

// Package kvstore holds sorted key-value stores and a row layer that
// keeps order-preserving row keys and value tuples in them.
package kvstore

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrStoreClosed = errors.New("store is closed")
	ErrEmptyKey    = errors.New("key must not be empty")
)

// Store is a byte-ordered key-value store.
type Store interface {
	// Get returns the value of |key|, |ok| is false when it is absent.
	Get(ctx context.Context, key []byte) (val []byte, ok bool, err error)

	Put(ctx context.Context, key, val []byte) error

	Delete(ctx context.Context, key []byte) error

	// PutMany applies |edits| atomically.
	PutMany(ctx context.Context, edits []Edit) error

	// Scan calls |cb| for each pair in |rng| in ascending key order.
	Scan(ctx context.Context, rng Range, cb ScanFn) error

	Close() error
}

// Edit is a single write in a batch.
type Edit struct {
	Key, Value []byte
	Delete     bool
}

// ScanFn receives pairs from Store.Scan. Scanning ends early when it
// returns |stop| or an error. |key| and |val| are only valid for the
// duration of the call.
type ScanFn func(key, val []byte) (stop bool, err error)

// Range is the key range [Start, Stop). A nil bound is unbounded.
type Range struct {
	Start, Stop []byte
}

// PrefixRange returns the Range of keys starting with |prefix|.
func PrefixRange(prefix []byte) Range {
	if len(prefix) == 0 {
		return Range{}
	}
	return Range{
		Start: append([]byte(nil), prefix...),
		Stop:  prefixSuccessor(prefix),
	}
}

// prefixSuccessor returns the smallest key greater than every key
// starting with |prefix|, or nil when there is none.
func prefixSuccessor(prefix []byte) []byte {
	succ := append([]byte(nil), prefix...)
	for i := len(succ) - 1; i >= 0; i-- {
		if succ[i] != 0xFF {
			succ[i]++
			return succ[:i+1]
		}
	}
	return nil
}

// Contains returns true if |key| is inside |r|.
func (r Range) Contains(key []byte) bool {
	if r.Start != nil && compareKeys(key, r.Start) < 0 {
		return false
	}
	if r.Stop != nil && compareKeys(key, r.Stop) >= 0 {
		return false
	}
	return true
}
