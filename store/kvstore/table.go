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
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ndimiduk/phoenix/store/skip"
	"github.com/ndimiduk/phoenix/store/val"
)

var (
	ErrRowNotFound = errors.New("row not found")
	ErrOverflow    = errors.New("counter overflow")
)

// RowFn receives decoded rows from a Table scan.
type RowFn func(key, value []any) (stop bool, err error)

// Table keeps rows in a Store. Row keys are val.RowKeys of |KeyDesc|
// and row values are val.Tuples of |ValDesc|. Writes are buffered in
// memory until Flush. A Table is not safe for concurrent use.
type Table struct {
	KeyDesc val.RowKeyDesc
	ValDesc val.TupleDesc

	store Store
	edits *skip.List
	tb    *val.TupleBuilder
	lgr   *logrus.Entry
}

func NewTable(store Store, keyDesc val.RowKeyDesc, valDesc val.TupleDesc, lgr *logrus.Entry) *Table {
	if lgr == nil {
		lgr = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Table{
		KeyDesc: keyDesc,
		ValDesc: valDesc,
		store:   store,
		edits:   skip.NewSkipList(bytes.Compare),
		tb:      val.NewTupleBuilder(valDesc),
		lgr:     lgr,
	}
}

func (t *Table) encodeKey(key []any) (val.RowKey, error) {
	k, err := t.KeyDesc.Encode(key...)
	if err != nil {
		return nil, err
	}
	if len(k) == 0 {
		return nil, ErrEmptyKey
	}
	return k, nil
}

func (t *Table) encodeValue(value []any) (val.Tuple, error) {
	if len(value) != t.ValDesc.Count() {
		return nil, errors.Errorf("expected %d values, found %d", t.ValDesc.Count(), len(value))
	}
	for i, v := range value {
		if err := t.tb.Put(i, v); err != nil {
			t.tb.Recycle()
			return nil, errors.Wrapf(err, "column %d", i)
		}
	}
	return t.tb.Build(), nil
}

func (t *Table) decodeRow(k, v []byte) (key, value []any, err error) {
	if key, err = t.KeyDesc.Decode(k); err != nil {
		return nil, nil, err
	}
	tup := val.Tuple(v)
	value = make([]any, t.ValDesc.Count())
	for i := range value {
		if value[i], err = t.ValDesc.GetValue(i, tup); err != nil {
			return nil, nil, err
		}
	}
	return key, value, nil
}

// Put buffers a write of |value| at |key|.
func (t *Table) Put(ctx context.Context, key, value []any) error {
	k, err := t.encodeKey(key)
	if err != nil {
		return err
	}
	tup, err := t.encodeValue(value)
	if err != nil {
		return err
	}
	t.edits.Put(k, tup)
	return nil
}

// Delete buffers a delete of |key|.
func (t *Table) Delete(ctx context.Context, key []any) error {
	k, err := t.encodeKey(key)
	if err != nil {
		return err
	}
	t.edits.Delete(k)
	return nil
}

// Get returns the row value at |key|, seeing buffered writes.
func (t *Table) Get(ctx context.Context, key []any) ([]any, bool, error) {
	k, err := t.encodeKey(key)
	if err != nil {
		return nil, false, err
	}
	v, ok, err := t.getTuple(ctx, k)
	if err != nil || !ok {
		return nil, false, err
	}
	_, value, err := t.decodeRow(k, v)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (t *Table) getTuple(ctx context.Context, k val.RowKey) (val.Tuple, bool, error) {
	if v, deleted, found := t.edits.GetEdit(k); found {
		if deleted {
			return nil, false, nil
		}
		return v, true, nil
	}
	v, ok, err := t.store.Get(ctx, k)
	return v, ok, err
}

// Pending returns the number of buffered edits.
func (t *Table) Pending() int {
	return t.edits.Count()
}

// Checkpoint marks the buffered edits that Revert keeps.
func (t *Table) Checkpoint() {
	t.edits.Checkpoint()
}

// Revert drops the edits buffered since the last Checkpoint.
func (t *Table) Revert() {
	t.edits.Revert()
}

// Flush writes the buffered edits to the store in one batch.
func (t *Table) Flush(ctx context.Context) error {
	if t.edits.Count() == 0 {
		return nil
	}
	edits := make([]Edit, 0, t.edits.Count())
	it := t.edits.IterAtStart()
	for k, v := it.Current(); k != nil; k, v = it.Current() {
		edits = append(edits, Edit{Key: k, Value: v, Delete: it.Deleted()})
		it.Advance()
	}
	if err := t.store.PutMany(ctx, edits); err != nil {
		return errors.Wrap(err, "failed to flush table edits")
	}
	t.lgr.WithFields(logrus.Fields{
		"edits":      len(edits),
		"tombstones": t.edits.Tombstones(),
	}).Debug("flushed table edits")
	t.edits.Truncate()
	return nil
}

// Scan calls |cb| with the rows in the key range |rng|, in key order.
// Buffered edits are merged over the store.
func (t *Table) Scan(ctx context.Context, rng Range, cb RowFn) error {
	it := t.edits.IterRange(rng.Start, rng.Stop)
	stopped := false

	emit := func(k, v []byte) (bool, error) {
		key, value, err := t.decodeRow(k, v)
		if err != nil {
			return true, err
		}
		stopped, err = cb(key, value)
		return stopped, err
	}
	// emits buffered rows before |bound|, or all when |bound| is nil
	drainEdits := func(bound []byte) (bool, error) {
		for k, v := it.Current(); k != nil; k, v = it.Current() {
			if bound != nil && bytes.Compare(k, bound) >= 0 {
				break
			}
			deleted := it.Deleted()
			it.Advance()
			if deleted {
				continue
			}
			if stop, err := emit(k, v); stop || err != nil {
				return true, err
			}
		}
		return false, nil
	}

	err := t.store.Scan(ctx, rng, func(k, v []byte) (bool, error) {
		if stop, err := drainEdits(k); stop || err != nil {
			return true, err
		}
		if ek, ev := it.Current(); ek != nil && bytes.Equal(ek, k) {
			deleted := it.Deleted()
			it.Advance()
			if deleted {
				return false, nil
			}
			return emit(ek, ev)
		}
		return emit(k, v)
	})
	if err != nil || stopped {
		return err
	}
	_, err = drainEdits(nil)
	return err
}

// ScanPrefix calls |cb| with the rows whose leading key columns equal
// |prefix|. Rows are in key order within each salt bucket, and buckets
// are visited in ascending order.
func (t *Table) ScanPrefix(ctx context.Context, prefix []any, cb RowFn) error {
	p, err := t.KeyDesc.EncodePrefix(prefix...)
	if err != nil {
		return err
	}
	if t.KeyDesc.SaltBuckets == 0 {
		return t.Scan(ctx, PrefixRange(p), cb)
	}

	stopped := false
	wrapped := func(key, value []any) (bool, error) {
		stop, err := cb(key, value)
		stopped = stop
		return stop, err
	}
	for b := 0; b < t.KeyDesc.SaltBuckets && !stopped; b++ {
		salted := append([]byte{byte(b)}, p...)
		if err = t.Scan(ctx, PrefixRange(salted), wrapped); err != nil {
			return err
		}
	}
	return nil
}

// Increment adds |delta| to the BIGINT column |col| of the row at |key|
// and returns the new value. A NULL column counts from zero.
func (t *Table) Increment(ctx context.Context, key []any, col int, delta int64) (int64, error) {
	if typ := t.ValDesc.Types[col]; typ != val.Bigint {
		return 0, errors.Errorf("cannot increment column %d of type %s", col, typ)
	}
	k, err := t.encodeKey(key)
	if err != nil {
		return 0, err
	}
	tup, ok, err := t.getTuple(ctx, k)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Wrapf(ErrRowNotFound, "%s", t.KeyDesc.Format(k))
	}

	curr, ok := t.ValDesc.GetInt64(col, tup)
	if (delta > 0 && curr > math.MaxInt64-delta) || (delta < 0 && curr < math.MinInt64-delta) {
		return 0, errors.Wrapf(ErrOverflow, "%d + %d", curr, delta)
	}
	next := curr + delta

	var updated val.Tuple
	if ok {
		// BIGINT is fixed width, so the field is rewritten where it lies
		updated = append(val.Tuple(nil), tup...)
		if _, err = val.Bigint.EncodeInto(t.ValDesc.GetField(col, updated), next); err != nil {
			return 0, err
		}
	} else {
		for i := 0; i < t.ValDesc.Count(); i++ {
			t.tb.PutField(i, t.ValDesc.GetField(i, tup))
		}
		t.tb.PutInt64(col, next)
		updated = t.tb.Build()
	}
	t.edits.Put(k, updated)
	return next, nil
}
