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
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/phoenix/store/val"
)

func newTestTable(t *testing.T, store Store, salt int) *Table {
	kd, err := val.NewRowKeyDesc(
		val.RowKeyField{Type: val.Varchar},
		val.RowKeyField{Type: val.Bigint, Order: val.Descending},
	)
	require.NoError(t, err)
	if salt > 0 {
		kd, err = kd.WithSaltBuckets(salt)
		require.NoError(t, err)
	}
	vd := val.NewTupleDescriptor(val.Bigint, val.Varchar, val.Decimal)
	return NewTable(store, kd, vd, nil)
}

func TestTable(t *testing.T) {
	t.Run("mem store", func(t *testing.T) {
		testTable(t, NewMemStore())
	})
	t.Run("bolt store", func(t *testing.T) {
		s, err := OpenBoltStore(context.Background(), filepath.Join(t.TempDir(), "table.db"), BoltOptions{CacheSize: 8})
		require.NoError(t, err)
		defer s.Close()
		testTable(t, s)
	})
}

func testTable(t *testing.T, store Store) {
	ctx := context.Background()
	tbl := newTestTable(t, store, 0)

	rows := [][]any{
		{"a", int64(3)},
		{"a", int64(1)},
		{"a", int64(-2)},
		{"b", int64(5)},
		{"c", int64(0)},
	}
	for i, k := range rows {
		require.NoError(t, tbl.Put(ctx, k, []any{int64(i), "row", decimal.NewFromInt(int64(i))}))
	}
	assert.Equal(t, len(rows), tbl.Pending())

	t.Run("get buffered", func(t *testing.T) {
		v, ok, err := tbl.Get(ctx, rows[1])
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(1), v[0])
		assert.Equal(t, "row", v[1])
	})

	t.Run("scan buffered", func(t *testing.T) {
		assert.Equal(t, rows, scanTableKeys(t, tbl, Range{}))
	})

	require.NoError(t, tbl.Flush(ctx))
	assert.Equal(t, 0, tbl.Pending())

	t.Run("scan flushed", func(t *testing.T) {
		assert.Equal(t, rows, scanTableKeys(t, tbl, Range{}))
	})

	t.Run("scan merges edits", func(t *testing.T) {
		require.NoError(t, tbl.Delete(ctx, rows[1]))
		require.NoError(t, tbl.Put(ctx, []any{"a", int64(2)}, []any{nil, "new", nil}))
		require.NoError(t, tbl.Put(ctx, rows[3], []any{int64(30), "updated", nil}))
		require.NoError(t, tbl.Put(ctx, []any{"d", int64(0)}, []any{nil, nil, nil}))

		exp := [][]any{
			{"a", int64(3)},
			{"a", int64(2)},
			{"a", int64(-2)},
			{"b", int64(5)},
			{"c", int64(0)},
			{"d", int64(0)},
		}
		assert.Equal(t, exp, scanTableKeys(t, tbl, Range{}))

		v, ok, err := tbl.Get(ctx, rows[3])
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []any{int64(30), "updated", nil}, v)

		_, ok, err = tbl.Get(ctx, rows[1])
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, tbl.Flush(ctx))
		assert.Equal(t, exp, scanTableKeys(t, tbl, Range{}))
	})

	t.Run("scan prefix", func(t *testing.T) {
		var act [][]any
		err := tbl.ScanPrefix(ctx, []any{"a"}, func(key, value []any) (bool, error) {
			act = append(act, key)
			return false, nil
		})
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"a", int64(3)}, {"a", int64(2)}, {"a", int64(-2)}}, act)
	})

	t.Run("scan stops early", func(t *testing.T) {
		require.NoError(t, tbl.Put(ctx, []any{"a", int64(9)}, []any{nil, nil, nil}))
		n := 0
		err := tbl.Scan(ctx, Range{}, func(key, value []any) (bool, error) {
			n++
			return n == 2, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		tbl.Revert()
	})

	t.Run("increment", func(t *testing.T) {
		n, err := tbl.Increment(ctx, rows[0], 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
		n, err = tbl.Increment(ctx, rows[0], 0, -25)
		require.NoError(t, err)
		assert.Equal(t, int64(-15), n)

		v, ok, err := tbl.Get(ctx, rows[0])
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(-15), v[0])
		assert.Equal(t, "row", v[1])

		// NULL counts from zero
		n, err = tbl.Increment(ctx, []any{"a", int64(2)}, 0, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		v, _, err = tbl.Get(ctx, []any{"a", int64(2)})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(4), "new", nil}, v)

		_, err = tbl.Increment(ctx, []any{"zz", int64(0)}, 0, 1)
		assert.ErrorIs(t, err, ErrRowNotFound)
		_, err = tbl.Increment(ctx, rows[0], 1, 1)
		assert.Error(t, err)

		_, err = tbl.Increment(ctx, rows[0], 0, math.MaxInt64)
		require.NoError(t, err)
		_, err = tbl.Increment(ctx, rows[0], 0, math.MaxInt64)
		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestTableCheckpoint(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t, NewMemStore(), 0)

	require.NoError(t, tbl.Put(ctx, []any{"a", int64(1)}, []any{int64(1), nil, nil}))
	tbl.Checkpoint()
	require.NoError(t, tbl.Put(ctx, []any{"b", int64(1)}, []any{int64(2), nil, nil}))
	require.NoError(t, tbl.Delete(ctx, []any{"a", int64(1)}))
	tbl.Revert()

	assert.Equal(t, [][]any{{"a", int64(1)}}, scanTableKeys(t, tbl, Range{}))
}

func TestTableErrors(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t, NewMemStore(), 0)

	err := tbl.Put(ctx, []any{"a"}, []any{nil, nil, nil})
	assert.Error(t, err)
	err = tbl.Put(ctx, []any{"a", int64(1)}, []any{nil, nil})
	assert.Error(t, err)
	err = tbl.Put(ctx, []any{"a", int64(1)}, []any{"x", nil, nil})
	assert.Error(t, err)
	err = tbl.Put(ctx, []any{nil, nil}, []any{nil, nil, nil})
	assert.Error(t, err)
	assert.Equal(t, 0, tbl.Pending())
}

func TestTableLargeValue(t *testing.T) {
	ctx := context.Background()
	stores := map[string]func(t *testing.T) Store{
		"mem store": func(t *testing.T) Store { return NewMemStore() },
		"bolt store": func(t *testing.T) Store {
			s, err := OpenBoltStore(ctx, filepath.Join(t.TempDir(), "large.db"), BoltOptions{CacheSize: 8, Compression: true})
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			tbl := newTestTable(t, open(t), 0)
			note := strings.Repeat("x", 70000)
			key := []any{"k", int64(1)}
			require.NoError(t, tbl.Put(ctx, key, []any{int64(1), note, nil}))

			v, ok, err := tbl.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, note, v[1])

			require.NoError(t, tbl.Flush(ctx))
			v, ok, err = tbl.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, int64(1), v[0])
			assert.Equal(t, note, v[1])
			assert.Nil(t, v[2])
		})
	}
}

func TestSaltedTable(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t, NewMemStore(), 4)

	for _, k := range []string{"a", "b", "c", "d", "e", "f"} {
		for i := int64(0); i < 3; i++ {
			require.NoError(t, tbl.Put(ctx, []any{k, i}, []any{i, k, nil}))
		}
	}
	require.NoError(t, tbl.Flush(ctx))

	assert.Len(t, scanTableKeys(t, tbl, Range{}), 18)

	var act [][]any
	err := tbl.ScanPrefix(ctx, []any{"c"}, func(key, value []any) (bool, error) {
		act = append(act, key)
		assert.Equal(t, "c", value[1])
		return false, nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, [][]any{{"c", int64(0)}, {"c", int64(1)}, {"c", int64(2)}}, act)

	n := 0
	err = tbl.ScanPrefix(ctx, []any{"c"}, func(key, value []any) (bool, error) {
		n++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func scanTableKeys(t *testing.T, tbl *Table, rng Range) (keys [][]any) {
	err := tbl.Scan(context.Background(), rng, func(key, value []any) (bool, error) {
		keys = append(keys, key)
		return false, nil
	})
	require.NoError(t, err)
	return
}
