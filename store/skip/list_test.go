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

package skip

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/phoenix/store/val"
)

var src = rand.New(rand.NewSource(0))

func TestSkipList(t *testing.T) {
	t.Run("test skip list", func(t *testing.T) {
		vals := [][]byte{
			b("a"), b("b"), b("c"), b("d"), b("e"),
			b("f"), b("g"), b("h"), b("i"), b("j"),
			b("k"), b("l"), b("m"), b("n"), b("o"),
		}
		testSkipList(t, bytes.Compare, vals...)
	})
	t.Run("test skip list of random bytes", func(t *testing.T) {
		vals := randomVals((src.Int63() % 10_000) + 100)
		testSkipList(t, nil, vals...)
	})
	t.Run("test with custom compare function", func(t *testing.T) {
		compare := func(left, right []byte) int {
			l := int64(binary.LittleEndian.Uint64(left))
			r := int64(binary.LittleEndian.Uint64(right))
			return cmp.Compare(l, r)
		}
		vals := randomInts((src.Int63() % 10_000) + 100)
		testSkipList(t, compare, vals...)
	})
	t.Run("test with encoded row keys", func(t *testing.T) {
		vals := randomRowKeys(t, 500)
		testSkipList(t, nil, vals...)
	})
}

func testSkipList(t *testing.T, compare KeyOrder, vals ...[]byte) {
	vals = dedupe(vals)
	src.Shuffle(len(vals), func(i, j int) {
		vals[i], vals[j] = vals[j], vals[i]
	})
	list := NewSkipList(compare)
	for _, v := range vals {
		list.Put(v, v)
	}

	t.Run("test puts", func(t *testing.T) {
		assert.Equal(t, len(vals), list.Count())
	})
	t.Run("test gets", func(t *testing.T) {
		testSkipListGets(t, list, vals...)
	})
	t.Run("test updates", func(t *testing.T) {
		testSkipListUpdates(t, list, vals...)
	})
	t.Run("test iter forward", func(t *testing.T) {
		testSkipListIterForward(t, list, vals...)
	})
	t.Run("test iter backward", func(t *testing.T) {
		testSkipListIterBackward(t, list, vals...)
	})
}

func testSkipListGets(t *testing.T, list *List, vals ...[]byte) {
	src.Shuffle(len(vals), func(i, j int) {
		vals[i], vals[j] = vals[j], vals[i]
	})

	for _, exp := range vals {
		act, ok := list.Get(exp)
		assert.True(t, ok)
		assert.Equal(t, exp, act)
	}

	// absent key
	act, ok := list.Get(b("12345678"))
	assert.False(t, ok)
	assert.Nil(t, act)
}

func testSkipListUpdates(t *testing.T, list *List, vals ...[]byte) {
	v2 := []byte("789")
	for _, v := range vals {
		list.Put(v, v2)
	}
	assert.Equal(t, len(vals), list.Count())

	src.Shuffle(len(vals), func(i, j int) {
		vals[i], vals[j] = vals[j], vals[i]
	})
	for _, exp := range vals {
		act, ok := list.Get(exp)
		assert.True(t, ok)
		assert.Equal(t, v2, act)
	}
}

func testSkipListIterForward(t *testing.T, list *List, vals ...[]byte) {
	sort.Slice(vals, func(i, j int) bool {
		return list.compareKeys(vals[i], vals[j]) < 0
	})

	idx := 0
	iterAll(list, func(key, val []byte) {
		assert.Equal(t, vals[idx], key)
		idx++
	})
	assert.Equal(t, len(vals), idx)

	for k := 0; k < 10; k++ {
		idx = src.Int() % len(vals)
		act := validateIterForwardFrom(t, list, vals[idx])
		assert.Equal(t, len(vals)-idx, act)
	}

	act := validateIterForwardFrom(t, list, vals[0])
	assert.Equal(t, len(vals), act)
	act = validateIterForwardFrom(t, list, vals[len(vals)-1])
	assert.Equal(t, 1, act)
}

func testSkipListIterBackward(t *testing.T, list *List, vals ...[]byte) {
	sort.Slice(vals, func(i, j int) bool {
		return list.compareKeys(vals[i], vals[j]) < 0
	})

	for k := 0; k < 10; k++ {
		idx := src.Int() % len(vals)
		act := validateIterBackwardFrom(t, list, vals[idx])
		assert.Equal(t, idx+1, act)
	}

	act := validateIterBackwardFrom(t, list, vals[0])
	assert.Equal(t, 1, act)
	act = validateIterBackwardFrom(t, list, vals[len(vals)-1])
	assert.Equal(t, len(vals), act)

	idx := 0
	iterAllBackwards(list, func(key, val []byte) {
		assert.Equal(t, vals[len(vals)-1-idx], key)
		idx++
	})
	assert.Equal(t, len(vals), idx)
}

func TestDelete(t *testing.T) {
	list := NewSkipList(nil)
	list.Put(b("a"), b("1"))
	list.Put(b("b"), b("2"))
	list.Delete(b("b"))
	list.Delete(b("c"))

	assert.Equal(t, 3, list.Count())
	assert.Equal(t, 2, list.Tombstones())
	assert.True(t, list.Has(b("a")))
	assert.False(t, list.Has(b("b")))
	assert.False(t, list.Has(b("c")))

	v, deleted, found := list.GetEdit(b("b"))
	assert.True(t, found)
	assert.True(t, deleted)
	assert.Nil(t, v)

	_, _, found = list.GetEdit(b("z"))
	assert.False(t, found)

	var keys []string
	var tombs []bool
	it := list.IterAtStart()
	for k, _ := it.Current(); k != nil; k, _ = it.Current() {
		keys = append(keys, string(k))
		tombs = append(tombs, it.Deleted())
		it.Advance()
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, []bool{false, true, true}, tombs)

	// a put over a tombstone revives the key
	list.Put(b("b"), b("3"))
	assert.Equal(t, 1, list.Tombstones())
	v, ok := list.Get(b("b"))
	assert.True(t, ok)
	assert.Equal(t, b("3"), v)
}

func TestCheckpointRevert(t *testing.T) {
	list := NewSkipList(nil)
	list.Put(b("a"), b("1"))
	list.Put(b("c"), b("3"))
	list.Delete(b("d"))
	list.Checkpoint()

	list.Put(b("a"), b("10"))
	list.Put(b("b"), b("2"))
	list.Delete(b("c"))
	list.Put(b("d"), b("4"))
	assert.Equal(t, 4, list.Count())

	list.Revert()
	assert.Equal(t, 3, list.Count())
	assert.Equal(t, 1, list.Tombstones())

	v, ok := list.Get(b("a"))
	assert.True(t, ok)
	assert.Equal(t, b("1"), v)
	assert.False(t, list.Has(b("b")))
	v, ok = list.Get(b("c"))
	assert.True(t, ok)
	assert.Equal(t, b("3"), v)
	_, deleted, found := list.GetEdit(b("d"))
	assert.True(t, found)
	assert.True(t, deleted)

	// reverting twice is a no-op
	list.Revert()
	assert.Equal(t, 3, list.Count())

	list.Truncate()
	assert.Equal(t, 0, list.Count())
	k, _ := list.IterAtStart().Current()
	assert.Nil(t, k)
}

func TestIterRange(t *testing.T) {
	list := NewSkipList(nil)
	for _, s := range []string{"b", "d", "f", "h"} {
		list.Put(b(s), b(s))
	}

	tests := []struct {
		start, stop []byte
		exp         []string
	}{
		{nil, nil, []string{"b", "d", "f", "h"}},
		{b("c"), nil, []string{"d", "f", "h"}},
		{b("d"), b("h"), []string{"d", "f"}},
		{nil, b("d"), []string{"b"}},
		{b("i"), nil, nil},
		{b("a"), b("b"), nil},
	}
	for _, test := range tests {
		var act []string
		it := list.IterRange(test.start, test.stop)
		for k, _ := it.Current(); k != nil; k, _ = it.Current() {
			act = append(act, string(k))
			it.Advance()
		}
		assert.Equal(t, test.exp, act, "[%s, %s)", test.start, test.stop)
	}
}

func TestRowKeyOrder(t *testing.T) {
	desc, err := val.NewRowKeyDesc(
		val.RowKeyField{Type: val.Varchar, Order: val.Descending},
		val.RowKeyField{Type: val.Integer},
	)
	require.NoError(t, err)

	rows := [][]any{
		{"b", int32(1)},
		{"ab", int32(-1)},
		{"ab", int32(7)},
		{"a", int32(0)},
	}
	list := NewSkipList(nil)
	for i := len(rows) - 1; i >= 0; i-- {
		k, err := desc.Encode(rows[i]...)
		require.NoError(t, err)
		list.Put(k, nil)
	}

	idx := 0
	iterAll(list, func(key, _ []byte) {
		act, err := desc.Decode(key)
		require.NoError(t, err)
		assert.Equal(t, rows[idx], act)
		idx++
	})
	assert.Equal(t, len(rows), idx)
}

func validateIterForwardFrom(t *testing.T, l *List, key []byte) (count int) {
	iter := l.GetIterAt(key)
	k, _ := iter.Current()
	for k != nil {
		count++
		iter.Advance()
		prev := k
		k, _ = iter.Current()
		assert.True(t, l.compareKeys(prev, k) < 0)
	}
	return
}

func validateIterBackwardFrom(t *testing.T, l *List, key []byte) (count int) {
	iter := l.GetIterAt(key)
	k, _ := iter.Current()
	for k != nil {
		count++
		iter.Retreat()
		prev := k
		k, _ = iter.Current()

		if k != nil {
			assert.True(t, l.compareKeys(prev, k) > 0)
		}
	}
	return
}

func randomVals(cnt int64) (vals [][]byte) {
	vals = make([][]byte, cnt)
	for i := range vals {
		bb := make([]byte, (src.Int63()%91)+10)
		src.Read(bb)
		vals[i] = bb
	}
	return
}

func randomInts(cnt int64) (vals [][]byte) {
	vals = make([][]byte, cnt)
	for i := range vals {
		vals[i] = make([]byte, 8)
		v := uint64(src.Int63())
		binary.LittleEndian.PutUint64(vals[i], v)
	}
	return
}

func randomRowKeys(t *testing.T, cnt int) (vals [][]byte) {
	desc, err := val.NewRowKeyDesc(
		val.RowKeyField{Type: val.Bigint, Order: val.Descending},
		val.RowKeyField{Type: val.Varchar},
	)
	require.NoError(t, err)
	vals = make([][]byte, cnt)
	for i := range vals {
		k, err := desc.Encode(src.Int63n(1000)-500, string(rune('a'+src.Intn(26))))
		require.NoError(t, err)
		vals[i] = k
	}
	return
}

func dedupe(vals [][]byte) [][]byte {
	seen := make(map[string]struct{}, len(vals))
	out := vals[:0]
	for _, v := range vals {
		if _, ok := seen[string(v)]; ok {
			continue
		}
		seen[string(v)] = struct{}{}
		out = append(out, v)
	}
	return out
}

func b(s string) []byte {
	return []byte(s)
}

func iterAll(l *List, cb func([]byte, []byte)) {
	iter := l.IterAtStart()
	key, val := iter.Current()
	for key != nil {
		cb(key, val)
		iter.Advance()
		key, val = iter.Current()
	}
}

func iterAllBackwards(l *List, cb func([]byte, []byte)) {
	iter := l.IterAtEnd()
	key, val := iter.Current()
	for key != nil {
		cb(key, val)
		iter.Retreat()
		key, val = iter.Current()
	}
}
