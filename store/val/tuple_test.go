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

package val

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTuple(t *testing.T) {
	t.Run("fields", func(t *testing.T) {
		tup := NewTuple([]byte("a"), nil, []byte("bcd"), []byte{}, []byte("e"))
		assert.Equal(t, 5, tup.Count())
		assert.Equal(t, []byte("a"), tup.GetField(0))
		assert.Nil(t, tup.GetField(1))
		assert.True(t, tup.FieldIsNull(1))
		assert.Equal(t, []byte("bcd"), tup.GetField(2))
		assert.True(t, tup.FieldIsNull(3))
		assert.Equal(t, []byte("e"), tup.GetField(4))
	})
	t.Run("all null", func(t *testing.T) {
		tup := NewTuple(nil, nil)
		assert.Equal(t, 2, tup.Count())
		assert.True(t, tup.FieldIsNull(0))
		assert.True(t, tup.FieldIsNull(1))
	})
	t.Run("many fields", func(t *testing.T) {
		fields := make([][]byte, 100)
		for i := range fields {
			if i%3 != 0 {
				fields[i] = []byte{byte(i)}
			}
		}
		tup := NewTuple(fields...)
		assert.Equal(t, 100, tup.Count())
		for i := range fields {
			if i%3 == 0 {
				assert.Nil(t, tup.GetField(i))
			} else {
				assert.Equal(t, []byte{byte(i)}, tup.GetField(i))
			}
		}
	})
	t.Run("fields past 64 KiB", func(t *testing.T) {
		big := bytes.Repeat([]byte("x"), 70000)
		tup := NewTuple([]byte("a"), big, nil, []byte("z"))
		assert.Equal(t, 4, tup.Count())
		assert.Equal(t, []byte("a"), tup.GetField(0))
		assert.Equal(t, big, tup.GetField(1))
		assert.Nil(t, tup.GetField(2))
		assert.Equal(t, []byte("z"), tup.GetField(3))
	})
}

func TestNullMask(t *testing.T) {
	nm := nullMask(make([]byte, maskSize(20)))
	assert.Equal(t, ByteSize(3), nm.size())
	for _, i := range []int{0, 3, 8, 19} {
		nm.set(i)
	}
	assert.True(t, nm.present(3))
	assert.False(t, nm.present(4))
	assert.Equal(t, 4, nm.count())
	assert.Equal(t, 2, nm.countPrefix(3))
	assert.Equal(t, 2, nm.countPrefix(7))
	assert.Equal(t, 3, nm.countPrefix(8))
	assert.Equal(t, 4, nm.countPrefix(19))
}

func TestTupleBuilder(t *testing.T) {
	t.Run("smoke test", func(t *testing.T) {
		smokeTestTupleBuilder(t)
	})
	t.Run("native values", func(t *testing.T) {
		testNativeTupleValues(t)
	})
	t.Run("nulls", func(t *testing.T) {
		testTupleNulls(t)
	})
	t.Run("encoded fields", func(t *testing.T) {
		testTupleEncodedFields(t)
	})
}

func testTupleEncodedFields(t *testing.T) {
	desc := NewTupleDescriptor(Bigint, Varchar, Integer)
	tb := NewTupleBuilder(desc)
	require.NoError(t, tb.Put(0, int64(7)))
	require.NoError(t, tb.Put(1, "seven"))
	src := tb.Build()

	// copy two fields as encoded bytes and replace the third
	for i := 0; i < 2; i++ {
		tb.PutField(i, desc.GetField(i, src))
	}
	tb.PutInt32(2, 9)
	tup := tb.Build()

	i64, ok := desc.GetInt64(0, tup)
	assert.True(t, ok)
	assert.Equal(t, int64(7), i64)
	str, ok := desc.GetString(1, tup)
	assert.True(t, ok)
	assert.Equal(t, "seven", str)
	i32, ok := desc.GetInt32(2, tup)
	assert.True(t, ok)
	assert.Equal(t, int32(9), i32)

	// a nil field is NULL
	tb.PutField(0, nil)
	tup = tb.Build()
	assert.True(t, desc.IsNull(0, tup))
}

func smokeTestTupleBuilder(t *testing.T) {
	desc := NewTupleDescriptor(
		Tinyint,
		Smallint,
		Integer,
		Bigint,
		Float,
		Double,
		Varchar,
		Varbinary,
		Boolean,
	)

	tb := NewTupleBuilder(desc)
	tb.PutInt8(0, math.MaxInt8)
	tb.PutInt16(1, math.MaxInt16)
	tb.PutInt32(2, math.MaxInt32)
	tb.PutInt64(3, math.MaxInt64)
	tb.PutFloat32(4, math.MaxFloat32)
	tb.PutFloat64(5, math.MaxFloat64)
	tb.PutString(6, "123")
	tb.PutBytes(7, []byte("abc"))
	tb.PutBool(8, true)

	tup := tb.Build()
	i8, ok := desc.GetInt8(0, tup)
	assert.True(t, ok)
	assert.Equal(t, int8(math.MaxInt8), i8)
	i16, ok := desc.GetInt16(1, tup)
	assert.True(t, ok)
	assert.Equal(t, int16(math.MaxInt16), i16)
	i32, ok := desc.GetInt32(2, tup)
	assert.True(t, ok)
	assert.Equal(t, int32(math.MaxInt32), i32)
	i64, ok := desc.GetInt64(3, tup)
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), i64)
	f32, ok := desc.GetFloat32(4, tup)
	assert.True(t, ok)
	assert.Equal(t, float32(math.MaxFloat32), f32)
	f64, ok := desc.GetFloat64(5, tup)
	assert.True(t, ok)
	assert.Equal(t, float64(math.MaxFloat64), f64)
	str, ok := desc.GetString(6, tup)
	assert.True(t, ok)
	assert.Equal(t, "123", str)
	byts, ok := desc.GetBytes(7, tup)
	assert.True(t, ok)
	assert.Equal(t, []byte("abc"), byts)
	b, ok := desc.GetBool(8, tup)
	assert.True(t, ok)
	assert.True(t, b)

	assert.Panics(t, func() {
		desc.GetInt64(0, tup)
	})
}

func testNativeTupleValues(t *testing.T) {
	desc := NewTupleDescriptor(
		UnsignedInt,
		Decimal,
		Timestamp,
		Char,
		IntegerArray,
		UnsignedDouble,
		Date,
	).WithMaxLengths(0, 0, 0, 4)

	ts := time.Date(2021, 1, 2, 3, 4, 5, 6, time.UTC)
	values := []any{
		int32(7),
		decimal.RequireFromString("-12.5"),
		ts,
		"ab",
		NewArray(Integer, int32(1), int32(2)),
		2.5,
		ms(86400000),
	}

	tb := NewTupleBuilder(desc)
	for i, v := range values {
		require.NoError(t, tb.Put(i, v))
	}
	tup := tb.Build()

	u, ok := desc.GetInt32(0, tup)
	assert.True(t, ok)
	assert.Equal(t, int32(7), u)

	d, ok, err := desc.GetDecimal(1, tup)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("-12.5").Equal(d))

	tm, ok := desc.GetTime(2, tup)
	assert.True(t, ok)
	assert.True(t, ts.Equal(tm))

	assert.Equal(t, []byte("ab  "), desc.GetField(3, tup))
	s, ok := desc.GetString(3, tup)
	assert.True(t, ok)
	assert.Equal(t, "ab", s)

	a, ok, err := desc.GetArray(4, tup)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []any{int32(1), int32(2)}, a.Values())

	f, ok := desc.GetFloat64(5, tup)
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	for i, exp := range values {
		act, err := desc.GetValue(i, tup)
		require.NoError(t, err)
		c, err := CompareValues(exp, desc.Types[i], act, desc.Types[i])
		require.NoError(t, err)
		assert.Equal(t, 0, c, "field %d", i)
	}

	assert.Equal(t, "( 7, -12.5, '2021-01-02 03:04:05.000000006', 'ab', ARRAY[1,2], 2.5, '1970-01-02 00:00:00.000' )", desc.Format(tup))

	err = tb.Put(0, int32(-1))
	assert.True(t, ErrIllegalData.Is(err))
	err = tb.Put(3, "abcde")
	assert.True(t, ErrValueTooLarge.Is(err))
}

func testTupleNulls(t *testing.T) {
	desc := NewTupleDescriptor(Bigint, Varchar, Decimal)
	tb := NewTupleBuilder(desc)
	tb.PutInt64(0, 1)
	require.NoError(t, tb.Put(2, nil))
	tup := tb.Build()

	assert.False(t, desc.IsNull(0, tup))
	assert.True(t, desc.IsNull(1, tup))
	assert.True(t, desc.IsNull(2, tup))

	_, ok := desc.GetString(1, tup)
	assert.False(t, ok)
	_, ok, err := desc.GetDecimal(2, tup)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := desc.GetValue(1, tup)
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Equal(t, "( 1, NULL, NULL )", desc.Format(tup))

	// Build resets the builder
	tup = tb.Build()
	assert.True(t, desc.IsNull(0, tup))
}
