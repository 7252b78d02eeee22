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


package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/phoenix/store/val"
)

func encodeHex(t *testing.T, typ, literal string, order val.SortOrder) string {
	var buf bytes.Buffer
	require.NoError(t, runEncode(&buf, typ, literal, order))
	return strings.TrimSpace(buf.String())
}

func TestEncode(t *testing.T) {
	tests := []struct {
		typ     string
		literal string
		order   val.SortOrder
		exp     string
	}{
		{"INTEGER", "1", val.Ascending, "80000001"},
		{"INTEGER", "-1", val.Ascending, "7fffffff"},
		{"int", "1", val.Descending, "7ffffffe"},
		{"UNSIGNED_INT", "1", val.Ascending, "00000001"},
		{"BIGINT", "0", val.Descending, "7fffffffffffffff"},
		{"VARCHAR", "'abc'", val.Ascending, "616263"},
		{"VARCHAR", "NULL", val.Ascending, ""},
		{"VARBINARY", "X'0102'", val.Ascending, "0102"},
	}
	for _, test := range tests {
		t.Run(test.typ+" "+test.literal, func(t *testing.T) {
			assert.Equal(t, test.exp, encodeHex(t, test.typ, test.literal, test.order))
		})
	}

	var buf bytes.Buffer
	assert.Error(t, runEncode(&buf, "NOPE", "1", val.Ascending))
	assert.Error(t, runEncode(&buf, "INTEGER", "abc", val.Ascending))
	assert.Error(t, runEncode(&buf, "INTEGER", "NULL", val.Ascending))
	assert.Empty(t, buf.String())
}

func TestDecode(t *testing.T) {
	decode := func(t *testing.T, typ, hexStr string, opts decodeOpts) string {
		var buf bytes.Buffer
		require.NoError(t, runDecode(&buf, typ, hexStr, opts))
		return strings.TrimSpace(buf.String())
	}

	assert.Equal(t, "1", decode(t, "INTEGER", "80000001", decodeOpts{}))
	assert.Equal(t, "1", decode(t, "INTEGER", "0x80000001", decodeOpts{}))
	assert.Equal(t, "1", decode(t, "INTEGER", "7ffffffe", decodeOpts{order: val.Descending}))
	assert.Equal(t, "'abc'", decode(t, "VARCHAR", "616263", decodeOpts{}))
	assert.Equal(t, "NULL", decode(t, "VARCHAR", "", decodeOpts{}))
	assert.Equal(t, "1", decode(t, "BIGINT", "80000001", decodeOpts{source: "INTEGER"}))

	t.Run("json", func(t *testing.T) {
		assert.Equal(t, `"abc"`, decode(t, "VARCHAR", "616263", decodeOpts{asJSON: true}))
		assert.Equal(t, `null`, decode(t, "VARCHAR", "", decodeOpts{asJSON: true}))
		assert.Equal(t, `"0102"`, decode(t, "VARBINARY", "0102", decodeOpts{asJSON: true}))

		dec := encodeHex(t, "DECIMAL", "1.5", val.Ascending)
		assert.Equal(t, `"1.5"`, decode(t, "DECIMAL", dec, decodeOpts{asJSON: true}))

		arr := encodeHex(t, "INTEGER ARRAY", "ARRAY[1,2,3]", val.Ascending)
		assert.Equal(t, `[1,2,3]`, decode(t, "INTEGER ARRAY", arr, decodeOpts{asJSON: true}))

		ts := encodeHex(t, "TIMESTAMP", "'2021-03-04 05:06:07.123'", val.Descending)
		assert.Equal(t, `"2021-03-04T05:06:07.123Z"`, decode(t, "TIMESTAMP", ts, decodeOpts{order: val.Descending, asJSON: true}))
	})

	var buf bytes.Buffer
	assert.Error(t, runDecode(&buf, "INTEGER", "zz", decodeOpts{}))
	assert.Error(t, runDecode(&buf, "INTEGER", "0102", decodeOpts{}))
	assert.Error(t, runDecode(&buf, "INTEGER", "80000001", decodeOpts{source: "VARCHAR"}))
}

func TestCompare(t *testing.T) {
	compare := func(t *testing.T, l, r encodedArg) string {
		var buf bytes.Buffer
		require.NoError(t, runCompare(&buf, l, r))
		return strings.TrimSpace(buf.String())
	}
	hexOf := func(typ, lit string, order val.SortOrder) encodedArg {
		return encodedArg{typ: typ, hex: encodeHex(t, typ, lit, order), order: order}
	}

	assert.Equal(t, "-1", compare(t, hexOf("INTEGER", "1", val.Ascending), hexOf("INTEGER", "2", val.Ascending)))
	assert.Equal(t, "-1", compare(t, hexOf("INTEGER", "1", val.Descending), hexOf("INTEGER", "2", val.Descending)))
	assert.Equal(t, "1", compare(t, hexOf("INTEGER", "3", val.Descending), hexOf("INTEGER", "2", val.Ascending)))
	assert.Equal(t, "0", compare(t, hexOf("SMALLINT", "7", val.Ascending), hexOf("DOUBLE", "7", val.Descending)))
	assert.Equal(t, "-1", compare(t, hexOf("VARCHAR", "'a'", val.Descending), hexOf("VARCHAR", "'ab'", val.Descending)))
	assert.Equal(t, "-1", compare(t, encodedArg{typ: "INTEGER"}, hexOf("INTEGER", "1", val.Ascending)))

	var buf bytes.Buffer
	assert.Error(t, runCompare(&buf, hexOf("VARCHAR", "'a'", val.Ascending), hexOf("INTEGER", "1", val.Ascending)))
}

func TestCoerce(t *testing.T) {
	coerce := func(t *testing.T, src, dst, literal string) []string {
		var buf bytes.Buffer
		require.NoError(t, runCoerce(&buf, src, dst, literal, val.Ascending))
		return strings.Split(strings.TrimSpace(buf.String()), "\n")
	}

	assert.Equal(t, []string{"INTEGER -> BIGINT: always"}, coerce(t, "INTEGER", "BIGINT", ""))
	assert.Equal(t, []string{"BOOLEAN -> INTEGER: never"}, coerce(t, "BOOLEAN", "INTEGER", ""))
	assert.Equal(t, []string{"BIGINT -> INTEGER: value-dependent", "5: 5 80000005"}, coerce(t, "BIGINT", "INTEGER", "5"))
	assert.Equal(t, []string{"BIGINT -> INTEGER: value-dependent", "5000000000: not coercible"}, coerce(t, "BIGINT", "INTEGER", "5000000000"))
	assert.Equal(t, []string{"DATE -> TIMESTAMP: always"}, coerce(t, "DATE", "TIMESTAMP", ""))

	var buf bytes.Buffer
	assert.Error(t, runCoerce(&buf, "INTEGER", "NOPE", "", val.Ascending))
	assert.Error(t, runCoerce(&buf, "INTEGER", "BIGINT", "x", val.Ascending))
}

func TestArrayGet(t *testing.T) {
	arrayGet := func(t *testing.T, typ, hexStr string, i int, order val.SortOrder) string {
		var buf bytes.Buffer
		require.NoError(t, runArrayGet(&buf, typ, hexStr, i, order, 0))
		return strings.TrimSpace(buf.String())
	}

	asc := encodeHex(t, "INTEGER ARRAY", "ARRAY[1,2,3]", val.Ascending)
	assert.Equal(t, "2\t80000002", arrayGet(t, "INTEGER ARRAY", asc, 1, val.Ascending))
	desc := encodeHex(t, "INTEGER ARRAY", "ARRAY[1,2,3]", val.Descending)
	assert.Equal(t, "3\t7ffffffc", arrayGet(t, "INTEGER ARRAY", desc, 2, val.Descending))

	vc := encodeHex(t, "VARCHAR ARRAY", "ARRAY['a','bc']", val.Ascending)
	assert.True(t, strings.HasPrefix(arrayGet(t, "VARCHAR ARRAY", vc, 1, val.Ascending), "'bc'\t"))

	var buf bytes.Buffer
	assert.Error(t, runArrayGet(&buf, "INTEGER ARRAY", asc, 3, val.Ascending, 0))
	assert.Error(t, runArrayGet(&buf, "INTEGER", "80000001", 0, val.Ascending, 0))
}

func TestPrecision(t *testing.T) {
	for _, order := range []val.SortOrder{val.Ascending, val.Descending} {
		var buf bytes.Buffer
		require.NoError(t, runPrecision(&buf, encodeHex(t, "DECIMAL", "123.45", order), order))
		assert.Equal(t, "precision=5 scale=2\n", buf.String())
	}
	var buf bytes.Buffer
	assert.Error(t, runPrecision(&buf, "", val.Ascending))
}
