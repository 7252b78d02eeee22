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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	all := Types()
	require.Len(t, all, 48)
	seen := make(map[int]bool)
	for i, typ := range all {
		assert.Equal(t, i, typ.Ordinal())
		assert.False(t, seen[typ.SQLType()], "duplicate sql type %d", typ.SQLType())
		seen[typ.SQLType()] = true
	}
	assert.Len(t, ScalarTypes(), 24)
	assert.Equal(t, Varchar, all[0])
	assert.Equal(t, UnsignedDoubleArray, all[47])
}

func TestTypeFromName(t *testing.T) {
	tests := []struct {
		name string
		exp  *Type
	}{
		{"VARCHAR", Varchar},
		{"varchar", Varchar},
		{"int", Integer},
		{"INTEGER", Integer},
		{"long", Bigint},
		{"unsigned_bigint", UnsignedLong},
		{"UNSIGNED_INT", UnsignedInt},
		{"numeric", Decimal},
		{"VARCHAR ARRAY", VarcharArray},
		{"varchar[]", VarcharArray},
		{"int[]", IntegerArray},
		{"  bigint   array ", BigintArray},
		{"unsigned_timestamp array", UnsignedTimestampArray},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			typ, err := TypeFromName(test.name)
			require.NoError(t, err)
			assert.Equal(t, test.exp, typ)
		})
	}

	_, err := TypeFromName("JSON")
	assert.True(t, ErrUnknownType.Is(err))
	_, err = TypeFromName("int[][]")
	assert.True(t, ErrUnknownType.Is(err))
}

func TestTypeIds(t *testing.T) {
	typ, err := TypeFromSQLType(12)
	require.NoError(t, err)
	assert.Equal(t, Varchar, typ)

	typ, err = TypeFromSQLType(ArraySQLTypeBase + 4)
	require.NoError(t, err)
	assert.Equal(t, IntegerArray, typ)

	_, err = TypeFromSQLType(-1000)
	assert.True(t, ErrUnknownType.Is(err))

	typ, err = TypeFromOrdinal(8)
	require.NoError(t, err)
	assert.Equal(t, Decimal, typ)

	_, err = TypeFromOrdinal(48)
	assert.True(t, ErrUnknownType.Is(err))

	typ, err = ArrayOf(Decimal)
	require.NoError(t, err)
	assert.Equal(t, DecimalArray, typ)
	assert.Equal(t, Decimal, typ.Elem())

	_, err = ArrayOf(IntegerArray)
	assert.True(t, ErrUnknownType.Is(err))

	assert.Equal(t, 4, UnsignedInt.ResultSetSQLType())
	assert.Equal(t, 93, UnsignedTimestamp.ResultSetSQLType())
	assert.Equal(t, 2003, VarcharArray.ResultSetSQLType())
	assert.Equal(t, 12, Varchar.ResultSetSQLType())
}

func TestTypeProperties(t *testing.T) {
	assert.True(t, UnsignedFloat.IsUnsigned())
	assert.False(t, Float.IsUnsigned())
	assert.True(t, Decimal.IsNumeric())
	assert.False(t, Date.IsNumeric())
	assert.True(t, CharArray.IsArray())
	assert.Equal(t, "CHAR ARRAY", CharArray.Name())
	assert.Equal(t, "UNSIGNED_SMALLINT", UnsignedSmallint.String())
	assert.Equal(t, ArrayEnc, BooleanArray.Encoding())
}
