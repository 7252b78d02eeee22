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
	"math"
)

// Type describes one SQL type: its name, its numeric ids, and the
// codec for its values. Types are immutable singletons and are compared
// by pointer.
type Type struct {
	enc     Encoding
	name    string
	sqlType int
	ordinal int
	elem    *Type
}

// SQL type ids.
const (
	sqlBinary    = -2
	sqlChar      = 1
	sqlDecimal   = 3
	sqlBoolean   = 16
	sqlDate      = 91
	sqlDouble    = 8
	sqlFloat     = 6
	sqlInteger   = 4
	sqlBigint    = -5
	sqlTime      = 92
	sqlTimestamp = 93
	sqlSmallint  = 5
	sqlTinyint   = -6
	sqlVarbinary = -3
	sqlVarchar   = 12

	sqlUnsignedInt       = 9
	sqlUnsignedLong      = 10
	sqlUnsignedTinyint   = 11
	sqlUnsignedSmallint  = 13
	sqlUnsignedFloat     = 14
	sqlUnsignedDouble    = 15
	sqlUnsignedTime      = 18
	sqlUnsignedDate      = 19
	sqlUnsignedTimestamp = 20

	// ArraySQLTypeBase is added to the id of an element type to form the
	// id of its array type.
	ArraySQLTypeBase = 3000
	sqlArray         = 2003
)

var (
	Varchar           = &Type{enc: VarcharEnc, name: "VARCHAR", sqlType: sqlVarchar, ordinal: 0}
	Char              = &Type{enc: CharEnc, name: "CHAR", sqlType: sqlChar, ordinal: 1}
	Bigint            = &Type{enc: BigintEnc, name: "BIGINT", sqlType: sqlBigint, ordinal: 2}
	Integer           = &Type{enc: IntegerEnc, name: "INTEGER", sqlType: sqlInteger, ordinal: 3}
	Smallint          = &Type{enc: SmallintEnc, name: "SMALLINT", sqlType: sqlSmallint, ordinal: 4}
	Tinyint           = &Type{enc: TinyintEnc, name: "TINYINT", sqlType: sqlTinyint, ordinal: 5}
	Float             = &Type{enc: FloatEnc, name: "FLOAT", sqlType: sqlFloat, ordinal: 6}
	Double            = &Type{enc: DoubleEnc, name: "DOUBLE", sqlType: sqlDouble, ordinal: 7}
	Decimal           = &Type{enc: DecimalEnc, name: "DECIMAL", sqlType: sqlDecimal, ordinal: 8}
	Timestamp         = &Type{enc: TimestampEnc, name: "TIMESTAMP", sqlType: sqlTimestamp, ordinal: 9}
	Time              = &Type{enc: TimeEnc, name: "TIME", sqlType: sqlTime, ordinal: 10}
	Date              = &Type{enc: DateEnc, name: "DATE", sqlType: sqlDate, ordinal: 11}
	UnsignedTimestamp = &Type{enc: UnsignedTimestampEnc, name: "UNSIGNED_TIMESTAMP", sqlType: sqlUnsignedTimestamp, ordinal: 12}
	UnsignedTime      = &Type{enc: UnsignedTimeEnc, name: "UNSIGNED_TIME", sqlType: sqlUnsignedTime, ordinal: 13}
	UnsignedDate      = &Type{enc: UnsignedDateEnc, name: "UNSIGNED_DATE", sqlType: sqlUnsignedDate, ordinal: 14}
	UnsignedLong      = &Type{enc: UnsignedLongEnc, name: "UNSIGNED_LONG", sqlType: sqlUnsignedLong, ordinal: 15}
	UnsignedInt       = &Type{enc: UnsignedIntEnc, name: "UNSIGNED_INT", sqlType: sqlUnsignedInt, ordinal: 16}
	UnsignedSmallint  = &Type{enc: UnsignedSmallintEnc, name: "UNSIGNED_SMALLINT", sqlType: sqlUnsignedSmallint, ordinal: 17}
	UnsignedTinyint   = &Type{enc: UnsignedTinyintEnc, name: "UNSIGNED_TINYINT", sqlType: sqlUnsignedTinyint, ordinal: 18}
	UnsignedFloat     = &Type{enc: UnsignedFloatEnc, name: "UNSIGNED_FLOAT", sqlType: sqlUnsignedFloat, ordinal: 19}
	UnsignedDouble    = &Type{enc: UnsignedDoubleEnc, name: "UNSIGNED_DOUBLE", sqlType: sqlUnsignedDouble, ordinal: 20}
	Boolean           = &Type{enc: BooleanEnc, name: "BOOLEAN", sqlType: sqlBoolean, ordinal: 21}
	Varbinary         = &Type{enc: VarbinaryEnc, name: "VARBINARY", sqlType: sqlVarbinary, ordinal: 22}
	Binary            = &Type{enc: BinaryEnc, name: "BINARY", sqlType: sqlBinary, ordinal: 23}

	IntegerArray           = newArrayType(Integer, 24)
	BooleanArray           = newArrayType(Boolean, 25)
	VarcharArray           = newArrayType(Varchar, 26)
	VarbinaryArray         = newArrayType(Varbinary, 27)
	BinaryArray            = newArrayType(Binary, 28)
	CharArray              = newArrayType(Char, 29)
	BigintArray            = newArrayType(Bigint, 30)
	SmallintArray          = newArrayType(Smallint, 31)
	TinyintArray           = newArrayType(Tinyint, 32)
	FloatArray             = newArrayType(Float, 33)
	DoubleArray            = newArrayType(Double, 34)
	DecimalArray           = newArrayType(Decimal, 35)
	TimestampArray         = newArrayType(Timestamp, 36)
	UnsignedTimestampArray = newArrayType(UnsignedTimestamp, 37)
	TimeArray              = newArrayType(Time, 38)
	UnsignedTimeArray      = newArrayType(UnsignedTime, 39)
	DateArray              = newArrayType(Date, 40)
	UnsignedDateArray      = newArrayType(UnsignedDate, 41)
	UnsignedLongArray      = newArrayType(UnsignedLong, 42)
	UnsignedIntArray       = newArrayType(UnsignedInt, 43)
	UnsignedSmallintArray  = newArrayType(UnsignedSmallint, 44)
	UnsignedTinyintArray   = newArrayType(UnsignedTinyint, 45)
	UnsignedFloatArray     = newArrayType(UnsignedFloat, 46)
	UnsignedDoubleArray    = newArrayType(UnsignedDouble, 47)
)

func newArrayType(elem *Type, ordinal int) *Type {
	return &Type{
		enc:     ArrayEnc,
		name:    elem.name + " ARRAY",
		sqlType: ArraySQLTypeBase + elem.sqlType,
		ordinal: ordinal,
		elem:    elem,
	}
}

// Name returns the SQL name of the type, e.g. "UNSIGNED_INT" or "CHAR ARRAY".
func (t *Type) Name() string {
	return t.name
}

func (t *Type) String() string {
	return t.name
}

func (t *Type) Encoding() Encoding {
	return t.enc
}

// SQLType returns the numeric SQL type id.
func (t *Type) SQLType() int {
	return t.sqlType
}

// ResultSetSQLType returns the id reported to result-set consumers:
// unsigned types report their signed counterpart and arrays report the
// generic array id.
func (t *Type) ResultSetSQLType() int {
	switch t.enc {
	case ArrayEnc:
		return sqlArray
	case UnsignedTinyintEnc:
		return sqlTinyint
	case UnsignedSmallintEnc:
		return sqlSmallint
	case UnsignedIntEnc:
		return sqlInteger
	case UnsignedLongEnc:
		return sqlBigint
	case UnsignedFloatEnc:
		return sqlFloat
	case UnsignedDoubleEnc:
		return sqlDouble
	case UnsignedDateEnc:
		return sqlDate
	case UnsignedTimeEnc:
		return sqlTime
	case UnsignedTimestampEnc:
		return sqlTimestamp
	default:
		return t.sqlType
	}
}

// Ordinal returns the stable position of the type in the registry.
func (t *Type) Ordinal() int {
	return t.ordinal
}

// Elem returns the element type of an array type, or nil.
func (t *Type) Elem() *Type {
	return t.elem
}

func (t *Type) IsArray() bool {
	return t.enc == ArrayEnc
}

// FixedWidth reports whether every value of the type has the same
// encoded length. CHAR and BINARY are fixed at their declared width.
func (t *Type) FixedWidth() bool {
	if t.enc == CharEnc || t.enc == BinaryEnc {
		return true
	}
	_, ok := sizeFromEncoding(t.enc)
	return ok
}

// ByteSize returns the encoded width of the type. It returns false for
// variable-width types and for types whose width is declared per column.
func (t *Type) ByteSize() (ByteSize, bool) {
	return sizeFromEncoding(t.enc)
}

// IsUnsigned reports whether the type restricts its domain to values >= 0.
func (t *Type) IsUnsigned() bool {
	return isUnsigned(t.enc)
}

func (t *Type) IsNumeric() bool {
	return isNumeric(t.enc)
}

func isUnsigned(enc Encoding) bool {
	switch enc {
	case UnsignedTinyintEnc, UnsignedSmallintEnc, UnsignedIntEnc, UnsignedLongEnc,
		UnsignedFloatEnc, UnsignedDoubleEnc,
		UnsignedDateEnc, UnsignedTimeEnc, UnsignedTimestampEnc:
		return true
	default:
		return false
	}
}

func isIntegral(enc Encoding) bool {
	switch enc {
	case TinyintEnc, SmallintEnc, IntegerEnc, BigintEnc,
		UnsignedTinyintEnc, UnsignedSmallintEnc, UnsignedIntEnc, UnsignedLongEnc:
		return true
	default:
		return false
	}
}

func isFloating(enc Encoding) bool {
	switch enc {
	case FloatEnc, DoubleEnc, UnsignedFloatEnc, UnsignedDoubleEnc:
		return true
	default:
		return false
	}
}

func isSinglePrecision(enc Encoding) bool {
	return enc == FloatEnc || enc == UnsignedFloatEnc
}

func isNumeric(enc Encoding) bool {
	return isIntegral(enc) || isFloating(enc) || enc == DecimalEnc
}

func isCalendar(enc Encoding) bool {
	switch enc {
	case DateEnc, TimeEnc, TimestampEnc, UnsignedDateEnc, UnsignedTimeEnc, UnsignedTimestampEnc:
		return true
	default:
		return false
	}
}

func isTimestamp(enc Encoding) bool {
	return enc == TimestampEnc || enc == UnsignedTimestampEnc
}

func isString(enc Encoding) bool {
	return enc == CharEnc || enc == VarcharEnc
}

func isBinary(enc Encoding) bool {
	return enc == BinaryEnc || enc == VarbinaryEnc
}

// integralBounds returns the inclusive value range of an integral encoding.
func integralBounds(enc Encoding) (lo, hi int64) {
	switch enc {
	case TinyintEnc:
		return math.MinInt8, math.MaxInt8
	case SmallintEnc:
		return math.MinInt16, math.MaxInt16
	case IntegerEnc:
		return math.MinInt32, math.MaxInt32
	case BigintEnc:
		return math.MinInt64, math.MaxInt64
	case UnsignedTinyintEnc:
		return 0, math.MaxInt8
	case UnsignedSmallintEnc:
		return 0, math.MaxInt16
	case UnsignedIntEnc:
		return 0, math.MaxInt32
	case UnsignedLongEnc:
		return 0, math.MaxInt64
	default:
		panic("not an integral encoding")
	}
}

// floatingBound returns the largest finite magnitude of a floating encoding.
func floatingBound(enc Encoding) float64 {
	if isSinglePrecision(enc) {
		return math.MaxFloat32
	}
	return math.MaxFloat64
}
