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
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TupleDesc describes a Tuple set. Data structures that contain Tuples
// use a TupleDesc's types to interpret the fields of a Tuple.
type TupleDesc struct {
	Types []*Type
	// MaxLengths holds the declared width of CHAR and BINARY fields, and
	// of the elements of CHAR and BINARY arrays. It may be shorter than
	// Types.
	MaxLengths []int
}

// NewTupleDescriptor makes a TupleDesc from |types|.
func NewTupleDescriptor(types ...*Type) TupleDesc {
	if len(types) > MaxTupleFields {
		panic("tuple field maxIdx exceeds maximum")
	}
	return TupleDesc{Types: types}
}

// WithMaxLengths returns a copy of |td| with declared widths.
func (td TupleDesc) WithMaxLengths(lengths ...int) TupleDesc {
	td.MaxLengths = lengths
	return td
}

// Count returns the number of fields in the TupleDesc.
func (td TupleDesc) Count() int {
	return len(td.Types)
}

func (td TupleDesc) maxLength(i int) int {
	if i < len(td.MaxLengths) {
		return td.MaxLengths[i]
	}
	return 0
}

// IsNull returns true if the ith field of |tup| is NULL.
func (td TupleDesc) IsNull(i int, tup Tuple) bool {
	return tup.FieldIsNull(i)
}

// GetField returns the ith field of |tup|.
func (td TupleDesc) GetField(i int, tup Tuple) []byte {
	return tup.GetField(i)
}

// GetValue decodes the ith field of |tup|, nil when NULL.
func (td TupleDesc) GetValue(i int, tup Tuple) (any, error) {
	return td.Types[i].DecodeWithArgs(tup.GetField(i), DecodeArgs{MaxLength: td.maxLength(i)})
}

// GetBool reads a bool from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetBool(i int, tup Tuple) (v bool, ok bool) {
	td.expectEncoding(i, BooleanEnc)
	b := td.GetField(i, tup)
	if b != nil {
		v, ok = readBool(b), true
	}
	return
}

// GetInt8 reads an int8 from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetInt8(i int, tup Tuple) (v int8, ok bool) {
	td.expectEncoding(i, TinyintEnc, UnsignedTinyintEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	if td.Types[i].enc == UnsignedTinyintEnc {
		return int8(readUint8(b)), true
	}
	return readInt8(b), true
}

// GetInt16 reads an int16 from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetInt16(i int, tup Tuple) (v int16, ok bool) {
	td.expectEncoding(i, SmallintEnc, UnsignedSmallintEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	if td.Types[i].enc == UnsignedSmallintEnc {
		return int16(readUint16(b)), true
	}
	return readInt16(b), true
}

// GetInt32 reads an int32 from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetInt32(i int, tup Tuple) (v int32, ok bool) {
	td.expectEncoding(i, IntegerEnc, UnsignedIntEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	if td.Types[i].enc == UnsignedIntEnc {
		return int32(readUint32(b)), true
	}
	return readInt32(b), true
}

// GetInt64 reads an int64 from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetInt64(i int, tup Tuple) (v int64, ok bool) {
	td.expectEncoding(i, BigintEnc, UnsignedLongEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	if td.Types[i].enc == UnsignedLongEnc {
		return int64(readUint64(b)), true
	}
	return readInt64(b), true
}

// GetFloat32 reads a float32 from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetFloat32(i int, tup Tuple) (v float32, ok bool) {
	td.expectEncoding(i, FloatEnc, UnsignedFloatEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	if td.Types[i].enc == UnsignedFloatEnc {
		return readUnsignedFloat32(b), true
	}
	return readFloat32(b), true
}

// GetFloat64 reads a float64 from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetFloat64(i int, tup Tuple) (v float64, ok bool) {
	td.expectEncoding(i, DoubleEnc, UnsignedDoubleEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	if td.Types[i].enc == UnsignedDoubleEnc {
		return readUnsignedFloat64(b), true
	}
	return readFloat64(b), true
}

// GetDecimal reads a decimal.Decimal from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetDecimal(i int, tup Tuple) (v decimal.Decimal, ok bool, err error) {
	td.expectEncoding(i, DecimalEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	v, err = decodeDecimal(b)
	return v, err == nil, err
}

// GetTime reads a time.Time from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetTime(i int, tup Tuple) (v time.Time, ok bool) {
	td.expectEncoding(i, DateEnc, TimeEnc, TimestampEnc, UnsignedDateEnc, UnsignedTimeEnc, UnsignedTimestampEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	switch td.Types[i].enc {
	case TimestampEnc:
		v = readTimestamp(b, true)
	case UnsignedTimestampEnc:
		v = readTimestamp(b, false)
	case UnsignedDateEnc, UnsignedTimeEnc:
		v = readDate(b, false)
	default:
		v = readDate(b, true)
	}
	return v, true
}

// GetString reads a string from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetString(i int, tup Tuple) (v string, ok bool) {
	td.expectEncoding(i, VarcharEnc, CharEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	if td.Types[i].enc == CharEnc {
		b = []byte(strings.TrimRight(string(b), " "))
	}
	return string(b), true
}

// GetBytes reads a []byte from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetBytes(i int, tup Tuple) (v []byte, ok bool) {
	td.expectEncoding(i, VarbinaryEnc, BinaryEnc)
	b := td.GetField(i, tup)
	if b != nil {
		v, ok = b, true
	}
	return
}

// GetArray reads an *Array from the ith field of the Tuple.
// If the ith field is NULL, |ok| is set to false.
func (td TupleDesc) GetArray(i int, tup Tuple) (v *Array, ok bool, err error) {
	td.expectEncoding(i, ArrayEnc)
	b := td.GetField(i, tup)
	if b == nil {
		return
	}
	v, err = decodeArray(td.Types[i], b, td.maxLength(i))
	return v, err == nil, err
}

func (td TupleDesc) expectEncoding(i int, encodings ...Encoding) {
	for _, enc := range encodings {
		if enc == td.Types[i].enc {
			return
		}
	}
	panic("incorrect value encoding")
}

// Format prints a Tuple as a string.
func (td TupleDesc) Format(tup Tuple) string {
	if tup == nil || tup.Count() == 0 {
		return "( )"
	}

	var sb strings.Builder
	sb.WriteString("( ")

	seenOne := false
	for i := range td.Types {
		if seenOne {
			sb.WriteString(", ")
		}
		seenOne = true
		v, err := td.GetValue(i, tup)
		if err != nil {
			sb.WriteString(fmt.Sprintf("<%x>", td.GetField(i, tup)))
			continue
		}
		sb.WriteString(td.Types[i].FormatValue(v))
	}
	sb.WriteString(" )")
	return sb.String()
}

// TupleBuilder builds Tuples of a TupleDesc.
type TupleBuilder struct {
	Desc   TupleDesc
	fields [][]byte
}

func NewTupleBuilder(desc TupleDesc) *TupleBuilder {
	return &TupleBuilder{
		Desc:   desc,
		fields: make([][]byte, desc.Count()),
	}
}

// Build materializes a Tuple from the fields written to the
// TupleBuilder and resets the builder.
func (tb *TupleBuilder) Build() Tuple {
	tup := NewTuple(tb.fields...)
	tb.Recycle()
	return tup
}

// Recycle clears the fields written to the TupleBuilder.
func (tb *TupleBuilder) Recycle() {
	for i := range tb.fields {
		tb.fields[i] = nil
	}
}

// Put writes the native value |v| into the ith field. A nil |v| is NULL,
// for fixed-width types too.
func (tb *TupleBuilder) Put(i int, v any) error {
	if v == nil {
		tb.fields[i] = nil
		return nil
	}
	t := tb.Desc.Types[i]
	b, err := t.Encode(v)
	if err != nil {
		return err
	}
	if n := tb.Desc.maxLength(i); n > 0 {
		if b, err = t.Pad(b, n); err != nil {
			return err
		}
	}
	tb.fields[i] = b
	return nil
}

// PutBool writes a bool to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutBool(i int, v bool) {
	tb.Desc.expectEncoding(i, BooleanEnc)
	tb.fields[i] = make([]byte, booleanSize)
	writeBool(tb.fields[i], v)
}

// PutInt8 writes an int8 to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutInt8(i int, v int8) {
	tb.Desc.expectEncoding(i, TinyintEnc)
	tb.fields[i] = make([]byte, int8Size)
	writeInt8(tb.fields[i], v)
}

// PutInt16 writes an int16 to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutInt16(i int, v int16) {
	tb.Desc.expectEncoding(i, SmallintEnc)
	tb.fields[i] = make([]byte, int16Size)
	writeInt16(tb.fields[i], v)
}

// PutInt32 writes an int32 to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutInt32(i int, v int32) {
	tb.Desc.expectEncoding(i, IntegerEnc)
	tb.fields[i] = make([]byte, int32Size)
	writeInt32(tb.fields[i], v)
}

// PutInt64 writes an int64 to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutInt64(i int, v int64) {
	tb.Desc.expectEncoding(i, BigintEnc)
	tb.fields[i] = make([]byte, int64Size)
	writeInt64(tb.fields[i], v)
}

// PutFloat32 writes a float32 to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutFloat32(i int, v float32) {
	tb.Desc.expectEncoding(i, FloatEnc)
	tb.fields[i] = make([]byte, float32Size)
	writeFloat32(tb.fields[i], v)
}

// PutFloat64 writes a float64 to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutFloat64(i int, v float64) {
	tb.Desc.expectEncoding(i, DoubleEnc)
	tb.fields[i] = make([]byte, float64Size)
	writeFloat64(tb.fields[i], v)
}

// PutString writes a string to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutString(i int, v string) {
	tb.Desc.expectEncoding(i, VarcharEnc)
	tb.fields[i] = []byte(v)
}

// PutBytes writes a []byte to the ith field of the Tuple being built.
func (tb *TupleBuilder) PutBytes(i int, v []byte) {
	tb.Desc.expectEncoding(i, VarbinaryEnc)
	tb.fields[i] = append([]byte(nil), v...)
}

// PutField writes an encoded field directly into the ith field.
func (tb *TupleBuilder) PutField(i int, b []byte) {
	tb.fields[i] = b
}
