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
	"time"

	"github.com/shopspring/decimal"
)

// Encode returns the ascending encoding of |v|. A nil |v| encodes to
// a nil slice for variable-width types and is rejected for fixed-width
// types.
func (t *Type) Encode(v any) ([]byte, error) {
	return t.encode(v, false)
}

// EncodeSorted returns the encoding of |v| under |order|.
func (t *Type) EncodeSorted(v any, order SortOrder) ([]byte, error) {
	b, err := t.encode(v, false)
	if err != nil {
		return nil, err
	}
	return applyOrder(b, order), nil
}

// EncodeExact is Encode, except that a DECIMAL with more than
// MaxDecimalPrecision significant digits returns ErrPrecisionOverflow
// instead of being rounded.
func (t *Type) EncodeExact(v any) ([]byte, error) {
	return t.encode(v, true)
}

// EncodeInto writes the ascending encoding of |v| into |dst| and returns
// the number of bytes written. Nothing is written when |dst| is too small.
func (t *Type) EncodeInto(dst []byte, v any) (int, error) {
	if sz, ok := t.ByteSize(); ok {
		if len(dst) < int(sz) {
			return 0, illegal(t, "destination of %d bytes cannot hold %d", len(dst), sz)
		}
		if v == nil {
			return 0, illegal(t, "may not be null")
		}
		nv, err := t.native(v)
		if err != nil {
			return 0, err
		}
		t.writeFixed(dst[:sz], nv)
		return int(sz), nil
	}

	b, err := t.encode(v, false)
	if err != nil {
		return 0, err
	}
	if len(dst) < len(b) {
		return 0, illegal(t, "destination of %d bytes cannot hold %d", len(dst), len(b))
	}
	return copy(dst, b), nil
}

func (t *Type) encode(v any, exact bool) ([]byte, error) {
	if v == nil {
		if t.FixedWidth() {
			return nil, illegal(t, "may not be null")
		}
		return nil, nil
	}
	nv, err := t.native(v)
	if err != nil {
		return nil, err
	}

	if sz, ok := t.ByteSize(); ok {
		buf := make([]byte, sz)
		t.writeFixed(buf, nv)
		return buf, nil
	}

	switch t.enc {
	case CharEnc, VarcharEnc:
		return []byte(nv.(string)), nil
	case BinaryEnc, VarbinaryEnc:
		b := nv.([]byte)
		return append(make([]byte, 0, len(b)), b...), nil
	case DecimalEnc:
		return encodeDecimal(nv.(decimal.Decimal), exact)
	case ArrayEnc:
		return encodeArray(t, nv.(*Array))
	default:
		panic("unknown encoding")
	}
}

// writeFixed writes the native value |v| into |buf|, which must be
// exactly the width of |t|.
func (t *Type) writeFixed(buf []byte, v any) {
	switch t.enc {
	case BooleanEnc:
		writeBool(buf, v.(bool))
	case TinyintEnc:
		writeInt8(buf, v.(int8))
	case SmallintEnc:
		writeInt16(buf, v.(int16))
	case IntegerEnc:
		writeInt32(buf, v.(int32))
	case BigintEnc:
		writeInt64(buf, v.(int64))
	case UnsignedTinyintEnc:
		writeUint8(buf, uint8(v.(int8)))
	case UnsignedSmallintEnc:
		writeUint16(buf, uint16(v.(int16)))
	case UnsignedIntEnc:
		writeUint32(buf, uint32(v.(int32)))
	case UnsignedLongEnc:
		writeUint64(buf, uint64(v.(int64)))
	case FloatEnc:
		writeFloat32(buf, v.(float32))
	case DoubleEnc:
		writeFloat64(buf, v.(float64))
	case UnsignedFloatEnc:
		writeUnsignedFloat32(buf, v.(float32))
	case UnsignedDoubleEnc:
		writeUnsignedFloat64(buf, v.(float64))
	case DateEnc, TimeEnc:
		writeDate(buf, v.(time.Time), true)
	case UnsignedDateEnc, UnsignedTimeEnc:
		writeDate(buf, v.(time.Time), false)
	case TimestampEnc:
		writeTimestamp(buf, v.(time.Time), true)
	case UnsignedTimestampEnc:
		writeTimestamp(buf, v.(time.Time), false)
	default:
		panic("unknown encoding")
	}
}

// EstimateByteSize returns the expected encoded length of |v|.
func (t *Type) EstimateByteSize(v any) int {
	if v == nil {
		return 0
	}
	if sz, ok := t.ByteSize(); ok {
		return int(sz)
	}
	switch t.enc {
	case CharEnc, VarcharEnc, BinaryEnc, VarbinaryEnc:
		switch x := v.(type) {
		case string:
			return len(x)
		case []byte:
			return len(x)
		}
	case DecimalEnc:
		if d, err := t.decimal(v); err == nil {
			return decimalEncodedSize(roundDecimal(d))
		}
	case ArrayEnc:
		if a, ok := v.(*Array); ok {
			return estimateArraySize(t, a)
		}
	}
	return 0
}

// Pad extends an ascending CHAR or BINARY encoding to |width| bytes,
// with spaces for CHAR and zero bytes for BINARY. Other types are
// returned unchanged.
func (t *Type) Pad(b []byte, width int) ([]byte, error) {
	return t.PadSorted(b, width, Ascending)
}

// PadSorted is Pad for an encoding under |order|.
func (t *Type) PadSorted(b []byte, width int, order SortOrder) ([]byte, error) {
	var pad byte
	switch t.enc {
	case CharEnc:
		pad = ' '
	case BinaryEnc:
		pad = 0x00
	default:
		return b, nil
	}
	if len(b) > width {
		return nil, ErrValueTooLarge.New(len(b), width, t.name)
	}
	if len(b) == width {
		return b, nil
	}
	if order == Descending {
		pad = ^pad
	}
	out := make([]byte, width)
	n := copy(out, b)
	for i := n; i < width; i++ {
		out[i] = pad
	}
	return out, nil
}

// Compare compares two encodings of |t| under the same sort order.
func (t *Type) Compare(l, r []byte) int {
	return compareBytes(l, r)
}
