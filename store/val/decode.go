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
	"github.com/shopspring/decimal"
)

// DecodeArgs describes the bytes handed to DecodeWithArgs.
type DecodeArgs struct {
	// Source is the type the bytes were written as. Nil means the
	// receiving type.
	Source *Type
	Order  SortOrder
	// MaxLength is the declared width of CHAR and BINARY elements of an
	// array. Zero when undeclared.
	MaxLength int
	// Scale, when set, is the declared scale of a DECIMAL column. Decoded
	// values are rounded half away from zero to it.
	Scale *int32
}

// Decode reads bytes written as |src| under |order| into the native Go
// domain of |t|. Zero-length input decodes to nil.
func (t *Type) Decode(b []byte, src *Type, order SortOrder) (any, error) {
	return t.DecodeWithArgs(b, DecodeArgs{Source: src, Order: order})
}

// DecodeWithArgs is Decode with declared column attributes.
func (t *Type) DecodeWithArgs(b []byte, args DecodeArgs) (any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	src := args.Source
	if src == nil {
		src = t
	}

	v, err := src.decodeAscending(normalize(b, args.Order), args.MaxLength)
	if err != nil {
		return nil, err
	}
	if src != t {
		if !src.IsCoercibleTo(t) && !src.IsCoercibleToValue(t, v) {
			return nil, ErrConstraintViolation.New(src.name, t.name)
		}
		if v, err = t.ConvertValue(v, src); err != nil {
			return nil, err
		}
	}
	if d, ok := v.(decimal.Decimal); ok && args.Scale != nil {
		v = d.Round(*args.Scale)
	}
	return v, nil
}

// decodeAscending reads the ascending encoding |b| of |t|. |b| may be
// borrowed; nothing returned aliases it.
func (t *Type) decodeAscending(b []byte, maxLength int) (any, error) {
	if sz, ok := t.ByteSize(); ok {
		if len(b) != int(sz) {
			return nil, illegal(t, "expected %d bytes, found %d", sz, len(b))
		}
		return t.readFixed(b)
	}

	switch t.enc {
	case CharEnc:
		n := len(b)
		for n > 0 && b[n-1] == ' ' {
			n--
		}
		s := string(b[:n])
		if !isSingleByte(s) {
			return nil, illegal(t, "CHAR types may only contain single byte characters (%s)", s)
		}
		return s, nil
	case VarcharEnc:
		return string(b), nil
	case BinaryEnc, VarbinaryEnc:
		return append(make([]byte, 0, len(b)), b...), nil
	case DecimalEnc:
		return decodeDecimal(b)
	case ArrayEnc:
		return decodeArray(t, b, maxLength)
	default:
		panic("unknown encoding")
	}
}

func (t *Type) readFixed(b []byte) (any, error) {
	switch t.enc {
	case BooleanEnc:
		if b[0] > 1 {
			return nil, illegal(t, "byte %d is not a boolean", b[0])
		}
		return readBool(b), nil
	case TinyintEnc:
		return readInt8(b), nil
	case SmallintEnc:
		return readInt16(b), nil
	case IntegerEnc:
		return readInt32(b), nil
	case BigintEnc:
		return readInt64(b), nil
	case UnsignedTinyintEnc:
		v := int8(readUint8(b))
		if v < 0 {
			return nil, illegal(t, "%d is negative", v)
		}
		return v, nil
	case UnsignedSmallintEnc:
		v := int16(readUint16(b))
		if v < 0 {
			return nil, illegal(t, "%d is negative", v)
		}
		return v, nil
	case UnsignedIntEnc:
		v := int32(readUint32(b))
		if v < 0 {
			return nil, illegal(t, "%d is negative", v)
		}
		return v, nil
	case UnsignedLongEnc:
		v := int64(readUint64(b))
		if v < 0 {
			return nil, illegal(t, "%d is negative", v)
		}
		return v, nil
	case FloatEnc:
		return readFloat32(b), nil
	case DoubleEnc:
		return readFloat64(b), nil
	case UnsignedFloatEnc:
		v := readUnsignedFloat32(b)
		if v < 0 {
			return nil, illegal(t, "%v is negative", v)
		}
		return v, nil
	case UnsignedDoubleEnc:
		v := readUnsignedFloat64(b)
		if v < 0 {
			return nil, illegal(t, "%v is negative", v)
		}
		return v, nil
	case DateEnc, TimeEnc:
		return readDate(b, true), nil
	case TimestampEnc:
		return readTimestamp(b, true), nil
	case UnsignedDateEnc, UnsignedTimeEnc:
		if readMillis(b, false) < 0 {
			return nil, illegal(t, "instant is before the epoch")
		}
		return readDate(b, false), nil
	case UnsignedTimestampEnc:
		if readMillis(b[:dateSize], false) < 0 {
			return nil, illegal(t, "instant is before the epoch")
		}
		return readTimestamp(b, false), nil
	default:
		panic("unknown encoding")
	}
}
