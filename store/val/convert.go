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
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ConvertValue converts |v|, a value of type |src|, into the native Go
// domain of |t|. Conversions into integral types must be exact;
// conversions into floating types may round but must stay in range.
// Converting into VARBINARY or BINARY yields the ascending encoding of
// |v| under |src|.
func (t *Type) ConvertValue(v any, src *Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	if src != nil && src != t && isBinary(t.enc) && !isBinary(src.enc) {
		b, err := src.Encode(v)
		if err != nil {
			return nil, err
		}
		return t.native(b)
	}
	return t.native(v)
}

// native returns |v| in the Go domain of |t|, or ErrIllegalData when |v|
// cannot be represented.
func (t *Type) native(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t.enc {
	case BooleanEnc:
		b, ok := v.(bool)
		if !ok {
			return nil, illegal(t, "expected bool, found %T", v)
		}
		return b, nil

	case TinyintEnc, UnsignedTinyintEnc:
		n, err := t.integral(v)
		return int8(n), err
	case SmallintEnc, UnsignedSmallintEnc:
		n, err := t.integral(v)
		return int16(n), err
	case IntegerEnc, UnsignedIntEnc:
		n, err := t.integral(v)
		return int32(n), err
	case BigintEnc, UnsignedLongEnc:
		return t.integral(v)

	case FloatEnc, UnsignedFloatEnc:
		f, err := t.floating(v)
		return float32(f), err
	case DoubleEnc, UnsignedDoubleEnc:
		return t.floating(v)

	case DecimalEnc:
		return t.decimal(v)

	case DateEnc, TimeEnc, UnsignedDateEnc, UnsignedTimeEnc:
		tm, err := t.instant(v)
		if err != nil {
			return nil, err
		}
		return tm.Truncate(time.Millisecond), nil
	case TimestampEnc, UnsignedTimestampEnc:
		return t.instant(v)

	case CharEnc:
		s, err := t.text(v)
		if err != nil {
			return nil, err
		}
		if !isSingleByte(s) {
			return nil, illegal(t, "CHAR types may only contain single byte characters (%s)", s)
		}
		return s, nil
	case VarcharEnc:
		return t.text(v)

	case BinaryEnc, VarbinaryEnc:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		default:
			return nil, illegal(t, "expected []byte, found %T", v)
		}

	case ArrayEnc:
		return t.array(v)

	default:
		panic("unknown encoding")
	}
}

// integral returns |v| as an int64 within the bounds of |t|.
func (t *Type) integral(v any) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, illegal(t, "%d is out of range", x)
		}
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, illegal(t, "%d is out of range", x)
		}
		n = int64(x)
	case float32:
		return t.integralFromFloat(float64(x))
	case float64:
		return t.integralFromFloat(x)
	case decimal.Decimal:
		return t.integralFromDecimal(x)
	default:
		return 0, illegal(t, "expected integer, found %T", v)
	}
	lo, hi := integralBounds(t.enc)
	if n < lo || n > hi {
		return 0, illegal(t, "%d is out of range", n)
	}
	return n, nil
}

func (t *Type) integralFromFloat(f float64) (int64, error) {
	if f != f || math.Trunc(f) != f {
		return 0, illegal(t, "%v is not an integer", f)
	}
	lo, hi := integralBounds(t.enc)
	// float64(hi) rounds up to 2^63 for BIGINT, so compare strictly.
	if f < float64(lo) || f >= float64(hi)+1 {
		return 0, illegal(t, "%v is out of range", f)
	}
	return int64(f), nil
}

func (t *Type) integralFromDecimal(d decimal.Decimal) (int64, error) {
	if !d.IsInteger() {
		return 0, illegal(t, "%s is not an integer", d.String())
	}
	lo, hi := integralBounds(t.enc)
	if d.LessThan(decimal.NewFromInt(lo)) || d.GreaterThan(decimal.NewFromInt(hi)) {
		return 0, illegal(t, "%s is out of range", d.String())
	}
	return d.IntPart(), nil
}

// floating returns |v| as a float64 within the range of |t|.
func (t *Type) floating(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float32:
		f = float64(x)
	case float64:
		f = x
	case decimal.Decimal:
		f = x.InexactFloat64()
		if math.IsInf(f, 0) {
			return 0, illegal(t, "%s is out of range", x.String())
		}
	default:
		n, err := Bigint.integral(v)
		if err != nil {
			return 0, illegal(t, "expected number, found %T", v)
		}
		f = float64(n)
	}
	if math.Abs(f) > floatingBound(t.enc) && !math.IsInf(f, 0) {
		return 0, illegal(t, "%v is out of range", f)
	}
	if isUnsigned(t.enc) && f < 0 {
		return 0, illegal(t, "%v is negative", f)
	}
	return f, nil
}

// decimal returns |v| as a decimal.Decimal.
func (t *Type) decimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		if x == nil {
			return decimal.Decimal{}, illegal(t, "nil decimal")
		}
		return *x, nil
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return decimal.Decimal{}, illegal(t, "%v has no decimal form", x)
		}
		return decimal.NewFromFloat32(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, illegal(t, "%v has no decimal form", x)
		}
		return decimal.NewFromFloat(x), nil
	default:
		n, err := Bigint.integral(v)
		if err != nil {
			return decimal.Decimal{}, illegal(t, "expected number, found %T", v)
		}
		return decimal.NewFromInt(n), nil
	}
}

func (t *Type) instant(v any) (time.Time, error) {
	tm, ok := v.(time.Time)
	if !ok {
		return time.Time{}, illegal(t, "expected time.Time, found %T", v)
	}
	if isUnsigned(t.enc) && tm.UnixMilli() < 0 {
		return time.Time{}, illegal(t, "%s is before the epoch", tm.Format(time.RFC3339Nano))
	}
	return tm.UTC(), nil
}

func (t *Type) text(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", illegal(t, "expected string, found %T", v)
	}
}

func (t *Type) array(v any) (*Array, error) {
	a, ok := v.(*Array)
	if !ok {
		return nil, illegal(t, "expected *Array, found %T", v)
	}
	if a.elem == t.elem {
		return a, nil
	}
	values := make([]any, len(a.values))
	for i, e := range a.values {
		c, err := t.elem.ConvertValue(e, a.elem)
		if err != nil {
			return nil, err
		}
		values[i] = c
	}
	return &Array{elem: t.elem, values: values, maxLength: a.maxLength}, nil
}

func isSingleByte(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
