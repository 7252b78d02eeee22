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

	"github.com/shopspring/decimal"
)

const two63 = float64(1 << 63)

type numberKind uint8

const (
	integralNumber numberKind = iota
	singleNumber
	doubleNumber
	decimalNumber
)

// number is a decoded numeric value tagged with its family.
type number struct {
	kind numberKind
	i    int64
	f    float64
	d    decimal.Decimal
}

func newNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int8:
		return number{kind: integralNumber, i: int64(x)}, true
	case int16:
		return number{kind: integralNumber, i: int64(x)}, true
	case int32:
		return number{kind: integralNumber, i: int64(x)}, true
	case int64:
		return number{kind: integralNumber, i: x}, true
	case int:
		return number{kind: integralNumber, i: int64(x)}, true
	case float32:
		return number{kind: singleNumber, f: float64(x)}, true
	case float64:
		return number{kind: doubleNumber, f: x}, true
	case decimal.Decimal:
		return number{kind: decimalNumber, d: x}, true
	default:
		return number{}, false
	}
}

// CompareNumeric orders two encoded numeric values of any numeric types.
// NULL sorts before every value.
func CompareNumeric(l []byte, lt *Type, lo SortOrder, r []byte, rt *Type, ro SortOrder) (int, error) {
	if !lt.IsNumeric() || !rt.IsNumeric() {
		return 0, ErrIncomparable.New(lt.name, rt.name)
	}
	lv, err := lt.Decode(l, lt, lo)
	if err != nil {
		return 0, err
	}
	rv, err := rt.Decode(r, rt, ro)
	if err != nil {
		return 0, err
	}
	if lv == nil || rv == nil {
		return compareNulls(lv == nil, rv == nil), nil
	}
	return CompareNumbers(lv, rv), nil
}

// CompareNumbers orders two native numeric values. It panics if either
// is not a numeric Go value.
func CompareNumbers(l, r any) int {
	ln, ok := newNumber(l)
	expectTrue(ok)
	rn, ok := newNumber(r)
	expectTrue(ok)
	return compareNumbers(ln, rn)
}

func compareNumbers(l, r number) int {
	switch l.kind {
	case integralNumber:
		switch r.kind {
		case integralNumber:
			return compareInt64(l.i, r.i)
		case singleNumber, doubleNumber:
			return compareIntFloat(l.i, r.f, r.kind == singleNumber)
		default:
			return decimal.NewFromInt(l.i).Cmp(r.d)
		}

	case singleNumber, doubleNumber:
		switch r.kind {
		case integralNumber:
			return -compareIntFloat(r.i, l.f, l.kind == singleNumber)
		case singleNumber, doubleNumber:
			return compareFloat64(l.f, r.f)
		default:
			return -compareDecimalFloat(r.d, l.f, l.kind == singleNumber)
		}

	default:
		switch r.kind {
		case integralNumber:
			return l.d.Cmp(decimal.NewFromInt(r.i))
		case singleNumber, doubleNumber:
			return compareDecimalFloat(l.d, r.f, r.kind == singleNumber)
		default:
			return l.d.Cmp(r.d)
		}
	}
}

// compareIntFloat orders an integer against a float.
//
// NaN is greater than every integer. Floats beyond +-2^63 lie outside
// the integer range, except that exactly 2^63 (the float nearest to
// MaxInt64) saturates to MaxInt64. A 32-bit float equals any integer
// outside the int32 range that rounds to it. All other cases compare
// exactly.
func compareIntFloat(i int64, f float64, single bool) int {
	if f != f {
		return -1
	}
	if single && (i > math.MaxInt32 || i < math.MinInt32) && float32(i) == float32(f) {
		return 0
	}
	if f > two63 {
		return -1
	}
	if f < -two63 {
		return 1
	}
	if f == two63 {
		return compareInt64(i, math.MaxInt64)
	}

	whole := math.Trunc(f)
	if c := compareInt64(i, int64(whole)); c != 0 {
		return c
	}
	frac := f - whole
	if frac > 0 {
		return -1
	} else if frac < 0 {
		return 1
	}
	return 0
}

// compareDecimalFloat orders a decimal against a float. Infinities and
// NaN lie outside every decimal.
func compareDecimalFloat(d decimal.Decimal, f float64, single bool) int {
	switch {
	case f != f || math.IsInf(f, 1):
		return -1
	case math.IsInf(f, -1):
		return 1
	}
	if single {
		return d.Cmp(decimal.NewFromFloat32(float32(f)))
	}
	return d.Cmp(decimal.NewFromFloat(f))
}

func compareNulls(lnull, rnull bool) int {
	switch {
	case lnull && rnull:
		return 0
	case lnull:
		return -1
	default:
		return 1
	}
}
