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

// CoerceBytes re-encodes |b|, written as |src| under |srcOrder|, as |dst|
// under |dstOrder|. Byte-compatible types are only re-ordered.
func CoerceBytes(b []byte, src *Type, srcOrder SortOrder, dst *Type, dstOrder SortOrder) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if src.IsBytesComparableWith(dst) {
		if srcOrder == dstOrder {
			return b, nil
		}
		return Invert(b, make([]byte, len(b))), nil
	}
	v, err := dst.Decode(b, src, srcOrder)
	if err != nil {
		return nil, err
	}
	return dst.EncodeSorted(v, dstOrder)
}

// MaxLength returns the declared-length measure of |v|: the byte length
// of strings and binaries, the precision of decimals and the element
// width of CHAR and BINARY arrays. Zero for everything else.
func (t *Type) MaxLength(v any) int {
	switch x := v.(type) {
	case string:
		return len(x)
	case []byte:
		return len(x)
	case decimal.Decimal:
		p, _ := decimalPrecisionAndScale(x)
		return p
	case *Array:
		return x.maxLength
	default:
		return 0
	}
}

// Scale returns the scale of a decimal |v|, zero for everything else.
func (t *Type) Scale(v any) int {
	if d, ok := v.(decimal.Decimal); ok {
		_, s := decimalPrecisionAndScale(d)
		return s
	}
	return 0
}

func decimalPrecisionAndScale(d decimal.Decimal) (int, int) {
	b, err := encodeDecimal(d, false)
	if err != nil {
		return 0, 0
	}
	p, s, err := DecimalPrecisionAndScale(b, Ascending)
	if err != nil {
		return 0, 0
	}
	return p, s
}

// IsSizeCompatible reports whether |v| of |t|, declared with
// |srcMaxLength| and |srcScale|, fits a column of |dst| declared with
// |dstMaxLength| and |dstScale|. Non-positive declared lengths mean
// undeclared. Decimal fractional digits beyond |dstScale| are rounded on
// write, so only integer digits are checked.
func (t *Type) IsSizeCompatible(v any, srcMaxLength, srcScale int, dst *Type, dstMaxLength, dstScale int) bool {
	if v == nil || dstMaxLength <= 0 {
		return true
	}
	switch {
	case isString(dst.enc) || isBinary(dst.enc):
		n := t.MaxLength(v)
		if t.enc == CharEnc && dst.enc == CharEnc && srcMaxLength > 0 {
			// padding travels with CHAR values
			n = srcMaxLength
		}
		return n <= dstMaxLength
	case dst.enc == DecimalEnc:
		d, err := dst.decimal(v)
		if err != nil {
			return false
		}
		p, s := decimalPrecisionAndScale(d)
		if dstScale < 0 {
			dstScale = 0
		}
		return p-s <= dstMaxLength-dstScale
	default:
		return true
	}
}
