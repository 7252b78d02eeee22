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
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimalPrecision is the number of significant digits a DECIMAL keeps.
const MaxDecimalPrecision = 38

const (
	decimalZeroByte   = byte(0x80)
	decimalTerminator = byte(102)
	decimalExpBias    = 65
	decimalMinExp     = 1 - decimalExpBias
	decimalMaxExp     = 126 - decimalExpBias
)

// A DECIMAL is written as one header byte followed by base-100 digits.
//
// The header carries the sign and the base-100 exponent E of the first
// digit: 0x80 | (E+65) for positive values and ^(E+65) & 0x7F for
// negative values. Zero is the single byte 0x80. Positive digits are
// stored as d+1, negative digits as 101-d followed by a terminator of
// 102 so that a shorter negative mantissa sorts after a longer one.
// No byte of the encoding is ever 0x00.

// roundDecimal rounds |d| half away from zero to MaxDecimalPrecision
// significant digits.
func roundDecimal(d decimal.Decimal) decimal.Decimal {
	digits := d.NumDigits()
	if digits <= MaxDecimalPrecision {
		return d
	}
	return d.Round(int32(MaxDecimalPrecision-digits) - d.Exponent())
}

// significantDigits returns the coefficient digits of |d| without
// trailing zeros and the matching power-of-ten exponent.
func significantDigits(d decimal.Decimal) (string, int) {
	s := new(big.Int).Abs(d.Coefficient()).String()
	exp := int(d.Exponent())
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
		exp++
	}
	return s, exp
}

// centesimalDigits splits |d| into base-100 digits and the base-100
// exponent of the first digit. |d| must not be zero.
func centesimalDigits(d decimal.Decimal) ([]byte, int) {
	s, exp := significantDigits(d)
	if exp%2 != 0 {
		s += "0"
		exp--
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	n := len(s) / 2
	digits := make([]byte, n)
	for i := range digits {
		digits[i] = (s[2*i]-'0')*10 + (s[2*i+1] - '0')
	}
	return digits, exp/2 + n - 1
}

func decimalEncodedSize(d decimal.Decimal) int {
	if d.IsZero() {
		return 1
	}
	digits, _ := centesimalDigits(d)
	if d.Sign() < 0 {
		return len(digits) + 2
	}
	return len(digits) + 1
}

func encodeDecimal(d decimal.Decimal, exact bool) ([]byte, error) {
	if exact {
		if s, _ := significantDigits(d); len(s) > MaxDecimalPrecision {
			return nil, ErrPrecisionOverflow.New(d.String(), len(s), MaxDecimalPrecision)
		}
	} else {
		d = roundDecimal(d)
	}
	if d.IsZero() {
		return []byte{decimalZeroByte}, nil
	}

	digits, e := centesimalDigits(d)
	if e < decimalMinExp || e > decimalMaxExp {
		return nil, illegal(Decimal, "exponent of %s is out of range", d.String())
	}

	neg := d.Sign() < 0
	buf := make([]byte, 0, len(digits)+2)
	if neg {
		buf = append(buf, ^byte(e+decimalExpBias)&0x7F)
		for _, dig := range digits {
			buf = append(buf, 101-dig)
		}
		buf = append(buf, decimalTerminator)
	} else {
		buf = append(buf, 0x80|byte(e+decimalExpBias))
		for _, dig := range digits {
			buf = append(buf, dig+1)
		}
	}
	return buf, nil
}

// readDecimalDigits validates the ascending encoding |b| and returns its
// sign, base-100 exponent and digits.
func readDecimalDigits(b []byte) (neg bool, e int, digits []byte, err error) {
	h := b[0]
	if h == decimalZeroByte {
		if len(b) != 1 {
			err = illegal(Decimal, "trailing bytes after zero")
		}
		return
	}

	var body []byte
	if h&0x80 != 0 {
		e = int(h&0x7F) - decimalExpBias
		body = b[1:]
	} else {
		neg = true
		e = int(^h&0x7F) - decimalExpBias
		if b[len(b)-1] != decimalTerminator {
			err = illegal(Decimal, "missing terminator")
			return
		}
		body = b[1 : len(b)-1]
	}
	if len(body) == 0 {
		err = illegal(Decimal, "no digits")
		return
	}

	digits = make([]byte, len(body))
	for i, x := range body {
		var dig int
		if neg {
			dig = 101 - int(x)
		} else {
			dig = int(x) - 1
		}
		if dig < 0 || dig > 99 {
			err = illegal(Decimal, "digit byte %d out of range", x)
			return
		}
		digits[i] = byte(dig)
	}
	return
}

func decodeDecimal(b []byte) (decimal.Decimal, error) {
	neg, e, digits, err := readDecimalDigits(b)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if digits == nil {
		return decimal.Zero, nil
	}

	var sb strings.Builder
	for _, dig := range digits {
		sb.WriteByte('0' + dig/10)
		sb.WriteByte('0' + dig%10)
	}
	coef, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return decimal.Decimal{}, illegal(Decimal, "malformed digits")
	}
	if neg {
		coef.Neg(coef)
	}
	exp := 2 * (e - len(digits) + 1)
	return decimal.NewFromBigInt(coef, int32(exp)), nil
}

// DecimalPrecisionAndScale recovers the precision and scale of an encoded
// DECIMAL from its bytes alone.
func DecimalPrecisionAndScale(b []byte, order SortOrder) (precision, scale int, err error) {
	if len(b) == 0 {
		return 0, 0, illegal(Decimal, "empty encoding")
	}
	_, e, digits, err := readDecimalDigits(normalize(b, order))
	if err != nil || digits == nil {
		return 0, 0, err
	}

	n := len(digits)
	scale = -2 * e
	precision = 2 * n
	if digits[n-1]%10 == 0 {
		scale--
		precision--
	}
	if digits[0] < 10 {
		precision--
	}
	scale += 2 * (n - 1)
	if scale < 0 {
		precision -= scale
		scale = 0
	}
	return precision, scale, nil
}
