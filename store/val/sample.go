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
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultSampleLength = 8
	sampleLetters       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// SampleValue returns a random non-NULL value of |t|. |maxLength| bounds
// CHAR, VARCHAR, BINARY and VARBINARY content; |arrayLength| sets the
// length of array values. About a quarter of the elements of a
// variable-width array are NULL.
func (t *Type) SampleValue(rnd *rand.Rand, maxLength, arrayLength int) any {
	if maxLength <= 0 {
		maxLength = defaultSampleLength
	}
	switch t.enc {
	case BooleanEnc:
		return rnd.Intn(2) == 1
	case TinyintEnc:
		return int8(rnd.Intn(math.MaxUint8+1) + math.MinInt8)
	case SmallintEnc:
		return int16(rnd.Intn(math.MaxUint16+1) + math.MinInt16)
	case IntegerEnc:
		return int32(rnd.Uint32())
	case BigintEnc:
		return int64(rnd.Uint64())
	case UnsignedTinyintEnc:
		return int8(rnd.Intn(math.MaxInt8 + 1))
	case UnsignedSmallintEnc:
		return int16(rnd.Intn(math.MaxInt16 + 1))
	case UnsignedIntEnc:
		return rnd.Int31()
	case UnsignedLongEnc:
		return rnd.Int63()
	case FloatEnc:
		return float32(rnd.NormFloat64() * 1e6)
	case DoubleEnc:
		return rnd.NormFloat64() * 1e12
	case UnsignedFloatEnc:
		return float32(math.Abs(rnd.NormFloat64() * 1e6))
	case UnsignedDoubleEnc:
		return math.Abs(rnd.NormFloat64() * 1e12)
	case DecimalEnc:
		return decimal.New(rnd.Int63n(2e12)-1e12, int32(rnd.Intn(21)-10))
	case DateEnc, TimeEnc:
		return time.UnixMilli(rnd.Int63n(4e12) - 2e12).UTC()
	case UnsignedDateEnc, UnsignedTimeEnc:
		return time.UnixMilli(rnd.Int63n(4e12)).UTC()
	case TimestampEnc:
		return time.UnixMilli(rnd.Int63n(4e12) - 2e12).Add(time.Duration(rnd.Intn(1e6))).UTC()
	case UnsignedTimestampEnc:
		return time.UnixMilli(rnd.Int63n(4e12)).Add(time.Duration(rnd.Intn(1e6))).UTC()
	case CharEnc:
		return sampleString(rnd, maxLength)
	case VarcharEnc:
		return sampleString(rnd, 1+rnd.Intn(maxLength))
	case BinaryEnc:
		return sampleBytes(rnd, maxLength)
	case VarbinaryEnc:
		return sampleBytes(rnd, 1+rnd.Intn(maxLength))
	case ArrayEnc:
		values := make([]any, arrayLength)
		for i := range values {
			if !t.elem.FixedWidth() && rnd.Intn(4) == 0 {
				continue
			}
			values[i] = t.elem.SampleValue(rnd, maxLength, 0)
		}
		if t.elem.enc == CharEnc || t.elem.enc == BinaryEnc {
			return NewArrayWithMaxLength(t.elem, maxLength, values...)
		}
		return NewArray(t.elem, values...)
	default:
		panic("unknown encoding")
	}
}

func sampleString(rnd *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = sampleLetters[rnd.Intn(len(sampleLetters))]
	}
	return string(b)
}

// sampleBytes never returns an all-zero slice, so that trailing zero
// padding of BINARY does not collide with content.
func sampleBytes(rnd *rand.Rand, n int) []byte {
	b := make([]byte, n)
	rnd.Read(b)
	b[n-1] |= 0x01
	return b
}
