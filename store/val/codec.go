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
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

type ByteSize uint16

const (
	booleanSize   ByteSize = 1
	int8Size      ByteSize = 1
	int16Size     ByteSize = 2
	int32Size     ByteSize = 4
	int64Size     ByteSize = 8
	float32Size   ByteSize = 4
	float64Size   ByteSize = 8
	dateSize      ByteSize = 8
	timestampSize ByteSize = 12
	nanosSize     ByteSize = 4
)

type Encoding uint8

// Constant Size Encodings
const (
	NullEnc              Encoding = 0
	BooleanEnc           Encoding = 1
	TinyintEnc           Encoding = 2
	SmallintEnc          Encoding = 3
	IntegerEnc           Encoding = 4
	BigintEnc            Encoding = 5
	UnsignedTinyintEnc   Encoding = 6
	UnsignedSmallintEnc  Encoding = 7
	UnsignedIntEnc       Encoding = 8
	UnsignedLongEnc      Encoding = 9
	FloatEnc             Encoding = 10
	DoubleEnc            Encoding = 11
	UnsignedFloatEnc     Encoding = 12
	UnsignedDoubleEnc    Encoding = 13
	DateEnc              Encoding = 14
	TimeEnc              Encoding = 15
	TimestampEnc         Encoding = 16
	UnsignedDateEnc      Encoding = 17
	UnsignedTimeEnc      Encoding = 18
	UnsignedTimestampEnc Encoding = 19

	// declared width, fixed per column
	CharEnc   Encoding = 64
	BinaryEnc Encoding = 65

	sentinel Encoding = 127
)

// Variable Size Encodings
const (
	VarcharEnc   Encoding = 128
	VarbinaryEnc Encoding = 129
	DecimalEnc   Encoding = 130
	ArrayEnc     Encoding = 131
)

func sizeFromEncoding(enc Encoding) (ByteSize, bool) {
	switch enc {
	case BooleanEnc:
		return booleanSize, true
	case TinyintEnc, UnsignedTinyintEnc:
		return int8Size, true
	case SmallintEnc, UnsignedSmallintEnc:
		return int16Size, true
	case IntegerEnc, UnsignedIntEnc:
		return int32Size, true
	case BigintEnc, UnsignedLongEnc:
		return int64Size, true
	case FloatEnc, UnsignedFloatEnc:
		return float32Size, true
	case DoubleEnc, UnsignedDoubleEnc:
		return float64Size, true
	case DateEnc, TimeEnc, UnsignedDateEnc, UnsignedTimeEnc:
		return dateSize, true
	case TimestampEnc, UnsignedTimestampEnc:
		return timestampSize, true
	default:
		return 0, false
	}
}

func readBool(val []byte) bool {
	expectSize(val, booleanSize)
	return val[0] == 1
}

func writeBool(buf []byte, val bool) {
	expectSize(buf, booleanSize)
	if val {
		buf[0] = byte(1)
	} else {
		buf[0] = byte(0)
	}
}

func compareBool(l, r bool) int {
	if l == r {
		return 0
	} else if !l && r {
		return -1
	} else {
		return 1
	}
}

// Signed integers are stored big-endian with the sign bit flipped so
// that negative values sort before positive ones.

func readInt8(val []byte) int8 {
	expectSize(val, int8Size)
	return int8(val[0] ^ 0x80)
}

func writeInt8(buf []byte, val int8) {
	expectSize(buf, int8Size)
	buf[0] = byte(val) ^ 0x80
}

func readInt16(val []byte) int16 {
	expectSize(val, int16Size)
	return int16(binary.BigEndian.Uint16(val) ^ 0x8000)
}

func writeInt16(buf []byte, val int16) {
	expectSize(buf, int16Size)
	binary.BigEndian.PutUint16(buf, uint16(val)^0x8000)
}

func readInt32(val []byte) int32 {
	expectSize(val, int32Size)
	return int32(binary.BigEndian.Uint32(val) ^ 0x80000000)
}

func writeInt32(buf []byte, val int32) {
	expectSize(buf, int32Size)
	binary.BigEndian.PutUint32(buf, uint32(val)^0x80000000)
}

func readInt64(val []byte) int64 {
	expectSize(val, int64Size)
	return int64(binary.BigEndian.Uint64(val) ^ (1 << 63))
}

func writeInt64(buf []byte, val int64) {
	expectSize(buf, int64Size)
	binary.BigEndian.PutUint64(buf, uint64(val)^(1<<63))
}

// Unsigned variants hold non-negative values in natural big-endian.

func readUint8(val []byte) uint8 {
	expectSize(val, int8Size)
	return val[0]
}

func writeUint8(buf []byte, val uint8) {
	expectSize(buf, int8Size)
	buf[0] = val
}

func readUint16(val []byte) uint16 {
	expectSize(val, int16Size)
	return binary.BigEndian.Uint16(val)
}

func writeUint16(buf []byte, val uint16) {
	expectSize(buf, int16Size)
	binary.BigEndian.PutUint16(buf, val)
}

func readUint32(val []byte) uint32 {
	expectSize(val, int32Size)
	return binary.BigEndian.Uint32(val)
}

func writeUint32(buf []byte, val uint32) {
	expectSize(buf, int32Size)
	binary.BigEndian.PutUint32(buf, val)
}

func readUint64(val []byte) uint64 {
	expectSize(val, int64Size)
	return binary.BigEndian.Uint64(val)
}

func writeUint64(buf []byte, val uint64) {
	expectSize(buf, int64Size)
	binary.BigEndian.PutUint64(buf, val)
}

// IEEE floats: a clear sign bit is set, a set sign bit complements
// every bit. NaN is canonicalized so that it sorts above +Inf.

func sortableFloat32Bits(val float32) uint32 {
	if val != val {
		val = float32(math.NaN())
	}
	u := math.Float32bits(val)
	if u&(1<<31) != 0 {
		return ^u
	}
	return u | 1<<31
}

func floatFromSortable32(u uint32) float32 {
	if u&(1<<31) != 0 {
		u ^= 1 << 31
	} else {
		u = ^u
	}
	return math.Float32frombits(u)
}

func sortableFloat64Bits(val float64) uint64 {
	if val != val {
		val = math.NaN()
	}
	u := math.Float64bits(val)
	if u&(1<<63) != 0 {
		return ^u
	}
	return u | 1<<63
}

func floatFromSortable64(u uint64) float64 {
	if u&(1<<63) != 0 {
		u ^= 1 << 63
	} else {
		u = ^u
	}
	return math.Float64frombits(u)
}

func readFloat32(val []byte) float32 {
	expectSize(val, float32Size)
	return floatFromSortable32(binary.BigEndian.Uint32(val))
}

func writeFloat32(buf []byte, val float32) {
	expectSize(buf, float32Size)
	binary.BigEndian.PutUint32(buf, sortableFloat32Bits(val))
}

func readFloat64(val []byte) float64 {
	expectSize(val, float64Size)
	return floatFromSortable64(binary.BigEndian.Uint64(val))
}

func writeFloat64(buf []byte, val float64) {
	expectSize(buf, float64Size)
	binary.BigEndian.PutUint64(buf, sortableFloat64Bits(val))
}

// Unsigned floats keep their natural bits; negative zero folds into
// positive zero so the sign bit is never set.

func readUnsignedFloat32(val []byte) float32 {
	expectSize(val, float32Size)
	return math.Float32frombits(binary.BigEndian.Uint32(val))
}

func writeUnsignedFloat32(buf []byte, val float32) {
	expectSize(buf, float32Size)
	if val == 0 {
		val = 0
	} else if val != val {
		val = float32(math.NaN())
	}
	binary.BigEndian.PutUint32(buf, math.Float32bits(val))
}

func readUnsignedFloat64(val []byte) float64 {
	expectSize(val, float64Size)
	return math.Float64frombits(binary.BigEndian.Uint64(val))
}

func writeUnsignedFloat64(buf []byte, val float64) {
	expectSize(buf, float64Size)
	if val == 0 {
		val = 0
	} else if val != val {
		val = math.NaN()
	}
	binary.BigEndian.PutUint64(buf, math.Float64bits(val))
}

// Calendar values are milliseconds since the epoch. Timestamps append
// the nanoseconds within the millisecond as a big-endian uint32.

func readDate(val []byte, signed bool) time.Time {
	expectSize(val, dateSize)
	return time.UnixMilli(readMillis(val, signed)).UTC()
}

func writeDate(buf []byte, val time.Time, signed bool) {
	expectSize(buf, dateSize)
	writeMillis(buf, val.UnixMilli(), signed)
}

func readTimestamp(val []byte, signed bool) time.Time {
	expectSize(val, timestampSize)
	ms := readMillis(val[:dateSize], signed)
	nanos := binary.BigEndian.Uint32(val[dateSize:])
	return time.UnixMilli(ms).Add(time.Duration(nanos)).UTC()
}

func writeTimestamp(buf []byte, val time.Time, signed bool) {
	expectSize(buf, timestampSize)
	writeMillis(buf[:dateSize], val.UnixMilli(), signed)
	binary.BigEndian.PutUint32(buf[dateSize:], uint32(val.Nanosecond()%int(time.Millisecond)))
}

func readMillis(val []byte, signed bool) int64 {
	if signed {
		return readInt64(val)
	}
	return int64(readUint64(val))
}

func writeMillis(buf []byte, ms int64, signed bool) {
	if signed {
		writeInt64(buf, ms)
	} else {
		writeUint64(buf, uint64(ms))
	}
}

func compareInt64(l, r int64) int {
	if l == r {
		return 0
	} else if l < r {
		return -1
	} else {
		return 1
	}
}

func compareUint64(l, r uint64) int {
	if l == r {
		return 0
	} else if l < r {
		return -1
	} else {
		return 1
	}
}

// compareFloat64 orders NaN above every other value.
func compareFloat64(l, r float64) int {
	lnan, rnan := l != l, r != r
	switch {
	case lnan && rnan:
		return 0
	case lnan:
		return 1
	case rnan:
		return -1
	}
	if l == r {
		return 0
	} else if l < r {
		return -1
	} else {
		return 1
	}
}

func compareTime(l, r time.Time) int {
	return l.Compare(r)
}

func compareString(l, r string) int {
	if l == r {
		return 0
	} else if l < r {
		return -1
	} else {
		return 1
	}
}

func compareBytes(l, r []byte) int {
	return bytes.Compare(l, r)
}

func expectSize(buf []byte, sz ByteSize) {
	if ByteSize(len(buf)) != sz {
		panic("byte slice is not of expected size")
	}
}

func expectTrue(b bool) {
	if !b {
		panic("expected true")
	}
}

func expectFalse(b bool) {
	if b {
		panic("expected false")
	}
}
