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
	"encoding/binary"
	"math"
)

const (
	numFieldsSize ByteSize = 2
	offsetWidth   ByteSize = 4

	// MaxTupleFields is the largest number of fields in a Tuple.
	MaxTupleFields = math.MaxUint16
)

// Tuple is the encoding of a row's non-key columns.
//
//	[values][offsets][null mask][field count]
//
// Values are the non-NULL field encodings, concatenated. Offsets holds
// the start of every value but the first as a little-endian uint32. The
// null mask has one bit per field and the field count is a little-endian
// uint16. Tuples are not ordered; they are the values of a sorted store.
type Tuple []byte

// NewTuple builds a Tuple from field encodings. A zero-length field is NULL.
func NewTuple(fields ...[]byte) Tuple {
	expectTrue(len(fields) <= MaxTupleFields)

	count, pos := 0, 0
	for _, f := range fields {
		if len(f) == 0 {
			continue
		}
		count++
		pos += len(f)
	}
	expectTrue(uint64(pos) <= math.MaxUint32)

	tup, offs, mask := makeTuple(pos, count, len(fields))

	count, pos = 0, 0
	for i, f := range fields {
		if len(f) == 0 {
			continue
		}
		mask.set(i)
		offs.put(count, uint32(pos))
		count++
		pos += copy(tup[pos:], f)
	}
	return tup
}

func makeTuple(bufSz, values, fields int) (tup Tuple, offs offsetSlice, mask nullMask) {
	offSz := int(offsetSize(values))
	maskSz := int(maskSize(fields))

	tup = make(Tuple, bufSz+offSz+maskSz+int(numFieldsSize))
	binary.LittleEndian.PutUint16(tup[len(tup)-int(numFieldsSize):], uint16(fields))
	offs = offsetSlice(tup[bufSz : bufSz+offSz])
	mask = nullMask(tup[bufSz+offSz : bufSz+offSz+maskSz])
	return
}

// Count returns the number of fields, NULLs included.
func (tup Tuple) Count() int {
	if len(tup) < int(numFieldsSize) {
		return 0
	}
	return int(binary.LittleEndian.Uint16(tup[len(tup)-int(numFieldsSize):]))
}

// FieldIsNull reports whether field |i| is NULL.
func (tup Tuple) FieldIsNull(i int) bool {
	return !tup.mask().present(i)
}

// GetField returns the encoding of field |i|, or nil when it is NULL.
func (tup Tuple) GetField(i int) []byte {
	mask := tup.mask()
	if !mask.present(i) {
		return nil
	}
	offs, end := tup.offsetSlice(mask)
	v := mask.countPrefix(i) - 1

	start := offs.get(v)
	if !offs.isLastIndex(v) {
		end = int(offs.get(v + 1))
	}
	return tup[start:end]
}

func (tup Tuple) mask() nullMask {
	end := len(tup) - int(numFieldsSize)
	start := end - int(maskSize(tup.Count()))
	return nullMask(tup[start:end])
}

// offsetSlice returns the offsets of |tup| and the end of its values.
func (tup Tuple) offsetSlice(mask nullMask) (offsetSlice, int) {
	end := len(tup) - int(numFieldsSize) - int(mask.size())
	start := end - int(offsetSize(mask.count()))
	return offsetSlice(tup[start:end]), start
}

type offsetSlice []byte

func offsetSize(count int) ByteSize {
	if count == 0 {
		return 0
	}
	return ByteSize(count-1) * offsetWidth
}

func (sl offsetSlice) get(i int) uint32 {
	if i == 0 {
		return 0
	}
	start := (i - 1) * int(offsetWidth)
	return binary.LittleEndian.Uint32(sl[start : start+int(offsetWidth)])
}

func (sl offsetSlice) put(i int, off uint32) {
	if i == 0 {
		return
	}
	start := (i - 1) * int(offsetWidth)
	binary.LittleEndian.PutUint32(sl[start:start+int(offsetWidth)], off)
}

func (sl offsetSlice) isLastIndex(i int) bool {
	return len(sl) == i*int(offsetWidth)
}
