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
)

// A variable-width array ends with a trailer:
//
//	[offsets: count * width bytes][count: uint32][width: uint8]
//
// Every element has an offset into the body. NULL elements point at the
// token of the run that holds them. Trailer integers are big-endian and
// the trailer is complemented along with the body under Descending.

const (
	arrayCountSize  = 4
	arrayWidthSize  = 1
	arrayFooterSize = arrayCountSize + arrayWidthSize

	shortOffsetWidth = 2
	longOffsetWidth  = 4
)

// ArrayOffsets is the offset table of a variable-width array.
type ArrayOffsets struct {
	buf   []byte
	width int
	order SortOrder
}

// arrayOffsetWidth returns the offset width for a body of |bodyLen| bytes.
func arrayOffsetWidth(bodyLen int) int {
	if bodyLen > 0xFFFF {
		return longOffsetWidth
	}
	return shortOffsetWidth
}

// arrayOffsetsSize returns the number of bytes needed to
// store |count| offsets of |width| bytes.
func arrayOffsetsSize(count, width int) int {
	return count * width
}

// Count returns the number of offsets stored in |os|.
func (os ArrayOffsets) Count() int {
	return len(os.buf) / os.width
}

// GetOffset returns the body position of element |i|.
func (os ArrayOffsets) GetOffset(i int) int {
	start := i * os.width
	var raw [longOffsetWidth]byte
	b := raw[:os.width]
	copy(b, os.buf[start:start+os.width])
	if os.order == Descending {
		InvertInPlace(b)
	}
	if os.width == shortOffsetWidth {
		return int(binary.BigEndian.Uint16(b))
	}
	return int(binary.BigEndian.Uint32(b))
}

// Put writes offset |off| at index |i| of an ascending table.
func (os ArrayOffsets) Put(i, off int) {
	start := i * os.width
	if os.width == shortOffsetWidth {
		binary.BigEndian.PutUint16(os.buf[start:start+os.width], uint16(off))
	} else {
		binary.BigEndian.PutUint32(os.buf[start:start+os.width], uint32(off))
	}
}

// appendArrayTrailer appends the ascending trailer for |offsets| to |buf|.
func appendArrayTrailer(buf []byte, offsets []int, bodyLen int) []byte {
	width := arrayOffsetWidth(bodyLen)
	start := len(buf)
	buf = append(buf, make([]byte, arrayOffsetsSize(len(offsets), width)+arrayFooterSize)...)

	os := ArrayOffsets{buf: buf[start : start+len(offsets)*width], width: width}
	for i, off := range offsets {
		os.Put(i, off)
	}
	footer := buf[len(buf)-arrayFooterSize:]
	binary.BigEndian.PutUint32(footer[:arrayCountSize], uint32(len(offsets)))
	footer[arrayCountSize] = byte(width)
	return buf
}

// arrayTrailer locates the parts of an encoded variable-width array
// without copying it.
type arrayTrailer struct {
	count   int
	offsets ArrayOffsets
	// body is everything before the offset table, END token included.
	body []byte
}

func readArrayTrailer(t *Type, b []byte, order SortOrder) (arrayTrailer, error) {
	if len(b) < arrayFooterSize+2 {
		return arrayTrailer{}, illegal(t, "array of %d bytes is too short", len(b))
	}
	var footer [arrayFooterSize]byte
	copy(footer[:], b[len(b)-arrayFooterSize:])
	if order == Descending {
		InvertInPlace(footer[:])
	}
	width := int(footer[arrayCountSize])
	if width != shortOffsetWidth && width != longOffsetWidth {
		return arrayTrailer{}, illegal(t, "offset width %d", width)
	}
	count := int(binary.BigEndian.Uint32(footer[:arrayCountSize]))

	bodyLen := len(b) - arrayFooterSize - count*width
	if bodyLen < 2 {
		return arrayTrailer{}, illegal(t, "array count %d does not fit %d bytes", count, len(b))
	}
	return arrayTrailer{
		count:   count,
		offsets: ArrayOffsets{buf: b[bodyLen : bodyLen+count*width], width: width, order: order},
		body:    b[:bodyLen],
	}, nil
}

// bounds returns the content window of the value element |i|: from its
// token to the start of the next token, less the value terminator.
func (tr arrayTrailer) bounds(i int) (start, stop int) {
	start = tr.offsets.GetOffset(i)
	next := len(tr.body) - 2
	if i+1 < tr.count {
		next = tr.offsets.GetOffset(i + 1)
	}
	return start, next - 2
}
