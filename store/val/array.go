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
)

// Array is a homogeneous SQL array. Nil values are NULL elements.
type Array struct {
	elem   *Type
	values []any
	// maxLength is the element width of CHAR and BINARY arrays.
	maxLength int
}

// NewArray returns an array of |elem| values. CHAR and BINARY elements
// are sized to the longest value.
func NewArray(elem *Type, values ...any) *Array {
	return NewArrayWithMaxLength(elem, 0, values...)
}

// NewArrayWithMaxLength returns an array whose CHAR or BINARY elements
// are |maxLength| bytes wide.
func NewArrayWithMaxLength(elem *Type, maxLength int, values ...any) *Array {
	expectFalse(elem.IsArray())
	if maxLength == 0 && (elem.enc == CharEnc || elem.enc == BinaryEnc) {
		for _, v := range values {
			if n := elem.EstimateByteSize(v); n > maxLength {
				maxLength = n
			}
		}
	}
	return &Array{elem: elem, values: values, maxLength: maxLength}
}

// ToArray converts |values| into the domain of |elem| and returns them
// as an array.
func ToArray(elem *Type, values ...any) (*Array, error) {
	out := make([]any, len(values))
	for i, v := range values {
		nv, err := elem.native(v)
		if err != nil {
			return nil, err
		}
		out[i] = nv
	}
	return NewArray(elem, out...), nil
}

func (a *Array) Elem() *Type {
	return a.elem
}

func (a *Array) Len() int {
	return len(a.values)
}

// Get returns the ith element, nil when NULL.
func (a *Array) Get(i int) any {
	return a.values[i]
}

// Values returns a copy of the elements.
func (a *Array) Values() []any {
	return append([]any(nil), a.values...)
}

// MaxLength returns the element width of a CHAR or BINARY array.
func (a *Array) MaxLength() int {
	return a.maxLength
}

// A fixed-width array is the concatenation of its element encodings and
// may not hold NULL. A variable-width array is a stream of tokens
//
//	value:         escaped content, 0x00 0x03
//	interior NULLs: 0x00 0x02, descending count
//	trailing NULLs: 0x00 0x01, ascending count
//	end:           0x00 0x00
//
// followed by the trailer described in array_offsets.go. Content bytes
// of 0x00 are escaped as 0x00 0xFF. A run of k NULLs that is followed by
// a value stores 255-k in one byte, or 0x00 and the complement of k as a
// big-endian uint32 when k > 254; a trailing run stores k, or 0xFF and k
// as a big-endian uint32. More NULLs before a value therefore sort
// lower, and a longer trailing run sorts higher.

const (
	arrayEscape        = byte(0x00)
	arrayEscapedZero   = byte(0xFF)
	arrayEndToken      = byte(0x00)
	arrayTrailingNulls = byte(0x01)
	arrayInteriorNulls = byte(0x02)
	arrayValueEnd      = byte(0x03)

	maxShortRun = 254
)

func arrayElementWidth(elem *Type, maxLength int) int {
	if sz, ok := elem.ByteSize(); ok {
		return int(sz)
	}
	return maxLength
}

func encodeArray(t *Type, a *Array) ([]byte, error) {
	if t.elem.FixedWidth() {
		return encodeFixedArray(t, a)
	}
	return encodeVariableArray(t, a)
}

func encodeFixedArray(t *Type, a *Array) ([]byte, error) {
	width := arrayElementWidth(t.elem, a.maxLength)
	if width == 0 && len(a.values) > 0 {
		width = 1
	}
	buf := make([]byte, 0, width*len(a.values))
	for i, v := range a.values {
		if v == nil {
			return nil, illegal(t, "element %d is NULL, fixed width arrays may not contain NULL", i)
		}
		b, err := t.elem.Encode(v)
		if err != nil {
			return nil, err
		}
		if b, err = t.elem.Pad(b, width); err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return buf, nil
}

func encodeVariableArray(t *Type, a *Array) ([]byte, error) {
	n := len(a.values)
	if uint64(n) > math.MaxUint32 {
		return nil, illegal(t, "%d elements exceeds the maximum array length", n)
	}
	encoded := make([][]byte, n)
	for i, v := range a.values {
		b, err := t.elem.Encode(v)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
	}

	offsets := make([]int, n)
	body := make([]byte, 0, estimateArraySize(t, a))
	for i := 0; i < n; {
		if len(encoded[i]) == 0 {
			j := i
			for j < n && len(encoded[j]) == 0 {
				j++
			}
			start := len(body)
			if j == n {
				body = appendTrailingNulls(body, j-i)
			} else {
				body = appendInteriorNulls(body, j-i)
			}
			for k := i; k < j; k++ {
				offsets[k] = start
			}
			i = j
			continue
		}
		offsets[i] = len(body)
		body = appendEscaped(body, encoded[i])
		body = append(body, arrayEscape, arrayValueEnd)
		i++
	}
	body = append(body, arrayEscape, arrayEndToken)

	return appendArrayTrailer(body, offsets, len(body)), nil
}

func appendEscaped(buf, content []byte) []byte {
	for _, c := range content {
		if c == arrayEscape {
			buf = append(buf, arrayEscape, arrayEscapedZero)
		} else {
			buf = append(buf, c)
		}
	}
	return buf
}

func appendInteriorNulls(buf []byte, k int) []byte {
	buf = append(buf, arrayEscape, arrayInteriorNulls)
	if k <= maxShortRun {
		return append(buf, byte(255-k))
	}
	buf = append(buf, 0x00)
	return binary.BigEndian.AppendUint32(buf, ^uint32(k))
}

func appendTrailingNulls(buf []byte, k int) []byte {
	buf = append(buf, arrayEscape, arrayTrailingNulls)
	if k <= maxShortRun {
		return append(buf, byte(k))
	}
	buf = append(buf, 0xFF)
	return binary.BigEndian.AppendUint32(buf, uint32(k))
}

func estimateArraySize(t *Type, a *Array) int {
	if t.elem.FixedWidth() {
		return arrayElementWidth(t.elem, a.maxLength) * len(a.values)
	}
	sz := 2 + arrayFooterSize + len(a.values)*shortOffsetWidth
	for _, v := range a.values {
		sz += t.elem.EstimateByteSize(v) + 2
	}
	return sz
}

// decodeArray reads the ascending encoding |b| of the array type |t|.
func decodeArray(t *Type, b []byte, maxLength int) (*Array, error) {
	if t.elem.FixedWidth() {
		return decodeFixedArray(t, b, maxLength)
	}
	return decodeVariableArray(t, b)
}

func decodeFixedArray(t *Type, b []byte, maxLength int) (*Array, error) {
	width := arrayElementWidth(t.elem, maxLength)
	if width == 0 {
		return nil, illegal(t, "element width must be declared")
	}
	if len(b)%width != 0 {
		return nil, illegal(t, "%d bytes is not a multiple of element width %d", len(b), width)
	}
	values := make([]any, len(b)/width)
	for i := range values {
		v, err := t.elem.decodeAscending(b[i*width:(i+1)*width], 0)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Array{elem: t.elem, values: values, maxLength: maxLength}, nil
}

func decodeVariableArray(t *Type, b []byte) (*Array, error) {
	tr, err := readArrayTrailer(t, b, Ascending)
	if err != nil {
		return nil, err
	}
	body := tr.body
	values := make([]any, tr.count)

	idx, pos := 0, 0
	for {
		if pos+1 >= len(body) {
			return nil, illegal(t, "missing end token")
		}
		if body[pos] == arrayEscape {
			switch body[pos+1] {
			case arrayEndToken:
				if idx != tr.count {
					return nil, illegal(t, "found %d elements, trailer counts %d", idx, tr.count)
				}
				return &Array{elem: t.elem, values: values}, nil
			case arrayTrailingNulls, arrayInteriorNulls:
				k, n, err := readNullRun(t, body[pos:])
				if err != nil {
					return nil, err
				}
				if idx+k > tr.count {
					return nil, illegal(t, "null run overflows %d elements", tr.count)
				}
				idx += k
				pos += n
				continue
			}
		}

		content, n, err := readValueToken(t, body[pos:])
		if err != nil {
			return nil, err
		}
		if idx >= tr.count {
			return nil, illegal(t, "more values than the trailer counts")
		}
		v, err := t.elem.decodeAscending(content, 0)
		if err != nil {
			return nil, err
		}
		values[idx] = v
		idx++
		pos += n
	}
}

// readNullRun reads the NULL run token at the start of |b| and returns
// the run length and the token size.
func readNullRun(t *Type, b []byte) (k, n int, err error) {
	if len(b) < 3 {
		return 0, 0, illegal(t, "truncated null run")
	}
	trailing := b[1] == arrayTrailingNulls
	c := b[2]
	long := (trailing && c == 0xFF) || (!trailing && c == 0x00)
	if !long {
		if trailing {
			return int(c), 3, nil
		}
		return 255 - int(c), 3, nil
	}
	if len(b) < 7 {
		return 0, 0, illegal(t, "truncated null run")
	}
	u := binary.BigEndian.Uint32(b[3:7])
	if !trailing {
		u = ^u
	}
	return int(u), 7, nil
}

// readValueToken reads the value token at the start of |b| and returns
// its unescaped content and the token size.
func readValueToken(t *Type, b []byte) (content []byte, n int, err error) {
	for i := 0; i+1 < len(b); i++ {
		if b[i] != arrayEscape {
			continue
		}
		switch b[i+1] {
		case arrayValueEnd:
			raw := b[:i]
			if bytes.IndexByte(raw, arrayEscape) >= 0 {
				raw = unescape(raw)
			}
			return raw, i + 2, nil
		case arrayEscapedZero:
			i++
		default:
			return nil, 0, illegal(t, "unexpected token 0x00 0x%02x", b[i+1])
		}
	}
	return nil, 0, illegal(t, "unterminated value")
}

func unescape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == arrayEscape {
			i++
		}
	}
	return out
}

// ArrayLength returns the number of elements of the encoded array |b| of
// type |t|. |maxLength| is the declared width of CHAR and BINARY elements.
func ArrayLength(b []byte, t *Type, order SortOrder, maxLength int) (int, error) {
	expectTrue(t.IsArray())
	if len(b) == 0 {
		return 0, nil
	}
	if t.elem.FixedWidth() {
		width := arrayElementWidth(t.elem, maxLength)
		if width == 0 {
			return 0, illegal(t, "element width must be declared")
		}
		return len(b) / width, nil
	}
	tr, err := readArrayTrailer(t, b, order)
	if err != nil {
		return 0, err
	}
	return tr.count, nil
}

// ArrayElement returns the encoding of the ith element of |b| under the
// same sort order as |b|. A NULL element yields a zero-length window.
// The window aliases |b| unless the element content had to be unescaped.
func ArrayElement(b []byte, t *Type, i int, order SortOrder, maxLength int) ([]byte, error) {
	expectTrue(t.IsArray())
	n, err := ArrayLength(b, t, order, maxLength)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= n {
		return nil, illegal(t, "index %d out of bounds for %d elements", i, n)
	}

	if t.elem.FixedWidth() {
		width := arrayElementWidth(t.elem, maxLength)
		return b[i*width : (i+1)*width], nil
	}

	tr, err := readArrayTrailer(t, b, order)
	if err != nil {
		return nil, err
	}
	start := tr.offsets.GetOffset(i)
	if start+1 >= len(tr.body) {
		return nil, illegal(t, "offset %d out of bounds", start)
	}
	if orderedByte(tr.body, start, order) == arrayEscape {
		switch orderedByte(tr.body, start+1, order) {
		case arrayTrailingNulls, arrayInteriorNulls:
			return b[start:start], nil
		}
	}

	start, stop := tr.bounds(i)
	if stop < start || stop > len(tr.body) {
		return nil, illegal(t, "corrupt offsets for element %d", i)
	}
	window := tr.body[start:stop]
	escaped := arrayEscape
	if order == Descending {
		escaped = ^arrayEscape
	}
	if bytes.IndexByte(window, escaped) < 0 {
		return window, nil
	}
	content := unescape(Transform(window, order))
	return applyOrder(content, order), nil
}

func orderedByte(b []byte, i int, order SortOrder) byte {
	if order == Descending {
		return ^b[i]
	}
	return b[i]
}
