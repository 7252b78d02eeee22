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
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// RowKey is the encoded primary key of a row. RowKeys of the same
// RowKeyDesc sort in the order of their column values.
type RowKey []byte

const (
	ascSeparator  = byte(0x00)
	descSeparator = byte(0xFF)

	// MaxSaltBuckets is the largest number of salt buckets a key may use.
	MaxSaltBuckets = 256
)

// RowKeyField is one primary key column.
type RowKeyField struct {
	Type  *Type
	Order SortOrder
	// MaxLength is the declared width of a CHAR or BINARY column, and
	// of the elements of a CHAR or BINARY array.
	MaxLength int
}

// RowKeyDesc describes the layout of a RowKey.
//
// Fixed-width columns are concatenated. A variable-width column is
// followed by a separator, 0x00 when ascending and 0xFF when descending,
// unless it is the last column. Trailing NULL columns are dropped. When
// SaltBuckets is set the key starts with a salt byte spreading
// sequential keys over that many buckets.
type RowKeyDesc struct {
	Fields      []RowKeyField
	SaltBuckets int
}

// NewRowKeyDesc returns a RowKeyDesc for |fields|. Only the last field
// may be VARBINARY or an array.
func NewRowKeyDesc(fields ...RowKeyField) (RowKeyDesc, error) {
	for i, f := range fields {
		last := i == len(fields)-1
		if !last && (f.Type.enc == VarbinaryEnc || f.Type.IsArray()) {
			return RowKeyDesc{}, invalidRowKey("%s may only be the last row key column", f.Type.name)
		}
		if (f.Type.enc == CharEnc || f.Type.enc == BinaryEnc) && f.MaxLength <= 0 {
			return RowKeyDesc{}, invalidRowKey("%s row key column %d must declare a length", f.Type.name, i)
		}
	}
	return RowKeyDesc{Fields: fields}, nil
}

// WithSaltBuckets returns a copy of |d| that salts keys into |n| buckets.
func (d RowKeyDesc) WithSaltBuckets(n int) (RowKeyDesc, error) {
	if n < 0 || n > MaxSaltBuckets {
		return d, invalidRowKey("salt buckets must be between 0 and %d, found %d", MaxSaltBuckets, n)
	}
	d.SaltBuckets = n
	return d, nil
}

// Count returns the number of columns.
func (d RowKeyDesc) Count() int {
	return len(d.Fields)
}

func (d RowKeyDesc) saltSize() int {
	if d.SaltBuckets > 0 {
		return 1
	}
	return 0
}

// Salt returns the salt byte for the unsalted key |k|.
func (d RowKeyDesc) Salt(k []byte) byte {
	expectTrue(d.SaltBuckets > 0)
	return byte(xxhash.Sum64(k) % uint64(d.SaltBuckets))
}

func (f RowKeyField) width() (int, bool) {
	if sz, ok := f.Type.ByteSize(); ok {
		return int(sz), true
	}
	if f.Type.enc == CharEnc || f.Type.enc == BinaryEnc {
		return f.MaxLength, true
	}
	return 0, false
}

func (f RowKeyField) separator() byte {
	if f.Order == Descending {
		return descSeparator
	}
	return ascSeparator
}

// encodeField appends field |i| with value |v| to |buf|.
func (d RowKeyDesc) encodeField(buf []byte, i int, v any) ([]byte, error) {
	f := d.Fields[i]
	b, err := f.Type.EncodeSorted(v, f.Order)
	if err != nil {
		return nil, err
	}
	if w, fixed := f.width(); fixed {
		if b, err = f.Type.PadSorted(b, w, f.Order); err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	}

	if i == len(d.Fields)-1 {
		return append(buf, b...), nil
	}
	sep := f.separator()
	if bytes.IndexByte(b, sep) >= 0 {
		return nil, illegal(f.Type, "row key column %d may not contain a zero byte", i)
	}
	buf = append(buf, b...)
	return append(buf, sep), nil
}

// Encode builds the RowKey for |values|, one per column.
func (d RowKeyDesc) Encode(values ...any) (RowKey, error) {
	if len(values) != len(d.Fields) {
		return nil, invalidRowKey("expected %d row key values, found %d", len(d.Fields), len(values))
	}
	buf := make([]byte, d.saltSize(), 32)
	end := len(buf)
	var err error
	for i, v := range values {
		if buf, err = d.encodeField(buf, i, v); err != nil {
			return nil, err
		}
		if v != nil {
			end = len(buf)
		}
	}
	buf = buf[:end]
	if d.SaltBuckets > 0 {
		buf[0] = d.Salt(buf[1:])
	}
	return RowKey(buf), nil
}

// EncodePrefix encodes the leading columns |values| without a salt byte.
// Every RowKey whose leading columns equal |values| starts, after its
// salt byte, with the returned bytes.
func (d RowKeyDesc) EncodePrefix(values ...any) ([]byte, error) {
	if len(values) > len(d.Fields) {
		return nil, invalidRowKey("expected at most %d row key values, found %d", len(d.Fields), len(values))
	}
	var buf []byte
	var err error
	for i, v := range values {
		if buf, err = d.encodeField(buf, i, v); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// fieldBounds returns the bounds of each column of |key|. Columns
// missing from the end of the key have start == stop == -1.
func (d RowKeyDesc) fieldBounds(key RowKey) ([][2]int, error) {
	bounds := make([][2]int, len(d.Fields))
	pos := d.saltSize()
	for i, f := range d.Fields {
		if pos >= len(key) {
			if _, fixed := f.width(); fixed {
				return nil, illegal(f.Type, "row key is missing column %d", i)
			}
			bounds[i] = [2]int{-1, -1}
			continue
		}
		if w, fixed := f.width(); fixed {
			if pos+w > len(key) {
				return nil, illegal(f.Type, "row key is truncated at column %d", i)
			}
			bounds[i] = [2]int{pos, pos + w}
			pos += w
			continue
		}
		if i == len(d.Fields)-1 {
			bounds[i] = [2]int{pos, len(key)}
			pos = len(key)
			continue
		}
		j := bytes.IndexByte(key[pos:], f.separator())
		if j < 0 {
			bounds[i] = [2]int{pos, len(key)}
			pos = len(key)
			continue
		}
		bounds[i] = [2]int{pos, pos + j}
		pos += j + 1
	}
	return bounds, nil
}

// GetField returns the encoding of column |i| of |key| in the column's
// sort order. A NULL column yields a zero-length window.
func (d RowKeyDesc) GetField(key RowKey, i int) ([]byte, error) {
	bounds, err := d.fieldBounds(key)
	if err != nil {
		return nil, err
	}
	b := bounds[i]
	if b[0] < 0 {
		return nil, nil
	}
	return key[b[0]:b[1]], nil
}

// Decode returns the column values of |key|.
func (d RowKeyDesc) Decode(key RowKey) ([]any, error) {
	bounds, err := d.fieldBounds(key)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		b := bounds[i]
		if b[0] < 0 {
			continue
		}
		v, err := f.Type.DecodeWithArgs(key[b[0]:b[1]], DecodeArgs{Order: f.Order, MaxLength: f.MaxLength})
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Compare orders two keys of |d|.
func (d RowKeyDesc) Compare(l, r RowKey) int {
	return bytes.Compare(l, r)
}

// Format renders |key| as a parenthesized list of literals.
func (d RowKeyDesc) Format(key RowKey) string {
	values, err := d.Decode(key)
	if err != nil {
		return fmt.Sprintf("<%x>", []byte(key))
	}
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = d.Fields[i].Type.FormatValue(v)
	}
	return "(" + strings.Join(items, ", ") + ")"
}
