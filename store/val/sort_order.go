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

import "strings"

// SortOrder is the direction in which encoded bytes sort.
// Descending bytes are the bitwise complement of Ascending bytes.
type SortOrder uint8

const (
	Ascending SortOrder = iota
	Descending
)

// ParseSortOrder reads "asc" or "desc" (any case).
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, ErrUnknownSortOrder.New(s)
	}
}

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// Reverse returns the opposite order.
func (o SortOrder) Reverse() SortOrder {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// Invert writes the complement of |src| into |dst| and returns the
// written prefix of |dst|. |dst| may alias |src|.
func Invert(src, dst []byte) []byte {
	expectTrue(len(dst) >= len(src))
	dst = dst[:len(src)]
	for i := range src {
		dst[i] = ^src[i]
	}
	return dst
}

// InvertInPlace complements |b|.
func InvertInPlace(b []byte) {
	for i := range b {
		b[i] = ^b[i]
	}
}

// Transform returns |b| unchanged for Ascending and a complemented
// copy for Descending.
func Transform(b []byte, order SortOrder) []byte {
	if order == Ascending || b == nil {
		return b
	}
	return Invert(b, make([]byte, len(b)))
}

// normalize returns the Ascending form of |b|, copying only when
// |order| is Descending.
func normalize(b []byte, order SortOrder) []byte {
	return Transform(b, order)
}

// applyOrder complements |b| in place when |order| is Descending.
// |b| must be owned by the caller.
func applyOrder(b []byte, order SortOrder) []byte {
	if order == Descending {
		InvertInPlace(b)
	}
	return b
}
