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

import "math/bits"

// nullMask has one bit per tuple field, least significant bit first.
// A set bit marks a field that holds a value; NULL fields are clear and
// take no space in the tuple's value region.
type nullMask []byte

func maskSize(fields int) ByteSize {
	return ByteSize((fields + 7) >> 3)
}

func (nm nullMask) size() ByteSize {
	return ByteSize(len(nm))
}

func (nm nullMask) set(i int) {
	nm[i>>3] |= 1 << (i & 7)
}

func (nm nullMask) present(i int) bool {
	return nm[i>>3]&(1<<(i&7)) != 0
}

// count returns the number of non-NULL fields.
func (nm nullMask) count() (n int) {
	for _, b := range nm {
		n += bits.OnesCount8(b)
	}
	return
}

// countPrefix returns the number of non-NULL fields among 0..i.
func (nm nullMask) countPrefix(i int) int {
	n := 0
	whole := i >> 3
	for _, b := range nm[:whole] {
		n += bits.OnesCount8(b)
	}
	keep := uint8(2)<<(i&7) - 1
	return n + bits.OnesCount8(nm[whole]&keep)
}
