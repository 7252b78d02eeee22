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
	"fmt"

	"gopkg.in/src-d/go-errors.v1"
)

// ErrIllegalData is returned when a value or an encoding falls outside
// the domain of its type.
var ErrIllegalData = errors.NewKind("illegal data for %s: %s")

// ErrConstraintViolation is returned when bytes of one type are read as
// a type they cannot be coerced to.
var ErrConstraintViolation = errors.NewKind("`%s` cannot be coerced to `%s`")

// ErrValueTooLarge is returned when content exceeds a declared width.
var ErrValueTooLarge = errors.NewKind("value of %d bytes exceeds the declared width %d of %s")

// ErrPrecisionOverflow is returned by exact decimal encoding when a value
// carries more significant digits than the codec can store.
var ErrPrecisionOverflow = errors.NewKind("decimal %s has %d significant digits, maximum is %d")

// ErrIncomparable is returned when two types share no ordering.
var ErrIncomparable = errors.NewKind("`%s` and `%s` are not comparable")

func illegal(t *Type, format string, args ...any) error {
	return ErrIllegalData.New(t.Name(), fmt.Sprintf(format, args...))
}

// ErrUnknownType is returned when a registry lookup finds no type.
var ErrUnknownType = errors.NewKind("unknown type: %v")

// ErrUnknownSortOrder is returned by ParseSortOrder.
var ErrUnknownSortOrder = errors.NewKind("unknown sort order %q")

// ErrInvalidRowKey is returned for row key descriptors that cannot
// order their keys, and for values that do not match a descriptor.
var ErrInvalidRowKey = errors.NewKind("invalid row key: %s")

func invalidRowKey(format string, args ...any) error {
	return ErrInvalidRowKey.New(fmt.Sprintf(format, args...))
}
