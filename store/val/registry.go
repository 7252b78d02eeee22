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
	"sort"
	"strings"
	"sync"
)

type typeRegistry struct {
	ordered   []*Type
	byName    map[string]*Type
	bySQLType map[int]*Type
	arrays    map[*Type]*Type
}

var (
	registryOnce sync.Once
	registry     *typeRegistry
)

func allTypes() []*Type {
	return []*Type{
		Binary, BinaryArray,
		Char, CharArray,
		Decimal, DecimalArray,
		Boolean, BooleanArray,
		Date, DateArray,
		Double, DoubleArray,
		Float, FloatArray,
		Integer, IntegerArray,
		Bigint, BigintArray,
		Time, TimeArray,
		Timestamp, TimestampArray,
		Smallint, SmallintArray,
		Tinyint, TinyintArray,
		UnsignedDate, UnsignedDateArray,
		UnsignedDouble, UnsignedDoubleArray,
		UnsignedFloat, UnsignedFloatArray,
		UnsignedInt, UnsignedIntArray,
		UnsignedLong, UnsignedLongArray,
		UnsignedSmallint, UnsignedSmallintArray,
		UnsignedTime, UnsignedTimeArray,
		UnsignedTimestamp, UnsignedTimestampArray,
		UnsignedTinyint, UnsignedTinyintArray,
		Varbinary, VarbinaryArray,
		Varchar, VarcharArray,
	}
}

// aliases maps alternate SQL spellings onto registered names.
var aliases = map[string]string{
	"INT":              "INTEGER",
	"LONG":             "BIGINT",
	"UNSIGNED_BIGINT":  "UNSIGNED_LONG",
	"UNSIGNED_INTEGER": "UNSIGNED_INT",
	"BOOL":             "BOOLEAN",
	"NUMERIC":          "DECIMAL",
	"STRING":           "VARCHAR",
	"BYTES":            "VARBINARY",
}

func types() *typeRegistry {
	registryOnce.Do(func() {
		all := allTypes()
		r := &typeRegistry{
			ordered:   make([]*Type, len(all)),
			byName:    make(map[string]*Type, len(all)),
			bySQLType: make(map[int]*Type, len(all)),
			arrays:    make(map[*Type]*Type),
		}
		copy(r.ordered, all)
		sort.Slice(r.ordered, func(i, j int) bool {
			return r.ordered[i].ordinal < r.ordered[j].ordinal
		})
		for _, t := range all {
			r.byName[t.name] = t
			r.bySQLType[t.sqlType] = t
			if t.elem != nil {
				r.arrays[t.elem] = t
			}
		}
		registry = r
	})
	return registry
}

// Types returns every registered type in ordinal order.
func Types() []*Type {
	return append([]*Type(nil), types().ordered...)
}

// TypeFromName looks up a type by SQL name, ignoring case. Array types
// are named "<ELEM> ARRAY" or "<ELEM>[]".
func TypeFromName(name string) (*Type, error) {
	n := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	if strings.HasSuffix(n, "[]") {
		elem, err := TypeFromName(strings.TrimSuffix(n, "[]"))
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem)
	}
	if base, ok := strings.CutSuffix(n, " ARRAY"); ok {
		if a, ok := aliases[base]; ok {
			n = a + " ARRAY"
		}
	} else if a, ok := aliases[n]; ok {
		n = a
	}
	if t, ok := types().byName[n]; ok {
		return t, nil
	}
	return nil, ErrUnknownType.New(name)
}

// TypeFromSQLType looks up a type by its SQL type id.
func TypeFromSQLType(id int) (*Type, error) {
	if t, ok := types().bySQLType[id]; ok {
		return t, nil
	}
	return nil, ErrUnknownType.New(id)
}

// TypeFromOrdinal looks up a type by its registry ordinal.
func TypeFromOrdinal(ordinal int) (*Type, error) {
	r := types()
	if ordinal < 0 || ordinal >= len(r.ordered) {
		return nil, ErrUnknownType.New(ordinal)
	}
	return r.ordered[ordinal], nil
}

// ArrayOf returns the array type whose elements are |elem|.
func ArrayOf(elem *Type) (*Type, error) {
	if t, ok := types().arrays[elem]; ok {
		return t, nil
	}
	return nil, ErrUnknownType.New(elem.name + " ARRAY")
}

// ScalarTypes returns the registered non-array types in ordinal order.
func ScalarTypes() []*Type {
	var out []*Type
	for _, t := range types().ordered {
		if !t.IsArray() {
			out = append(out, t)
		}
	}
	return out
}
