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
	"time"
)

// IsBytesComparableWith reports whether encodings of |t| and |other|
// written under the same sort order may be compared byte by byte.
func (t *Type) IsBytesComparableWith(other *Type) bool {
	if t == other {
		return true
	}
	switch {
	case isBinary(t.enc) && isBinary(other.enc):
		return true
	case (t.enc == DateEnc || t.enc == TimeEnc) && (other.enc == DateEnc || other.enc == TimeEnc):
		return true
	case (t.enc == UnsignedDateEnc || t.enc == UnsignedTimeEnc) && (other.enc == UnsignedDateEnc || other.enc == UnsignedTimeEnc):
		return true
	default:
		return false
	}
}

// CompareTo orders the value |l| of |t| under |lo| against the value |r|
// of |rt| under |ro|. The result is the semantic order of the values,
// not of their bytes; NULL sorts before every value.
func (t *Type) CompareTo(l []byte, lo SortOrder, r []byte, rt *Type, ro SortOrder) (int, error) {
	if len(l) == 0 || len(r) == 0 {
		return compareNulls(len(l) == 0, len(r) == 0), nil
	}
	if lo == ro && t.IsBytesComparableWith(rt) && t.enc != CharEnc {
		if lo == Descending {
			return compareDescending(l, r), nil
		}
		return bytes.Compare(l, r), nil
	}
	if t.IsNumeric() && rt.IsNumeric() {
		return CompareNumeric(l, t, lo, r, rt, ro)
	}

	lv, err := t.Decode(l, t, lo)
	if err != nil {
		return 0, err
	}
	rv, err := rt.Decode(r, rt, ro)
	if err != nil {
		return 0, err
	}
	return CompareValues(lv, t, rv, rt)
}

// compareDescending orders two descending encodings by the values they
// hold. A shorter encoding is still the smaller value.
func compareDescending(l, r []byte) int {
	n := min(len(l), len(r))
	if c := bytes.Compare(l[:n], r[:n]); c != 0 {
		return -c
	}
	return compareInt64(int64(len(l)), int64(len(r)))
}

// CompareValues orders two native values of |lt| and |rt|.
func CompareValues(l any, lt *Type, r any, rt *Type) (int, error) {
	if l == nil || r == nil {
		return compareNulls(l == nil, r == nil), nil
	}
	switch {
	case lt.IsNumeric() && rt.IsNumeric():
		return CompareNumbers(l, r), nil
	case isString(lt.enc) && isString(rt.enc):
		return compareString(l.(string), r.(string)), nil
	case isBinary(lt.enc) && isBinary(rt.enc):
		return compareBytes(l.([]byte), r.([]byte)), nil
	case isCalendar(lt.enc) && isCalendar(rt.enc):
		return compareTime(l.(time.Time), r.(time.Time)), nil
	case lt.enc == BooleanEnc && rt.enc == BooleanEnc:
		return compareBool(l.(bool), r.(bool)), nil
	case lt.enc == ArrayEnc && rt.enc == ArrayEnc:
		return compareArrays(l.(*Array), r.(*Array))
	default:
		return 0, ErrIncomparable.New(lt.name, rt.name)
	}
}

func compareArrays(l, r *Array) (int, error) {
	n := len(l.values)
	if len(r.values) < n {
		n = len(r.values)
	}
	for i := 0; i < n; i++ {
		c, err := CompareValues(l.values[i], l.elem, r.values[i], r.elem)
		if err != nil || c != 0 {
			return c, err
		}
	}
	return compareInt64(int64(len(l.values)), int64(len(r.values))), nil
}
