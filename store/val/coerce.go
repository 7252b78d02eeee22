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

// Coercion classifies the edge between two types.
type Coercion uint8

const (
	// Never means no value of the source type fits the target type.
	Never Coercion = iota
	// ValueDependent means some values of the source type fit.
	ValueDependent
	// Always means every value of the source type fits.
	Always
)

func (c Coercion) String() string {
	switch c {
	case Always:
		return "always"
	case ValueDependent:
		return "value-dependent"
	default:
		return "never"
	}
}

// CoercionOf returns the edge from |src| to |dst|.
func CoercionOf(src, dst *Type) Coercion {
	if Structural(src, dst) {
		return Always
	}
	if valueDependent(src, dst) {
		return ValueDependent
	}
	return Never
}

// IsCoercibleTo reports whether every value of |t| can be stored as |target|.
func (t *Type) IsCoercibleTo(target *Type) bool {
	return Structural(t, target)
}

// IsCoercibleToValue reports whether |v|, a value of |t|, can be stored
// as |target|.
func (t *Type) IsCoercibleToValue(target *Type, v any) bool {
	return ValueCoercible(t, target, v)
}

// IsArrayCoercibleTo reports whether arrays of |t| coerce to arrays of |target|.
func (t *Type) IsArrayCoercibleTo(target *Type) bool {
	return t.IsArray() && target.IsArray() && Structural(t.elem, target.elem)
}

// Structural reports whether |src| coerces to |dst| regardless of value.
func Structural(src, dst *Type) bool {
	if src == dst {
		return true
	}
	if src.enc == ArrayEnc || dst.enc == ArrayEnc {
		return src.enc == ArrayEnc && dst.enc == ArrayEnc && Structural(src.elem, dst.elem)
	}
	// every scalar may be stored as opaque bytes
	if isBinary(dst.enc) {
		return true
	}

	switch {
	case isIntegral(src.enc):
		slo, shi := integralBounds(src.enc)
		switch {
		case isIntegral(dst.enc):
			dlo, dhi := integralBounds(dst.enc)
			return dlo <= slo && shi <= dhi
		case isFloating(dst.enc):
			return !isUnsigned(dst.enc) || slo >= 0
		default:
			return dst.enc == DecimalEnc
		}

	case isFloating(src.enc):
		switch {
		case isFloating(dst.enc):
			if isUnsigned(dst.enc) && !isUnsigned(src.enc) {
				return false
			}
			return !isSinglePrecision(dst.enc) || isSinglePrecision(src.enc)
		default:
			return dst.enc == DecimalEnc
		}

	case isCalendar(src.enc):
		if !isCalendar(dst.enc) {
			return false
		}
		if isTimestamp(src.enc) && !isTimestamp(dst.enc) {
			return false
		}
		return isUnsigned(src.enc) || !isUnsigned(dst.enc)

	case src.enc == CharEnc:
		return dst.enc == VarcharEnc

	default:
		return false
	}
}

// valueDependent reports whether some, but not all, values of |src|
// fit |dst|. Only meaningful when Structural(src, dst) is false.
func valueDependent(src, dst *Type) bool {
	if src.enc == ArrayEnc || dst.enc == ArrayEnc {
		return src.enc == ArrayEnc && dst.enc == ArrayEnc && CoercionOf(src.elem, dst.elem) != Never
	}
	switch {
	case isNumeric(src.enc):
		return isNumeric(dst.enc)
	case isCalendar(src.enc):
		return isCalendar(dst.enc) && !(isTimestamp(src.enc) && !isTimestamp(dst.enc))
	case src.enc == VarcharEnc:
		return dst.enc == CharEnc
	default:
		return false
	}
}

// ValueCoercible reports whether the value |v| of |src| fits |dst|.
// A nil |v| follows the structural rule.
func ValueCoercible(src, dst *Type, v any) bool {
	if Structural(src, dst) {
		return true
	}
	if v == nil || !valueDependent(src, dst) {
		return false
	}

	if src.enc == ArrayEnc {
		a, ok := v.(*Array)
		if !ok {
			return false
		}
		for _, e := range a.values {
			if e != nil && !ValueCoercible(src.elem, dst.elem, e) {
				return false
			}
		}
		return true
	}

	_, err := dst.native(v)
	return err == nil
}
