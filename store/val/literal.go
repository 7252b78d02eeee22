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
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout      = "2006-01-02 15:04:05.000"
	TimestampLayout = "2006-01-02 15:04:05.000000000"
)

var timeLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02",
}

// ParseLiteral parses the SQL literal |s| into the native domain of |t|.
// An empty literal is NULL for variable-width types and illegal for
// fixed-width types. The literal NULL is always NULL.
func (t *Type) ParseLiteral(s string) (any, error) {
	if strings.EqualFold(s, "NULL") {
		return nil, nil
	}
	if s == "" {
		if t.FixedWidth() {
			return nil, illegal(t, "empty literal")
		}
		return nil, nil
	}

	switch {
	case t.enc == BooleanEnc:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, illegal(t, "%q is not a boolean", s)
		}
		return b, nil

	case isIntegral(t.enc):
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, illegal(t, "%q is not an integer", s)
		}
		return t.native(n)

	case isFloating(t.enc):
		bits := 64
		if isSinglePrecision(t.enc) {
			bits = 32
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), bits)
		if err != nil {
			return nil, illegal(t, "%q is not a number", s)
		}
		return t.native(f)

	case t.enc == DecimalEnc:
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, illegal(t, "%q is not a decimal", s)
		}
		return d, nil

	case isCalendar(t.enc):
		tm, err := parseTime(unquote(s))
		if err != nil {
			return nil, illegal(t, "%q is not a date", s)
		}
		return t.native(tm)

	case isString(t.enc):
		return t.native(unquote(s))

	case isBinary(t.enc):
		b, err := parseHex(s)
		if err != nil {
			return nil, illegal(t, "%q is not hex", s)
		}
		return b, nil

	case t.enc == ArrayEnc:
		return t.parseArray(s)

	default:
		panic("unknown encoding")
	}
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var tm time.Time
		if tm, err = time.ParseInLocation(layout, strings.TrimSpace(s), time.UTC); err == nil {
			return tm.UTC(), nil
		}
	}
	return time.Time{}, err
}

func parseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) >= 3 && (s[0] == 'X' || s[0] == 'x') && s[1] == '\'' && s[len(s)-1] == '\'':
		s = s[2 : len(s)-1]
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	return hex.DecodeString(s)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (t *Type) parseArray(s string) (*Array, error) {
	body := strings.TrimSpace(s)
	if len(body) >= 5 && strings.EqualFold(body[:5], "ARRAY") {
		body = strings.TrimSpace(body[5:])
	}
	if len(body) < 2 || body[0] != '[' || body[len(body)-1] != ']' {
		return nil, illegal(t, "%q is not an array literal", s)
	}
	body = strings.TrimSpace(body[1 : len(body)-1])

	var values []any
	if body != "" {
		for _, item := range splitArrayItems(body) {
			item = strings.TrimSpace(item)
			if item == "" {
				return nil, illegal(t, "empty element in %q", s)
			}
			v, err := t.elem.ParseLiteral(item)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}
	return NewArray(t.elem, values...), nil
}

// splitArrayItems splits on commas outside single quotes.
func splitArrayItems(s string) []string {
	var items []string
	quoted, start := false, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case ',':
			if !quoted {
				items = append(items, s[start:i])
				start = i + 1
			}
		}
	}
	return append(items, s[start:])
}

// FormatLiteral renders the encoding |b| of |t| as a SQL literal.
func (t *Type) FormatLiteral(b []byte, order SortOrder) (string, error) {
	v, err := t.Decode(b, t, order)
	if err != nil {
		return "", err
	}
	return t.FormatValue(v), nil
}

// FormatValue renders the native value |v| of |t| as a SQL literal.
func (t *Type) FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	switch x := v.(type) {
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		if isTimestamp(t.enc) {
			return quote(x.UTC().Format(TimestampLayout))
		}
		return quote(x.UTC().Format(DateLayout))
	case string:
		return quote(x)
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(x)) + "'"
	case *Array:
		items := make([]string, len(x.values))
		for i, e := range x.values {
			items[i] = x.elem.FormatValue(e)
		}
		return "ARRAY[" + strings.Join(items, ",") + "]"
	default:
		return "?"
	}
}
