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


package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/attic-labs/kingpin"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ndimiduk/phoenix/cmd/util"
	"github.com/ndimiduk/phoenix/store/val"
)

func pcodecEncode(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	encode := pcodec.Command("encode", "Encodes a SQL literal and prints its bytes as hex")
	desc := encode.Flag("desc", "encode in descending order").Bool()
	typ := encode.Arg("type", "SQL type name, e.g. INTEGER or VARCHAR ARRAY").Required().String()
	literal := encode.Arg("literal", "the value, e.g. 42, 'abc' or ARRAY[1,2]").Required().String()

	return encode, func(input string) int {
		util.CheckErrorNoUsage(runEncode(env.out, *typ, *literal, orderOf(*desc)))
		return 0
	}
}

func pcodecDecode(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	decode := pcodec.Command("decode", "Decodes hex bytes and prints the SQL literal")
	desc := decode.Flag("desc", "the bytes are in descending order").Bool()
	source := decode.Flag("source", "the type the bytes were written as, if not <type>").String()
	maxLength := decode.Flag("max-length", "declared width of CHAR and BINARY array elements").Int()
	asJSON := decode.Flag("json", "print the value as JSON").Bool()
	typ := decode.Arg("type", "SQL type to decode into").Required().String()
	hexStr := decode.Arg("hex", "the encoded bytes").Required().String()

	return decode, func(input string) int {
		opts := decodeOpts{
			order:     orderOf(*desc),
			source:    *source,
			maxLength: *maxLength,
			asJSON:    *asJSON,
		}
		util.CheckErrorNoUsage(runDecode(env.out, *typ, *hexStr, opts))
		return 0
	}
}

func pcodecCompare(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	compare := pcodec.Command("compare", "Compares two encoded values and prints -1, 0 or 1")
	descA := compare.Flag("desc-a", "the first value is in descending order").Bool()
	descB := compare.Flag("desc-b", "the second value is in descending order").Bool()
	typA := compare.Arg("type-a", "type of the first value").Required().String()
	hexA := compare.Arg("hex-a", "the first value").Required().String()
	typB := compare.Arg("type-b", "type of the second value").Required().String()
	hexB := compare.Arg("hex-b", "the second value").Required().String()

	return compare, func(input string) int {
		l := encodedArg{typ: *typA, hex: *hexA, order: orderOf(*descA)}
		r := encodedArg{typ: *typB, hex: *hexB, order: orderOf(*descB)}
		util.CheckErrorNoUsage(runCompare(env.out, l, r))
		return 0
	}
}

func pcodecCoerce(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	coerce := pcodec.Command("coerce", "Reports whether values of one type can be stored as another")
	desc := coerce.Flag("desc", "encode the coerced value in descending order").Bool()
	src := coerce.Arg("src", "source type").Required().String()
	dst := coerce.Arg("dst", "target type").Required().String()
	literal := coerce.Arg("literal", "a value of the source type to check").String()

	return coerce, func(input string) int {
		util.CheckErrorNoUsage(runCoerce(env.out, *src, *dst, *literal, orderOf(*desc)))
		return 0
	}
}

func pcodecArrayGet(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	arrayGet := pcodec.Command("array-get", "Prints one element of an encoded array without decoding the rest")
	desc := arrayGet.Flag("desc", "the array is in descending order").Bool()
	maxLength := arrayGet.Flag("max-length", "declared width of CHAR and BINARY elements").Int()
	typ := arrayGet.Arg("type", "array type, e.g. INTEGER ARRAY").Required().String()
	hexStr := arrayGet.Arg("hex", "the encoded array").Required().String()
	index := arrayGet.Arg("index", "zero-based element index").Required().Int()

	return arrayGet, func(input string) int {
		util.CheckErrorNoUsage(runArrayGet(env.out, *typ, *hexStr, *index, orderOf(*desc), *maxLength))
		return 0
	}
}

func pcodecPrecision(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	precision := pcodec.Command("precision", "Prints the precision and scale of an encoded DECIMAL")
	desc := precision.Flag("desc", "the bytes are in descending order").Bool()
	hexStr := precision.Arg("hex", "the encoded decimal").Required().String()

	return precision, func(input string) int {
		util.CheckErrorNoUsage(runPrecision(env.out, *hexStr, orderOf(*desc)))
		return 0
	}
}

// orderOf returns the configured default order unless |desc| is set.
func orderOf(desc bool) val.SortOrder {
	if desc {
		return val.Descending
	}
	if env.cfg != nil {
		return env.cfg.Codec.Order()
	}
	return val.Ascending
}

func runEncode(w io.Writer, typeName, literal string, order val.SortOrder) error {
	typ, err := val.TypeFromName(typeName)
	if err != nil {
		return err
	}
	v, err := typ.ParseLiteral(literal)
	if err != nil {
		return err
	}
	b, err := typ.EncodeSorted(v, order)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hex.EncodeToString(b))
	return err
}

type decodeOpts struct {
	order     val.SortOrder
	source    string
	maxLength int
	asJSON    bool
}

func runDecode(w io.Writer, typeName, hexStr string, opts decodeOpts) error {
	typ, err := val.TypeFromName(typeName)
	if err != nil {
		return err
	}
	src := typ
	if opts.source != "" {
		if src, err = val.TypeFromName(opts.source); err != nil {
			return err
		}
	}
	b, err := parseHex(hexStr)
	if err != nil {
		return err
	}
	v, err := typ.DecodeWithArgs(b, val.DecodeArgs{Source: src, Order: opts.order, MaxLength: opts.maxLength})
	if err != nil {
		return err
	}
	if opts.asJSON {
		out, err := json.Marshal(jsonValue(v))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	_, err = fmt.Fprintln(w, typ.FormatValue(v))
	return err
}

// encodedArg is an encoded value named on the command line.
type encodedArg struct {
	typ   string
	hex   string
	order val.SortOrder
}

func (a encodedArg) resolve() (*val.Type, []byte, error) {
	typ, err := val.TypeFromName(a.typ)
	if err != nil {
		return nil, nil, err
	}
	b, err := parseHex(a.hex)
	if err != nil {
		return nil, nil, err
	}
	return typ, b, nil
}

func runCompare(w io.Writer, l, r encodedArg) error {
	lt, lb, err := l.resolve()
	if err != nil {
		return err
	}
	rt, rb, err := r.resolve()
	if err != nil {
		return err
	}
	c, err := lt.CompareTo(lb, l.order, rb, rt, r.order)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, c)
	return err
}

func runCoerce(w io.Writer, srcName, dstName, literal string, order val.SortOrder) error {
	src, err := val.TypeFromName(srcName)
	if err != nil {
		return err
	}
	dst, err := val.TypeFromName(dstName)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s -> %s: %s\n", src.Name(), dst.Name(), val.CoercionOf(src, dst))
	if literal == "" {
		return nil
	}

	v, err := src.ParseLiteral(literal)
	if err != nil {
		return err
	}
	if !src.IsCoercibleToValue(dst, v) {
		_, err = fmt.Fprintf(w, "%s: not coercible\n", src.FormatValue(v))
		return err
	}
	b, err := src.EncodeSorted(v, order)
	if err != nil {
		return err
	}
	coerced, err := val.CoerceBytes(b, src, order, dst, order)
	if err != nil {
		return err
	}
	dv, err := dst.Decode(coerced, dst, order)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s: %s %s\n", src.FormatValue(v), dst.FormatValue(dv), hex.EncodeToString(coerced))
	return err
}

func runArrayGet(w io.Writer, typeName, hexStr string, index int, order val.SortOrder, maxLength int) error {
	typ, err := val.TypeFromName(typeName)
	if err != nil {
		return err
	}
	if !typ.IsArray() {
		return errors.Errorf("%s is not an array type", typ.Name())
	}
	b, err := parseHex(hexStr)
	if err != nil {
		return err
	}
	elem, err := val.ArrayElement(b, typ, index, order, maxLength)
	if err != nil {
		return err
	}
	v, err := typ.Elem().DecodeWithArgs(elem, val.DecodeArgs{Order: order, MaxLength: maxLength})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", typ.Elem().FormatValue(v), hex.EncodeToString(elem))
	return err
}

func runPrecision(w io.Writer, hexStr string, order val.SortOrder) error {
	b, err := parseHex(hexStr)
	if err != nil {
		return err
	}
	p, s, err := val.DecimalPrecisionAndScale(b, order)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "precision=%d scale=%d\n", p, s)
	return err
}

// parseHex reads hex bytes with an optional 0x prefix. An empty string
// is the NULL encoding.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex %q", s)
	}
	return b, nil
}

// jsonValue maps a decoded value onto JSON-friendly types.
func jsonValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []byte:
		return hex.EncodeToString(x)
	case *val.Array:
		items := make([]any, x.Len())
		for i := range items {
			items[i] = jsonValue(x.Get(i))
		}
		return items
	default:
		return v
	}
}
