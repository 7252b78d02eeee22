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
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/attic-labs/kingpin"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ndimiduk/phoenix/cmd/util"
	"github.com/ndimiduk/phoenix/store/val"
)

const (
	verifyMaxLength = 8
	verifyMaxArray  = 4
)

func pcodecVerify(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	verify := pcodec.Command("verify", "Checks round trips and byte order over random values of every type")
	rounds := verify.Flag("rounds", "random value pairs per type").Default("1000").Int()
	parallel := verify.Flag("parallel", "types checked at once").Default("4").Int()
	seed := verify.Flag("seed", "random seed, the current time when zero").Int64()
	typeNames := verify.Flag("type", "check only this type, may be repeated").Strings()

	return verify, func(input string) int {
		opts := verifyOpts{rounds: *rounds, parallel: *parallel, seed: *seed}
		for _, name := range *typeNames {
			typ, err := val.TypeFromName(name)
			util.CheckErrorNoUsage(err)
			opts.types = append(opts.types, typ)
		}
		if opts.seed == 0 {
			opts.seed = time.Now().UnixNano()
		}
		util.CheckErrorNoUsage(runVerify(ctx, env.out, opts, env.lgr))
		return 0
	}
}

type verifyOpts struct {
	rounds   int
	parallel int
	seed     int64
	// types to check, every registered type when empty
	types []*val.Type
}

type verifyResult struct {
	typ      *val.Type
	checks   int
	failures int
	// the first failure seen, if any
	example string
}

func (r *verifyResult) fail(format string, args ...any) {
	if r.failures == 0 {
		r.example = fmt.Sprintf(format, args...)
	}
	r.failures++
}

// runVerify checks, for random values of each type, that decoding
// returns the encoded value and that byte order matches value order,
// in both sort orders. It returns an error if any check fails.
func runVerify(ctx context.Context, w io.Writer, opts verifyOpts, lgr *logrus.Entry) error {
	types := opts.types
	if len(types) == 0 {
		types = val.Types()
	}
	if opts.parallel <= 0 {
		opts.parallel = 1
	}

	start := time.Now()
	results := make([]verifyResult, len(types))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.parallel)
	for i, typ := range types {
		i, typ := i, typ
		eg.Go(func() error {
			rnd := rand.New(rand.NewSource(opts.seed + int64(typ.Ordinal())))
			results[i] = verifyResult{typ: typ}
			return verifyType(ctx, rnd, opts.rounds, &results[i])
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	checks, failures := 0, 0
	for _, r := range results {
		checks += r.checks
		failures += r.failures
		if r.failures == 0 {
			fmt.Fprintf(w, "%s\t%s\t%s checks\n", color.GreenString("ok"), r.typ.Name(), humanize.Comma(int64(r.checks)))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d of %s checks failed: %s\n", color.RedString("FAIL"), r.typ.Name(),
			r.failures, humanize.Comma(int64(r.checks)), r.example)
	}

	lgr.WithFields(logrus.Fields{
		"types":    len(types),
		"checks":   checks,
		"failures": failures,
		"seed":     opts.seed,
		"elapsed":  time.Since(start).String(),
	}).Info("verify finished")
	if failures > 0 {
		return errors.Errorf("%d of %d checks failed (seed %d)", failures, checks, opts.seed)
	}
	return nil
}

func verifyType(ctx context.Context, rnd *rand.Rand, rounds int, r *verifyResult) error {
	typ := r.typ
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		arrayLen := 1 + rnd.Intn(verifyMaxArray)
		l := typ.SampleValue(rnd, verifyMaxLength, arrayLen)
		rv := typ.SampleValue(rnd, verifyMaxLength, 1+rnd.Intn(verifyMaxArray))

		exp, err := val.CompareValues(l, typ, rv, typ)
		if err != nil {
			return err
		}
		for _, order := range []val.SortOrder{val.Ascending, val.Descending} {
			lb, err := typ.EncodeSorted(l, order)
			if err != nil {
				return errors.Wrapf(err, "failed to encode %s", typ.FormatValue(l))
			}
			rb, err := typ.EncodeSorted(rv, order)
			if err != nil {
				return errors.Wrapf(err, "failed to encode %s", typ.FormatValue(rv))
			}

			r.checks++
			checkRoundTrip(typ, l, lb, order, r)

			r.checks++
			act := bytes.Compare(lb, rb)
			if order == val.Descending {
				// a descending encoding may be a byte prefix of a larger one
				if act, err = typ.CompareTo(lb, order, rb, typ, order); err != nil {
					return err
				}
			}
			if act != exp {
				r.fail("%s vs %s %s: expected %d, found %d", typ.FormatValue(l), typ.FormatValue(rv), order, exp, act)
			}
		}
	}
	return nil
}

func checkRoundTrip(typ *val.Type, v any, b []byte, order val.SortOrder, r *verifyResult) {
	args := val.DecodeArgs{Order: order}
	if a, ok := v.(*val.Array); ok {
		args.MaxLength = a.MaxLength()
	}
	act, err := typ.DecodeWithArgs(b, args)
	if err != nil {
		r.fail("%s %s: %v", typ.FormatValue(v), order, err)
		return
	}
	if c, err := val.CompareValues(v, typ, act, typ); err != nil || c != 0 {
		r.fail("%s %s decoded as %s", typ.FormatValue(v), order, typ.FormatValue(act))
	}
}
