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
	"os"

	"github.com/attic-labs/kingpin"
	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/ndimiduk/phoenix/cmd/util"
	"github.com/ndimiduk/phoenix/libraries/codeccfg"
	"github.com/ndimiduk/phoenix/libraries/errhand"
	"github.com/ndimiduk/phoenix/store/kvstore"
	"github.com/ndimiduk/phoenix/store/val"
)

const (
	schemaMetaKey = "schema"
	loadBatchSize = 1000
)

func pcodecLoad(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	load := pcodec.Command("load", `Loads the rows of a YAML file into a table
The file declares the key and value columns and lists each row as
literals, key columns first.`)
	db := load.Arg("db", "bolt database file").Required().String()
	file := load.Arg("file", "YAML load file").Required().String()

	return load, func(input string) int {
		util.CheckErrorNoUsage(runLoad(ctx, env.out, *db, *file, env.cfg, env.lgr))
		return 0
	}
}

func pcodecScan(ctx context.Context, pcodec *kingpin.Application) (*kingpin.CmdClause, util.KingpinHandler) {
	scan := pcodec.Command("scan", "Prints the rows of a table in key order")
	from := scan.Flag("from", "first key prefix to include, one literal per key column").Strings()
	to := scan.Flag("to", "last key prefix to include, one literal per key column").Strings()
	prefix := scan.Flag("prefix", "only rows whose leading key columns equal these literals").Strings()
	asJSON := scan.Flag("json", "print one JSON object per row").Bool()
	db := scan.Arg("db", "bolt database file, store.path when omitted").String()

	return scan, func(input string) int {
		path := *db
		if path == "" {
			path = env.cfg.Store.Path
		}
		opts := scanOpts{from: *from, to: *to, prefix: *prefix, asJSON: *asJSON}
		util.CheckErrorNoUsage(runScan(ctx, env.out, path, opts, env.cfg, env.lgr))
		return 0
	}
}

// columnDef declares one table column.
type columnDef struct {
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type" json:"type"`
	Order     string `yaml:"order,omitempty" json:"order,omitempty"`
	MaxLength int    `yaml:"max_length,omitempty" json:"max_length,omitempty"`
}

// tableSchema is the column layout of a table. It is kept in the
// database so that scan can decode the rows written by load.
type tableSchema struct {
	SaltBuckets int         `yaml:"salt_buckets,omitempty" json:"salt_buckets,omitempty"`
	Key         []columnDef `yaml:"key" json:"key"`
	Value       []columnDef `yaml:"value" json:"value"`
}

type loadFile struct {
	SaltBuckets int         `yaml:"salt_buckets"`
	Key         []columnDef `yaml:"key"`
	Value       []columnDef `yaml:"value"`
	Rows        [][]string  `yaml:"rows"`
}

func (lf loadFile) schema() tableSchema {
	return tableSchema{SaltBuckets: lf.SaltBuckets, Key: lf.Key, Value: lf.Value}
}

func (s tableSchema) descriptors() (val.RowKeyDesc, val.TupleDesc, error) {
	if len(s.Key) == 0 {
		return val.RowKeyDesc{}, val.TupleDesc{}, errors.New("a table needs at least one key column")
	}
	fields := make([]val.RowKeyField, len(s.Key))
	for i, c := range s.Key {
		typ, err := val.TypeFromName(c.Type)
		if err != nil {
			return val.RowKeyDesc{}, val.TupleDesc{}, errors.Wrapf(err, "key column %s", c.Name)
		}
		order, err := val.ParseSortOrder(c.Order)
		if err != nil {
			return val.RowKeyDesc{}, val.TupleDesc{}, errors.Wrapf(err, "key column %s", c.Name)
		}
		fields[i] = val.RowKeyField{Type: typ, Order: order, MaxLength: c.MaxLength}
	}
	keyDesc, err := val.NewRowKeyDesc(fields...)
	if err != nil {
		return val.RowKeyDesc{}, val.TupleDesc{}, err
	}
	if keyDesc, err = keyDesc.WithSaltBuckets(s.SaltBuckets); err != nil {
		return val.RowKeyDesc{}, val.TupleDesc{}, err
	}

	types := make([]*val.Type, len(s.Value))
	lengths := make([]int, len(s.Value))
	for i, c := range s.Value {
		if types[i], err = val.TypeFromName(c.Type); err != nil {
			return val.RowKeyDesc{}, val.TupleDesc{}, errors.Wrapf(err, "value column %s", c.Name)
		}
		if c.Order != "" {
			return val.RowKeyDesc{}, val.TupleDesc{}, errors.Errorf("value column %s may not declare a sort order", c.Name)
		}
		lengths[i] = c.MaxLength
	}
	if len(types) > val.MaxTupleFields {
		return val.RowKeyDesc{}, val.TupleDesc{}, errors.Errorf("a table may have at most %d value columns", val.MaxTupleFields)
	}
	return keyDesc, val.NewTupleDescriptor(types...).WithMaxLengths(lengths...), nil
}

func openStore(ctx context.Context, path string, cfg *codeccfg.Config, lgr *logrus.Entry) (*kvstore.BoltStore, error) {
	return kvstore.OpenBoltStore(ctx, path, kvstore.BoltOptions{
		Bucket:      cfg.Store.Bucket,
		Compression: cfg.Store.Compression,
		CacheSize:   cfg.Store.CacheSize,
		OpenTimeout: cfg.Store.OpenTimeout(),
		Logger:      lgr,
	})
}

func runLoad(ctx context.Context, w io.Writer, dbPath, filePath string, cfg *codeccfg.Config, lgr *logrus.Entry) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return errhand.BuildDError("error: failed to read %s", filePath).AddCause(err).Build()
	}
	var lf loadFile
	if err = yaml.UnmarshalStrict(data, &lf); err != nil {
		return errhand.BuildDError("error: %s is not a valid load file", filePath).AddCause(err).Build()
	}
	if lf.SaltBuckets == 0 {
		lf.SaltBuckets = cfg.Store.SaltBuckets
	}
	ts := lf.schema()
	keyDesc, valDesc, err := ts.descriptors()
	if err != nil {
		return errhand.BuildDError("error: invalid table schema in %s", filePath).AddCause(err).Build()
	}
	schema, err := json.Marshal(ts)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, dbPath, cfg, lgr)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, ok, err := store.GetMeta(schemaMetaKey)
	if err != nil {
		return err
	}
	if ok && !bytes.Equal(existing, schema) {
		return errhand.BuildDError("error: %s already holds a table with a different schema", dbPath).
			AddDetails("existing: %s", existing).
			AddDetails("loading:  %s", schema).
			Build()
	}
	if !ok {
		if err = store.PutMeta(schemaMetaKey, schema); err != nil {
			return err
		}
	}

	tbl := kvstore.NewTable(store, keyDesc, valDesc, lgr)
	for i, row := range lf.Rows {
		key, value, err := parseRow(ts, keyDesc, valDesc, row)
		if err == nil {
			err = tbl.Put(ctx, key, value)
		}
		if err != nil {
			return errhand.BuildDError("error: failed to load row %d of %s", i+1, filePath).AddCause(err).Build()
		}
		if tbl.Pending() >= loadBatchSize {
			if err = tbl.Flush(ctx); err != nil {
				return err
			}
		}
	}
	if err = tbl.Flush(ctx); err != nil {
		return err
	}

	st, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	lgr.WithFields(logrus.Fields{
		"rows": len(lf.Rows),
		"keys": st.Keys,
	}).Info("loaded table")
	_, err = fmt.Fprintf(w, "loaded %s rows into %s, %s keys in %s\n", humanize.Comma(int64(len(lf.Rows))),
		dbPath, humanize.Comma(int64(st.Keys)), humanize.Bytes(uint64(st.FileBytes)))
	return err
}

func parseRow(s tableSchema, keyDesc val.RowKeyDesc, valDesc val.TupleDesc, row []string) (key, value []any, err error) {
	if len(row) != len(s.Key)+len(s.Value) {
		return nil, nil, errors.Errorf("expected %d literals, found %d", len(s.Key)+len(s.Value), len(row))
	}
	key = make([]any, len(s.Key))
	for i := range key {
		if key[i], err = keyDesc.Fields[i].Type.ParseLiteral(row[i]); err != nil {
			return nil, nil, errors.Wrapf(err, "column %s", s.Key[i].Name)
		}
	}
	value = make([]any, len(s.Value))
	for i := range value {
		if value[i], err = valDesc.Types[i].ParseLiteral(row[len(key)+i]); err != nil {
			return nil, nil, errors.Wrapf(err, "column %s", s.Value[i].Name)
		}
	}
	return key, value, nil
}

type scanOpts struct {
	from, to, prefix []string
	asJSON           bool
}

func runScan(ctx context.Context, w io.Writer, dbPath string, opts scanOpts, cfg *codeccfg.Config, lgr *logrus.Entry) error {
	if _, err := os.Stat(dbPath); err != nil {
		return errhand.BuildDError("error: no database at %s", dbPath).AddCause(err).Build()
	}
	store, err := openStore(ctx, dbPath, cfg, lgr)
	if err != nil {
		return err
	}
	defer store.Close()

	raw, ok, err := store.GetMeta(schemaMetaKey)
	if err != nil {
		return err
	}
	if !ok {
		return errhand.BuildDError("error: %s holds no table", dbPath).
			AddDetails("load rows into it with: pcodec load %s <file>", dbPath).
			Build()
	}
	var schema tableSchema
	if err = json.Unmarshal(raw, &schema); err != nil {
		return errors.Wrap(err, "failed to read table schema")
	}
	keyDesc, valDesc, err := schema.descriptors()
	if err != nil {
		return err
	}
	tbl := kvstore.NewTable(store, keyDesc, valDesc, lgr)

	rows := 0
	emit := func(key, value []any) (bool, error) {
		rows++
		if opts.asJSON {
			return false, writeJSONRow(w, schema, key, value)
		}
		_, err := fmt.Fprintln(w, formatRow(keyDesc, valDesc, key, value))
		return false, err
	}

	if len(opts.prefix) > 0 {
		if len(opts.from) > 0 || len(opts.to) > 0 {
			return errors.New("--prefix may not be combined with --from or --to")
		}
		p, err := parseKeyLiterals(keyDesc, opts.prefix)
		if err != nil {
			return err
		}
		if err = tbl.ScanPrefix(ctx, p, emit); err != nil {
			return err
		}
	} else {
		rng, err := scanRange(keyDesc, opts.from, opts.to)
		if err != nil {
			return err
		}
		if err = tbl.Scan(ctx, rng, emit); err != nil {
			return err
		}
	}

	if !opts.asJSON {
		st, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s rows, %s\n", humanize.Comma(int64(rows)), humanize.Bytes(uint64(st.FileBytes)))
		return err
	}
	return nil
}

// scanRange encodes the --from and --to key prefixes. Both bounds are
// inclusive of every key starting with them.
func scanRange(keyDesc val.RowKeyDesc, from, to []string) (kvstore.Range, error) {
	var rng kvstore.Range
	if len(from) == 0 && len(to) == 0 {
		return rng, nil
	}
	if keyDesc.SaltBuckets > 0 {
		return rng, errors.New("--from and --to cannot be used on a salted table")
	}
	if len(from) > 0 {
		values, err := parseKeyLiterals(keyDesc, from)
		if err != nil {
			return rng, err
		}
		if rng.Start, err = keyDesc.EncodePrefix(values...); err != nil {
			return rng, err
		}
	}
	if len(to) > 0 {
		values, err := parseKeyLiterals(keyDesc, to)
		if err != nil {
			return rng, err
		}
		p, err := keyDesc.EncodePrefix(values...)
		if err != nil {
			return rng, err
		}
		rng.Stop = kvstore.PrefixRange(p).Stop
	}
	return rng, nil
}

func parseKeyLiterals(keyDesc val.RowKeyDesc, literals []string) ([]any, error) {
	if len(literals) > len(keyDesc.Fields) {
		return nil, errors.Errorf("expected at most %d key literals, found %d", len(keyDesc.Fields), len(literals))
	}
	values := make([]any, len(literals))
	for i, lit := range literals {
		v, err := keyDesc.Fields[i].Type.ParseLiteral(lit)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func formatRow(keyDesc val.RowKeyDesc, valDesc val.TupleDesc, key, value []any) string {
	var buf bytes.Buffer
	buf.WriteString("(")
	for i, v := range key {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(keyDesc.Fields[i].Type.FormatValue(v))
	}
	buf.WriteString(") => (")
	for i, v := range value {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(valDesc.Types[i].FormatValue(v))
	}
	buf.WriteString(")")
	return buf.String()
}

func writeJSONRow(w io.Writer, s tableSchema, key, value []any) error {
	row := make(map[string]any, len(key)+len(value))
	for i, v := range key {
		row[s.Key[i].Name] = jsonValue(v)
	}
	for i, v := range value {
		row[s.Value[i].Name] = jsonValue(v)
	}
	out, err := json.Marshal(row)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
