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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/phoenix/libraries/codeccfg"
	"github.com/ndimiduk/phoenix/store/val"
)

const salesLoadFile = `
key:
  - {name: region, type: VARCHAR}
  - {name: id, type: BIGINT, order: desc}
value:
  - {name: hits, type: BIGINT}
  - {name: note, type: VARCHAR}
  - {name: price, type: DECIMAL}
rows:
  - [east, 1, 10, "'first'", 1.5]
  - [east, 2, 20, NULL, 2.25]
  - [west, 1, 30, "'w'", 0]
`

func writeLoadFile(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func testConfig(t *testing.T) *codeccfg.Config {
	cfg, err := codeccfg.Default()
	require.NoError(t, err)
	cfg.Store.OpenTimeoutMillis = 500
	return cfg
}

func scanLines(t *testing.T, db string, opts scanOpts, cfg *codeccfg.Config) []string {
	var buf bytes.Buffer
	require.NoError(t, runScan(context.Background(), &buf, db, opts, cfg, testLogger()))
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}

func TestLoadAndScan(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	dir := t.TempDir()
	db := filepath.Join(dir, "sales.db")
	file := writeLoadFile(t, dir, "sales.yaml", salesLoadFile)
	cfg := testConfig(t)

	var buf bytes.Buffer
	require.NoError(t, runLoad(ctx, &buf, db, file, cfg, testLogger()))
	assert.True(t, strings.HasPrefix(buf.String(), "loaded 3 rows into "+db+", 3 keys in "), buf.String())

	t.Run("scan all", func(t *testing.T) {
		lines := scanLines(t, db, scanOpts{}, cfg)
		require.Len(t, lines, 4)
		assert.Equal(t, "('east', 2) => (20, NULL, 2.25)", lines[0])
		assert.Equal(t, "('east', 1) => (10, 'first', 1.5)", lines[1])
		assert.Equal(t, "('west', 1) => (30, 'w', 0)", lines[2])
		assert.True(t, strings.HasPrefix(lines[3], "3 rows, "))
	})
	t.Run("scan prefix", func(t *testing.T) {
		lines := scanLines(t, db, scanOpts{prefix: []string{"east"}}, cfg)
		assert.Len(t, lines, 3)
		lines = scanLines(t, db, scanOpts{prefix: []string{"east", "1"}}, cfg)
		require.Len(t, lines, 2)
		assert.Equal(t, "('east', 1) => (10, 'first', 1.5)", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "1 rows, "))
	})
	t.Run("scan range", func(t *testing.T) {
		lines := scanLines(t, db, scanOpts{from: []string{"west"}}, cfg)
		assert.Equal(t, "('west', 1) => (30, 'w', 0)", lines[0])
		assert.Len(t, lines, 2)

		lines = scanLines(t, db, scanOpts{to: []string{"east"}}, cfg)
		assert.Len(t, lines, 3)
		assert.Equal(t, "('east', 1) => (10, 'first', 1.5)", lines[1])
	})
	t.Run("scan json", func(t *testing.T) {
		lines := scanLines(t, db, scanOpts{asJSON: true, prefix: []string{"east"}}, cfg)
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"region":"east","id":2,"hits":20,"note":null,"price":"2.25"}`, lines[0])
		assert.JSONEq(t, `{"region":"east","id":1,"hits":10,"note":"first","price":"1.5"}`, lines[1])
	})
	t.Run("reload", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, runLoad(ctx, &buf, db, file, cfg, testLogger()))
		assert.Contains(t, buf.String(), "3 keys")
	})
	t.Run("schema mismatch", func(t *testing.T) {
		other := writeLoadFile(t, dir, "other.yaml", `
key:
  - {name: id, type: INTEGER}
value: []
rows:
  - ["1"]
`)
		err := runLoad(ctx, &buf, db, other, cfg, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different schema")
	})
	t.Run("bad options", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, runScan(ctx, &out, db, scanOpts{prefix: []string{"east"}, from: []string{"a"}}, cfg, testLogger()))
		assert.Error(t, runScan(ctx, &out, db, scanOpts{prefix: []string{"east", "x"}}, cfg, testLogger()))
		assert.Error(t, runScan(ctx, &out, db, scanOpts{from: []string{"a", "1", "2"}}, cfg, testLogger()))
	})
}

func TestLoadErrors(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	dir := t.TempDir()
	cfg := testConfig(t)
	var buf bytes.Buffer

	tests := []struct {
		name     string
		contents string
		expErr   string
	}{
		{"unknown key", "nope: 1\n", "not a valid load file"},
		{"no key columns", "value:\n  - {name: a, type: BIGINT}\n", "invalid table schema"},
		{"unknown type", "key:\n  - {name: a, type: NUMBERISH}\n", "invalid table schema"},
		{"value order", "key:\n  - {name: a, type: BIGINT}\nvalue:\n  - {name: b, type: BIGINT, order: desc}\n", "invalid table schema"},
		{"varbinary key first", "key:\n  - {name: a, type: VARBINARY}\n  - {name: b, type: BIGINT}\n", "invalid table schema"},
		{"short row", "key:\n  - {name: a, type: BIGINT}\nrows:\n  - [\"1\", \"2\"]\n", "failed to load row 1"},
		{"bad literal", "key:\n  - {name: a, type: BIGINT}\nrows:\n  - [\"1\"]\n  - [x]\n", "failed to load row 2"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			file := writeLoadFile(t, dir, strings.ReplaceAll(test.name, " ", "_")+".yaml", test.contents)
			db := filepath.Join(dir, strings.ReplaceAll(test.name, " ", "_")+".db")
			err := runLoad(ctx, &buf, db, file, cfg, testLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expErr)
		})
	}

	err := runLoad(ctx, &buf, filepath.Join(dir, "x.db"), filepath.Join(dir, "missing.yaml"), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestScanErrors(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	dir := t.TempDir()
	cfg := testConfig(t)
	var buf bytes.Buffer

	err := runScan(ctx, &buf, filepath.Join(dir, "missing.db"), scanOpts{}, cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")

	db := filepath.Join(dir, "empty.db")
	store, err := openStore(ctx, db, cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Close())
	err = runScan(ctx, &buf, db, scanOpts{}, cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds no table")
}

func TestSaltedLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db := filepath.Join(dir, "salted.db")
	file := writeLoadFile(t, dir, "sales.yaml", salesLoadFile)
	cfg := testConfig(t)
	cfg.Store.SaltBuckets = 4
	cfg.Store.Compression = false

	var buf bytes.Buffer
	require.NoError(t, runLoad(ctx, &buf, db, file, cfg, testLogger()))

	lines := scanLines(t, db, scanOpts{}, cfg)
	assert.Len(t, lines, 4)
	assert.ElementsMatch(t, []string{
		"('east', 2) => (20, NULL, 2.25)",
		"('east', 1) => (10, 'first', 1.5)",
		"('west', 1) => (30, 'w', 0)",
	}, lines[:3])

	lines = scanLines(t, db, scanOpts{prefix: []string{"east"}}, cfg)
	assert.Len(t, lines, 3)

	// the salt is persisted with the schema
	cfg.Store.SaltBuckets = 0
	lines = scanLines(t, db, scanOpts{prefix: []string{"west"}}, cfg)
	assert.Equal(t, "('west', 1) => (30, 'w', 0)", lines[0])

	assert.Error(t, runScan(ctx, &buf, db, scanOpts{from: []string{"east"}}, cfg, testLogger()))
}

func TestSchemaDescriptors(t *testing.T) {
	s := tableSchema{
		SaltBuckets: 2,
		Key: []columnDef{
			{Name: "code", Type: "CHAR", MaxLength: 3},
			{Name: "seq", Type: "INTEGER", Order: "desc"},
		},
		Value: []columnDef{{Name: "tags", Type: "VARCHAR[]"}},
	}
	keyDesc, valDesc, err := s.descriptors()
	require.NoError(t, err)
	assert.Equal(t, 2, keyDesc.SaltBuckets)
	assert.Equal(t, val.RowKeyField{Type: val.Char, MaxLength: 3}, keyDesc.Fields[0])
	assert.Equal(t, val.RowKeyField{Type: val.Integer, Order: val.Descending}, keyDesc.Fields[1])
	assert.Equal(t, []*val.Type{val.VarcharArray}, valDesc.Types)

	s.Key[0].MaxLength = 0
	_, _, err = s.descriptors()
	assert.Error(t, err)

	s.Key[0].MaxLength = 3
	s.SaltBuckets = 1000
	_, _, err = s.descriptors()
	assert.Error(t, err)
}
