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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/phoenix/libraries/codeccfg"
	"github.com/ndimiduk/phoenix/store/val"
)

func TestTypes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runTypes(&buf, false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(val.Types())+1)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Equal(t, []string{"VARCHAR", "12", "0", "variable"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"CHAR", "1", "1", "declared"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"BIGINT", "-5", "2", "8"}, strings.Fields(lines[3]))

	buf.Reset()
	require.NoError(t, runTypes(&buf, true))
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(val.ScalarTypes())+1)
}

func TestCoercionEdges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runCoercionEdges(&buf, "BOOLEAN", true))
	edges := make(map[string]string)
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
		f := strings.Fields(l)
		require.Len(t, f, 2)
		edges[f[0]] = f[1]
	}
	assert.Equal(t, "always", edges["BOOLEAN"])
	assert.Equal(t, "always", edges["VARBINARY"])
	assert.NotContains(t, edges, "INTEGER")

	buf.Reset()
	require.NoError(t, runCoercionEdges(&buf, "BIGINT", true))
	assert.Contains(t, buf.String(), "DECIMAL")
	assert.Contains(t, buf.String(), "value-dependent")

	assert.Error(t, runCoercionEdges(&buf, "NOPE", true))
}

func TestConfig(t *testing.T) {
	cfg, err := codeccfg.Default()
	require.NoError(t, err)
	cfg.Store.SaltBuckets = 8

	var buf bytes.Buffer
	require.NoError(t, runConfig(&buf, cfg))
	assert.Contains(t, buf.String(), "salt_buckets: 8")

	parsed, err := codeccfg.FromYAML(buf.Bytes(), func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}
