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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapConfig(t *testing.T) {
	mc, err := ParseMapConfig([]string{"store.path=/tmp/x.db", " store.cache_size = 12 ", "store.compression=false"})
	require.NoError(t, err)
	assert.Equal(t, 3, mc.Size())

	s, err := mc.GetString("store.path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", s)

	n, err := mc.GetInt("store.cache_size")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	b, err := mc.GetBool("store.compression")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = mc.GetInt("store.path")
	assert.Error(t, err)

	_, err = mc.GetString("missing")
	assert.ErrorIs(t, err, ErrConfigParamNotFound)

	require.NoError(t, mc.SetStrings(map[string]string{"a": "1"}))
	var keys []string
	mc.Iter(func(k, v string) bool {
		keys = append(keys, k)
		return false
	})
	assert.Equal(t, []string{"a", "store.cache_size", "store.compression", "store.path"}, keys)

	require.NoError(t, mc.Unset([]string{"a", "store.path"}))
	assert.Equal(t, 2, mc.Size())

	_, err = ParseMapConfig([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseMapConfig([]string{"=x"})
	assert.Error(t, err)
}
