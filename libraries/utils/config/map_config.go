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
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrConfigParamNotFound is returned when a key has no value.
var ErrConfigParamNotFound = errors.New("param not found")

// MapConfig is an in-memory config, used for command line overrides and
// tests. Values live for the lifetime of the MapConfig.
type MapConfig struct {
	properties map[string]string
}

// NewMapConfig creates a config from a map.
func NewMapConfig(properties map[string]string) *MapConfig {
	if properties == nil {
		properties = make(map[string]string)
	}
	return &MapConfig{properties}
}

// ParseMapConfig builds a MapConfig from "key=value" pairs.
func ParseMapConfig(pairs []string) (*MapConfig, error) {
	mc := NewMapConfig(nil)
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.Errorf("expected key=value, found %q", p)
		}
		mc.properties[k] = strings.TrimSpace(v)
	}
	return mc, nil
}

// GetString retrieves a value for a given key.
func (mc *MapConfig) GetString(k string) (string, error) {
	if val, ok := mc.properties[k]; ok {
		return val, nil
	}
	return "", ErrConfigParamNotFound
}

// GetInt retrieves a value for a given key as an int.
func (mc *MapConfig) GetInt(k string) (int, error) {
	s, err := mc.GetString(k)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "param %s", k)
	}
	return n, nil
}

// GetBool retrieves a value for a given key as a bool.
func (mc *MapConfig) GetBool(k string) (bool, error) {
	s, err := mc.GetString(k)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrapf(err, "param %s", k)
	}
	return b, nil
}

// SetStrings sets the values for a map of updates.
func (mc *MapConfig) SetStrings(updates map[string]string) error {
	for k, v := range updates {
		mc.properties[k] = v
	}
	return nil
}

// Iter calls |cb| for each key in sorted order until it returns true.
func (mc *MapConfig) Iter(cb func(string, string) (stop bool)) {
	keys := make([]string, 0, len(mc.properties))
	for k := range mc.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if cb(k, mc.properties[k]) {
			break
		}
	}
}

// Unset removes a configuration parameter from the config
func (mc *MapConfig) Unset(params []string) error {
	for _, param := range params {
		delete(mc.properties, param)
	}
	return nil
}

// Size returns the number of properties contained within the config
func (mc *MapConfig) Size() int {
	return len(mc.properties)
}
