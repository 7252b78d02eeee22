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

package codeccfg

import (
	"bytes"

	"github.com/pkg/errors"
)

// LookupFn resolves an environment variable.
type LookupFn func(name string) (string, bool)

// interpolateEnv expands placeholders in config text |data|:
//
//	${VAR}          VAR's value, an error if VAR is unset or empty
//	${VAR:-default} VAR's value if set and non-empty, else default
//	$$              a literal '$'
//
// Defaults may hold placeholders of their own. A '$' followed by
// anything else is copied through.
func interpolateEnv(data []byte, lookup LookupFn) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '$' {
			out = append(out, data[i])
			continue
		}
		if i+1 < len(data) && data[i+1] == '$' {
			out = append(out, '$')
			i++
			continue
		}
		if i+1 >= len(data) || data[i+1] != '{' {
			out = append(out, '$')
			continue
		}

		end, err := closingBrace(data, i+2)
		if err != nil {
			return nil, errors.Wrapf(err, "placeholder at byte %d", i)
		}
		if out, err = expand(out, data[i+2:end], lookup); err != nil {
			return nil, err
		}
		i = end
	}
	return out, nil
}

// closingBrace finds the brace closing a placeholder body starting at
// |start|, skipping over nested placeholders in a default.
func closingBrace(data []byte, start int) (int, error) {
	depth := 0
	for j := start; j < len(data); j++ {
		switch {
		case data[j] == '$' && j+1 < len(data) && data[j+1] == '{':
			depth++
			j++
		case data[j] == '}':
			if depth == 0 {
				return j, nil
			}
			depth--
		}
	}
	return 0, errors.New("unterminated environment placeholder")
}

func expand(out, expr []byte, lookup LookupFn) ([]byte, error) {
	name, def, hasDefault := expr, []byte(nil), false
	if k := bytes.Index(expr, []byte(":-")); k >= 0 {
		name, def, hasDefault = expr[:k], expr[k+2:], true
	}
	if !isValidEnvVarName(name) {
		return nil, errors.Errorf("invalid environment variable name %q", name)
	}

	if v, ok := lookup(string(name)); ok && v != "" {
		return append(out, v...), nil
	}
	if !hasDefault {
		return nil, errors.Errorf("environment variable %q is not set", name)
	}
	d, err := interpolateEnv(def, lookup)
	if err != nil {
		return nil, err
	}
	return append(out, d...), nil
}

func isValidEnvVarName(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for i, c := range b {
		letter := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
		digit := c >= '0' && c <= '9'
		if !letter && (i == 0 || !digit) {
			return false
		}
	}
	return true
}
