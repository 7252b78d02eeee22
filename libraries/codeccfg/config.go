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

// Package codeccfg loads the configuration of the pcodec tool from YAML
// or TOML files, with environment placeholders and command line
// overrides.
package codeccfg

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/ndimiduk/phoenix/libraries/utils/config"
	"github.com/ndimiduk/phoenix/store/val"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the top level pcodec configuration.
type Config struct {
	LogLevel  string      `yaml:"log_level" toml:"log_level" default:"info"`
	LogFormat string      `yaml:"log_format" toml:"log_format" default:"text"`
	Store     StoreConfig `yaml:"store" toml:"store"`
	Codec     CodecConfig `yaml:"codec" toml:"codec"`
}

// StoreConfig configures the bolt-backed table used by load and scan.
type StoreConfig struct {
	Path              string `yaml:"path" toml:"path" default:"pcodec.db"`
	Bucket            string `yaml:"bucket" toml:"bucket" default:"rows"`
	Compression       bool   `yaml:"compression" toml:"compression" default:"true"`
	CacheSize         int    `yaml:"cache_size" toml:"cache_size" default:"1024"`
	OpenTimeoutMillis uint64 `yaml:"open_timeout_millis" toml:"open_timeout_millis" default:"5000"`
	SaltBuckets       int    `yaml:"salt_buckets" toml:"salt_buckets"`
}

// CodecConfig holds codec defaults for commands that take no --desc.
type CodecConfig struct {
	SortOrder string `yaml:"sort_order" toml:"sort_order" default:"asc"`
}

// OpenTimeout returns the bolt open timeout.
func (s StoreConfig) OpenTimeout() time.Duration {
	return time.Duration(s.OpenTimeoutMillis) * time.Millisecond
}

// Order returns the configured default sort order.
func (c CodecConfig) Order() val.SortOrder {
	o, _ := val.ParseSortOrder(c.SortOrder)
	return o
}

// Default returns a Config with every default applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a config file. Files ending in .toml are TOML, anything
// else is YAML. Environment placeholders are expanded from the process
// environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FromTOML(data, os.LookupEnv)
	}
	return FromYAML(data, os.LookupEnv)
}

// FromYAML parses a YAML config. Unknown keys are an error.
func FromYAML(data []byte, lookup LookupFn) (*Config, error) {
	data, err := interpolateEnv(data, lookup)
	if err != nil {
		return nil, err
	}
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err = yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse yaml config")
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromTOML parses a TOML config. Unknown keys are an error.
func FromTOML(data []byte, lookup LookupFn) (*Config, error) {
	data, err := interpolateEnv(data, lookup)
	if err != nil {
		return nil, err
	}
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse toml config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config key %s", undecoded[0].String())
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides sets the keys of |mc| on |c|. Keys are the dotted
// config paths, e.g. store.cache_size.
func (c *Config) ApplyOverrides(mc *config.MapConfig) (err error) {
	mc.Iter(func(k, v string) bool {
		err = c.set(mc, k, v)
		return err != nil
	})
	if err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) set(mc *config.MapConfig, k, v string) (err error) {
	switch k {
	case "log_level":
		c.LogLevel = v
	case "log_format":
		c.LogFormat = v
	case "store.path":
		c.Store.Path = v
	case "store.bucket":
		c.Store.Bucket = v
	case "store.compression":
		c.Store.Compression, err = mc.GetBool(k)
	case "store.cache_size":
		c.Store.CacheSize, err = mc.GetInt(k)
	case "store.open_timeout_millis":
		var n int
		if n, err = mc.GetInt(k); err == nil {
			if n < 0 {
				return errors.Errorf("%s may not be negative", k)
			}
			c.Store.OpenTimeoutMillis = uint64(n)
		}
	case "store.salt_buckets":
		c.Store.SaltBuckets, err = mc.GetInt(k)
	case "codec.sort_order":
		c.Codec.SortOrder = v
	default:
		return errors.Errorf("unknown config key %s", k)
	}
	return err
}

// Validate checks the values of |c|.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return errors.Errorf("log_format must be %s or %s, found %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}
	if c.Store.Path == "" {
		return errors.New("store.path may not be empty")
	}
	if c.Store.CacheSize < 0 {
		return errors.Errorf("store.cache_size may not be negative, found %d", c.Store.CacheSize)
	}
	if c.Store.SaltBuckets < 0 || c.Store.SaltBuckets > val.MaxSaltBuckets {
		return errors.Errorf("store.salt_buckets must be between 0 and %d, found %d", val.MaxSaltBuckets, c.Store.SaltBuckets)
	}
	if _, err := val.ParseSortOrder(c.Codec.SortOrder); err != nil {
		return errors.Wrap(err, "codec.sort_order")
	}
	return nil
}

// NewLogger returns a logger with the level and format of |c|.
func (c *Config) NewLogger() *logrus.Logger {
	lgr := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		lgr.SetLevel(lvl)
	}
	if c.LogFormat == LogFormatJSON {
		lgr.SetFormatter(&logrus.JSONFormatter{})
	} else {
		lgr.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return lgr
}

// YAML renders |c| as YAML.
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
