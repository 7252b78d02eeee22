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

package kvstore

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	DefaultBucket      = "rows"
	DefaultOpenTimeout = 5 * time.Second

	metaBucket = "_meta"

	// how long a single open attempt waits on the file lock
	lockWait = 100 * time.Millisecond
)

// BoltOptions configures a BoltStore.
type BoltOptions struct {
	// Bucket holds the pairs of the store, DefaultBucket when empty.
	Bucket string
	// Compression snappy-compresses values that shrink by it.
	Compression bool
	// CacheSize is the number of values kept in the read cache, zero
	// disables the cache.
	CacheSize int
	// OpenTimeout bounds the time spent waiting for another process
	// to release the database file.
	OpenTimeout time.Duration

	Logger  *logrus.Entry
	Metrics *Metrics
}

// BoltStore is a Store persisted in a bbolt database file.
type BoltStore struct {
	db       *bolt.DB
	bucket   []byte
	compress bool
	cache    *lru.Cache[string, []byte]
	metrics  *Metrics
	lgr      *logrus.Entry
	closed   atomic.Bool
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at |path|. While another
// process holds the file lock, opening is retried with exponential
// backoff until |opts.OpenTimeout| elapses or |ctx| is done.
func OpenBoltStore(ctx context.Context, path string, opts BoltOptions) (*BoltStore, error) {
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOpenTimeout
	}
	lgr := opts.Logger
	if lgr == nil {
		lgr = logrus.NewEntry(logrus.StandardLogger())
	}
	lgr = lgr.WithFields(logrus.Fields{
		"path":   path,
		"bucket": opts.Bucket,
	})

	params := backoff.NewExponentialBackOff()
	params.InitialInterval = 50 * time.Millisecond
	params.MaxElapsedTime = opts.OpenTimeout

	var db *bolt.DB
	err := backoff.Retry(func() error {
		var err error
		db, err = bolt.Open(path, 0600, &bolt.Options{Timeout: lockWait})
		if err == nil {
			return nil
		}
		if errors.Is(err, bolt.ErrTimeout) {
			lgr.Debug("database file is locked, retrying")
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(params, ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bolt store at %s", path)
	}

	bucket := []byte(opts.Bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to create bucket %s", opts.Bucket)
	}

	s := &BoltStore{
		db:       db,
		bucket:   bucket,
		compress: opts.Compression,
		metrics:  opts.Metrics,
		lgr:      lgr,
	}
	if opts.CacheSize > 0 {
		if s.cache, err = lru.New[string, []byte](opts.CacheSize); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	lgr.Debug("opened bolt store")
	return s, nil
}

// Path returns the database file of |s|.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

func (s *BoltStore) Get(ctx context.Context, key []byte) (val []byte, ok bool, err error) {
	if s.closed.Load() {
		return nil, false, ErrStoreClosed
	}
	start := time.Now()
	defer func() { s.metrics.observe(opGet, start, err) }()

	if s.cache != nil {
		if v, hit := s.cache.Get(string(key)); hit {
			s.metrics.cacheHit(true)
			return append([]byte(nil), v...), true, nil
		}
		s.metrics.cacheHit(false)
	}

	err = s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get(key)
		if raw == nil {
			return nil
		}
		s.metrics.read(len(raw))
		v, err := unframeValue(raw)
		if err != nil {
			return errors.Wrapf(err, "key %x", key)
		}
		val, ok = v, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if ok && s.cache != nil {
		s.cache.Add(string(key), append([]byte(nil), val...))
	}
	return val, ok, nil
}

func (s *BoltStore) Put(ctx context.Context, key, val []byte) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(opPut, start, err) }()
	return s.update([]Edit{{Key: key, Value: val}})
}

func (s *BoltStore) Delete(ctx context.Context, key []byte) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(opDelete, start, err) }()
	return s.update([]Edit{{Key: key, Delete: true}})
}

func (s *BoltStore) PutMany(ctx context.Context, edits []Edit) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(opBatch, start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	return s.update(edits)
}

func (s *BoltStore) update(edits []Edit) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	for _, e := range edits {
		if len(e.Key) == 0 {
			return ErrEmptyKey
		}
	}

	written := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, e := range edits {
			if e.Delete {
				if err := b.Delete(e.Key); err != nil {
					return err
				}
				continue
			}
			framed := frameValue(e.Value, s.compress)
			if err := b.Put(e.Key, framed); err != nil {
				return err
			}
			written += len(framed)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to write to bolt store")
	}
	s.metrics.wrote(written)

	if s.cache != nil {
		for _, e := range edits {
			if e.Delete {
				s.cache.Remove(string(e.Key))
			} else {
				s.cache.Add(string(e.Key), append([]byte(nil), e.Value...))
			}
		}
	}
	s.lgr.WithField("edits", len(edits)).Trace("applied edits")
	return nil
}

// Scan runs |cb| inside a read transaction; |cb| must not write to |s|.
func (s *BoltStore) Scan(ctx context.Context, rng Range, cb ScanFn) (err error) {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	start := time.Now()
	defer func() { s.metrics.observe(opScan, start, err) }()

	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		var k, raw []byte
		if rng.Start == nil {
			k, raw = c.First()
		} else {
			k, raw = c.Seek(rng.Start)
		}
		for ; k != nil; k, raw = c.Next() {
			if rng.Stop != nil && compareKeys(k, rng.Stop) >= 0 {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			s.metrics.read(len(raw))
			v, err := unframeValue(raw)
			if err != nil {
				return errors.Wrapf(err, "key %x", k)
			}
			stop, err := cb(k, v)
			if err != nil || stop {
				return err
			}
		}
		return nil
	})
}

// PutMeta stores |val| under |name| in a bucket kept apart from the
// rows of |s|. Meta values are neither cached nor compressed.
func (s *BoltStore) PutMeta(name string, val []byte) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(metaBucket)).Put(s.metaKey(name), val)
	})
}

// GetMeta returns the value written by PutMeta for |name|.
func (s *BoltStore) GetMeta(name string) (val []byte, ok bool, err error) {
	if s.closed.Load() {
		return nil, false, ErrStoreClosed
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(metaBucket)).Get(s.metaKey(name)); v != nil {
			val, ok = append([]byte(nil), v...), true
		}
		return nil
	})
	return val, ok, err
}

// meta keys are scoped by bucket so several tables can share a file
func (s *BoltStore) metaKey(name string) []byte {
	k := make([]byte, 0, len(s.bucket)+1+len(name))
	k = append(k, s.bucket...)
	k = append(k, '/')
	return append(k, name...)
}

// StoreStats summarizes the contents of a BoltStore.
type StoreStats struct {
	Keys      int
	FileBytes int64
}

func (s *BoltStore) Stats(ctx context.Context) (st StoreStats, err error) {
	if s.closed.Load() {
		return st, ErrStoreClosed
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		st.Keys = tx.Bucket(s.bucket).Stats().KeyN
		st.FileBytes = tx.Size()
		return nil
	})
	return st, err
}

func (s *BoltStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	s.lgr.Debug("closed bolt store")
	return s.db.Close()
}
